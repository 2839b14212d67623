package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/tx"
)

// uniqueViolation — код PostgreSQL для нарушения уникального ограничения
const uniqueViolation = "23505"

// SyncStorageInterface определяет контракт постоянного хранилища движка синхронизации:
// записи интеграций и идемпотентные upsert-операции канонических сущностей
type SyncStorageInterface interface {
	// Integration методы
	UpsertIntegration(ctx context.Context, integration *models.IntegrationConfig) (*models.IntegrationConfig, error)
	FindIntegration(ctx context.Context, vendorID string, marketplace models.Marketplace) (*models.IntegrationConfig, error)
	ListIntegrations(ctx context.Context, vendorID string) ([]*models.IntegrationConfig, error)
	UpdateSyncResult(ctx context.Context, vendorID string, marketplace models.Marketplace,
		status models.SyncStatus, syncErr string, op models.SyncOperation, count int) error

	// Канонические сущности: upsert по ключу (external_id, marketplace)
	UpsertProductByExternalID(ctx context.Context, product *models.Product) error
	UpsertOrderByExternalID(ctx context.Context, order *models.Order) error
}

// SyncStoragePort расширяет контракт хранилища управлением транзакциями
type SyncStoragePort interface {
	SyncStorageInterface
	interfaces.StoragePort
}

// SyncStorage реализация SyncStoragePort для PostgreSQL
type SyncStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage создает новый экземпляр SyncStorage
func NewPostgresStorage(ctx context.Context, connectionString string) (*SyncStorage, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &SyncStorage{
		pool: pool,
	}, nil
}

// NewPostgresStorageWithPool создает SyncStorage поверх готового пула
func NewPostgresStorageWithPool(ctx context.Context, pool *pgxpool.Pool) (*SyncStorage, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &SyncStorage{
		pool: pool,
	}, nil
}

// Pool возвращает пул соединений (для менеджера транзакций)
func (r *SyncStorage) Pool() *pgxpool.Pool {
	return r.pool
}

// Close закрывает соединение с БД
func (r *SyncStorage) Close() error {
	r.pool.Close()
	return nil
}

type executor interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// getExecutor возвращает исполнителя запросов (транзакцию из контекста или пул)
func (r *SyncStorage) getExecutor(ctx context.Context) executor {
	if txFromCtx, ok := tx.GetTxFromContext(ctx); ok {
		return txFromCtx
	}
	return r.pool
}

// BeginTx начинает новую транзакцию
func (r *SyncStorage) BeginTx(ctx context.Context) (context.Context, error) {
	pgtx, err := r.pool.Begin(ctx)
	if err != nil {
		return ctx, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return context.WithValue(ctx, tx.GetKey(), pgtx), nil
}

// CommitTx фиксирует транзакцию
func (r *SyncStorage) CommitTx(ctx context.Context) error {
	pgtx, ok := tx.GetTxFromContext(ctx)
	if !ok {
		return errors.New("no transaction in context")
	}
	return pgtx.Commit(ctx)
}

// RollbackTx откатывает транзакцию
func (r *SyncStorage) RollbackTx(ctx context.Context) error {
	pgtx, ok := tx.GetTxFromContext(ctx)
	if !ok {
		return errors.New("no transaction in context")
	}
	return pgtx.Rollback(ctx)
}

// isUniqueViolation проверяет, что ошибка — гонка по уникальному ключу
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// UpsertIntegration сохраняет запись интеграции по составному ключу
// (vendor_id, marketplace). Каждое сохранение учетных данных сбрасывает
// статус в PENDING и очищает последнюю ошибку: смена учетных данных всегда
// приводит к наблюдаемой новой попытке синхронизации.
func (r *SyncStorage) UpsertIntegration(ctx context.Context, integration *models.IntegrationConfig) (*models.IntegrationConfig, error) {
	ex := r.getExecutor(ctx)

	if integration.ID == "" {
		integration.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if integration.CreatedAt.IsZero() {
		integration.CreatedAt = now
	}
	integration.UpdatedAt = now
	integration.LastSyncStatus = models.SyncStatusPending
	integration.LastSyncError = ""

	query := `
		INSERT INTO sync.marketplace_integrations
			(id, vendor_id, marketplace, api_key, api_secret, seller_id, is_enabled,
			 last_sync_status, last_sync_error, last_sync_at, product_count, order_count,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, $9, $10, $11, $12, $13)
		ON CONFLICT (vendor_id, marketplace)
		DO UPDATE SET
			api_key = $4,
			api_secret = $5,
			seller_id = $6,
			is_enabled = $7,
			last_sync_status = $8,
			last_sync_error = NULL,
			updated_at = $13
		RETURNING id, created_at
	`

	row := ex.QueryRow(ctx, query,
		integration.ID, integration.VendorID, string(integration.Marketplace),
		integration.APIKey, integration.APISecret, integration.SellerID, integration.IsEnabled,
		string(integration.LastSyncStatus), integration.LastSyncAt,
		integration.ProductCount, integration.OrderCount,
		integration.CreatedAt, integration.UpdatedAt,
	)

	if err := row.Scan(&integration.ID, &integration.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert integration: %w", err)
	}

	return integration, nil
}

const integrationColumns = `
	id, vendor_id, marketplace, api_key, api_secret, seller_id, is_enabled,
	last_sync_status, last_sync_error, last_sync_at, product_count, order_count,
	created_at, updated_at`

// scanIntegration читает запись интеграции из строки результата
func scanIntegration(row pgx.Row) (*models.IntegrationConfig, error) {
	var c models.IntegrationConfig
	var marketplace, status string
	var lastErr *string

	err := row.Scan(
		&c.ID, &c.VendorID, &marketplace, &c.APIKey, &c.APISecret, &c.SellerID, &c.IsEnabled,
		&status, &lastErr, &c.LastSyncAt, &c.ProductCount, &c.OrderCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Marketplace = models.Marketplace(marketplace)
	c.LastSyncStatus = models.SyncStatus(status)
	if lastErr != nil {
		c.LastSyncError = *lastErr
	}
	return &c, nil
}

// FindIntegration получает запись интеграции по паре (vendor, marketplace).
// Возвращает nil, nil, если запись не найдена.
func (r *SyncStorage) FindIntegration(ctx context.Context, vendorID string, marketplace models.Marketplace) (*models.IntegrationConfig, error) {
	ex := r.getExecutor(ctx)

	query := `
		SELECT` + integrationColumns + `
		FROM sync.marketplace_integrations
		WHERE vendor_id = $1 AND marketplace = $2
	`

	integration, err := scanIntegration(ex.QueryRow(ctx, query, vendorID, string(marketplace)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find integration: %w", err)
	}

	return integration, nil
}

// ListIntegrations возвращает записи интеграций продавца, отсортированные
// по маркетплейсу. Пустой vendorID возвращает записи всех продавцов.
func (r *SyncStorage) ListIntegrations(ctx context.Context, vendorID string) ([]*models.IntegrationConfig, error) {
	ex := r.getExecutor(ctx)

	query := `
		SELECT` + integrationColumns + `
		FROM sync.marketplace_integrations
	`
	var args []interface{}
	if vendorID != "" {
		query += ` WHERE vendor_id = $1`
		args = append(args, vendorID)
	}
	query += ` ORDER BY marketplace ASC`

	rows, err := ex.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	defer rows.Close()

	var integrations []*models.IntegrationConfig
	for rows.Next() {
		integration, err := scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan integration: %w", err)
		}
		integrations = append(integrations, integration)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read integrations: %w", err)
	}

	return integrations, nil
}

// UpdateSyncResult фиксирует исход попытки синхронизации в записи интеграции:
// SUCCESS со счетчиком записей либо FAILED с усеченным сообщением об ошибке
func (r *SyncStorage) UpdateSyncResult(ctx context.Context, vendorID string, marketplace models.Marketplace,
	status models.SyncStatus, syncErr string, op models.SyncOperation, count int) error {
	ex := r.getExecutor(ctx)

	countColumn := "product_count"
	if op == models.SyncOperationOrders {
		countColumn = "order_count"
	}

	now := time.Now().UTC()

	var query string
	var args []interface{}
	if status == models.SyncStatusSuccess {
		query = `
			UPDATE sync.marketplace_integrations
			SET last_sync_status = $1, last_sync_at = $2, last_sync_error = NULL,
				` + countColumn + ` = $3, updated_at = $2
			WHERE vendor_id = $4 AND marketplace = $5
		`
		args = []interface{}{string(status), now, count, vendorID, string(marketplace)}
	} else {
		truncated := syncErr
		if len(truncated) > models.MaxSyncErrorLength {
			truncated = truncated[:models.MaxSyncErrorLength]
		}
		query = `
			UPDATE sync.marketplace_integrations
			SET last_sync_status = $1, last_sync_at = $2, last_sync_error = $3, updated_at = $2
			WHERE vendor_id = $4 AND marketplace = $5
		`
		args = []interface{}{string(status), now, truncated, vendorID, string(marketplace)}
	}

	if _, err := ex.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update sync result: %w", err)
	}
	return nil
}

// UpsertProductByExternalID идемпотентно сохраняет канонический продукт
// по уникальному ключу (external_id, marketplace). Гонка двух конкурентных
// синхронизаций по уникальному ключу повторяется один раз: upsert сходится.
func (r *SyncStorage) UpsertProductByExternalID(ctx context.Context, product *models.Product) error {
	err := r.upsertProduct(ctx, product)
	if err != nil && isUniqueViolation(err) {
		err = r.upsertProduct(ctx, product)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert product %s/%s: %w", product.Marketplace, product.ExternalID, err)
	}
	return nil
}

func (r *SyncStorage) upsertProduct(ctx context.Context, product *models.Product) error {
	ex := r.getExecutor(ctx)

	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	query := `
		INSERT INTO sync.products
			(id, vendor_id, name, description, price, compare_price, stock, status,
			 external_id, marketplace, last_sync_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (external_id, marketplace)
		DO UPDATE SET
			name = $3,
			price = $5,
			compare_price = $6,
			stock = $7,
			status = $8,
			last_sync_at = $11,
			updated_at = $13
	`

	_, err := ex.Exec(ctx, query,
		product.ID, product.VendorID, product.Name, product.Description,
		product.Price, product.ComparePrice, product.Stock, string(product.Status),
		product.ExternalID, string(product.Marketplace), product.LastSyncAt,
		product.CreatedAt, product.UpdatedAt,
	)
	return err
}

// UpsertOrderByExternalID идемпотентно сохраняет канонический заказ
// по уникальному ключу (external_id, marketplace)
func (r *SyncStorage) UpsertOrderByExternalID(ctx context.Context, order *models.Order) error {
	err := r.upsertOrder(ctx, order)
	if err != nil && isUniqueViolation(err) {
		err = r.upsertOrder(ctx, order)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert order %s/%s: %w", order.Marketplace, order.ExternalID, err)
	}
	return nil
}

func (r *SyncStorage) upsertOrder(ctx context.Context, order *models.Order) error {
	ex := r.getExecutor(ctx)

	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	query := `
		INSERT INTO sync.orders
			(id, order_number, vendor_id, total, status, external_id, marketplace,
			 last_sync_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_id, marketplace)
		DO UPDATE SET
			status = $5,
			total = $4,
			last_sync_at = $8,
			updated_at = $10
	`

	_, err := ex.Exec(ctx, query,
		order.ID, order.OrderNumber, order.VendorID, order.Total, string(order.Status),
		order.ExternalID, string(order.Marketplace), order.LastSyncAt,
		order.CreatedAt, order.UpdatedAt,
	)
	return err
}
