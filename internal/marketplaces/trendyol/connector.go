package trendyol

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/storage/postgres"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/tx"
)

const defaultPageSize = 50

// ConnectorConfig — параметры модуля Trendyol
type ConnectorConfig struct {
	VendorID string
	Enabled  bool
	PageSize int
	CacheTTL time.Duration
}

// Connector — модуль маркетплейса Trendyol: постраничная синхронизация
// каталога и заказов в каноническое хранилище и точечные операции
// чтения/обновления поверх API Trendyol
type Connector struct {
	client    *Client
	storage   postgres.SyncStorageInterface
	txManager tx.TxManager
	cache     *services.CacheFacade
	logger    interfaces.LoggerPort

	vendorID string
	enabled  bool
	pageSize int
	cacheTTL time.Duration
}

// NewConnector создает модуль Trendyol
func NewConnector(client *Client, storage postgres.SyncStorageInterface, txManager tx.TxManager,
	cache *services.CacheFacade, logger interfaces.LoggerPort, cfg ConnectorConfig) *Connector {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Connector{
		client:    client,
		storage:   storage,
		txManager: txManager,
		cache:     cache,
		logger:    logger,
		vendorID:  cfg.VendorID,
		enabled:   cfg.Enabled,
		pageSize:  pageSize,
		cacheTTL:  cacheTTL,
	}
}

// Name возвращает имя модуля
func (c *Connector) Name() string {
	return marketplaceName
}

// Marketplace возвращает идентификатор маркетплейса
func (c *Connector) Marketplace() models.Marketplace {
	return models.MarketplaceTrendyol
}

// Enabled сообщает, включен ли модуль
func (c *Connector) Enabled() bool {
	return c.enabled
}

// inTx выполняет fn внутри транзакции, если менеджер транзакций задан
func (c *Connector) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.txManager == nil {
		return fn(ctx)
	}
	return c.txManager.Do(ctx, fn)
}

// SyncProducts постранично выгружает каталог Trendyol до исчерпания
// и идемпотентно сохраняет продукты по ключу (external id, marketplace).
// Каждая страница сохраняется в собственной транзакции: отказ на странице N
// не откатывает страницы 1..N-1, повтор синхронизации сходится.
func (c *Connector) SyncProducts(ctx context.Context) (int, error) {
	synced := 0

	err := func() error {
		for page := 0; ; page++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := c.client.GetProducts(ctx, page, c.pageSize)
			if err != nil {
				return err
			}
			if len(result.Content) == 0 {
				return nil
			}

			now := time.Now().UTC()
			err = c.inTx(ctx, func(ctx context.Context) error {
				for i := range result.Content {
					product := c.toCanonicalProduct(&result.Content[i], now)
					if err := c.storage.UpsertProductByExternalID(ctx, product); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			synced += len(result.Content)
			if result.TotalPages > 0 && page+1 >= result.TotalPages {
				return nil
			}
		}
	}()

	// Фиксация исхода и инвалидация кэша идут на контексте, отвязанном от
	// отмены: прерванная синхронизация обязана оставить запись интеграции
	// в FAILED, а закоммиченные страницы — без устаревшего кэша
	flushCtx := context.WithoutCancel(ctx)
	c.finishSync(flushCtx, models.SyncOperationProducts, synced, err)
	c.cache.InvalidatePattern(flushCtx, "products:*")
	c.cache.InvalidatePattern(flushCtx, "trendyol:product:*")
	return synced, err
}

// SyncOrders постранично выгружает заказы Trendyol до исчерпания
// и идемпотентно сохраняет их по ключу (external id, marketplace)
func (c *Connector) SyncOrders(ctx context.Context) (int, error) {
	synced := 0

	err := func() error {
		for page := 0; ; page++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := c.client.GetOrders(ctx, page, c.pageSize)
			if err != nil {
				return err
			}
			if len(result.Content) == 0 {
				return nil
			}

			now := time.Now().UTC()
			err = c.inTx(ctx, func(ctx context.Context) error {
				for i := range result.Content {
					order := c.toCanonicalOrder(&result.Content[i], now)
					if err := c.storage.UpsertOrderByExternalID(ctx, order); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			synced += len(result.Content)
			if result.TotalPages > 0 && page+1 >= result.TotalPages {
				return nil
			}
		}
	}()

	flushCtx := context.WithoutCancel(ctx)
	c.finishSync(flushCtx, models.SyncOperationOrders, synced, err)
	c.cache.InvalidatePattern(flushCtx, "orders:*")
	c.cache.InvalidatePattern(flushCtx, "trendyol:order:*")
	return synced, err
}

// finishSync фиксирует исход синхронизации в записи интеграции
func (c *Connector) finishSync(ctx context.Context, op models.SyncOperation, synced int, syncErr error) {
	status := models.SyncStatusSuccess
	message := ""
	if syncErr != nil {
		status = models.SyncStatusFailed
		message = pkgerrors.Truncate(syncErr.Error(), models.MaxSyncErrorLength)
	}

	if err := c.storage.UpdateSyncResult(ctx, c.vendorID, models.MarketplaceTrendyol, status, message, op, synced); err != nil {
		c.logger.ErrorWithContext(ctx, "Ошибка сохранения результата синхронизации",
			interfaces.LogField{Key: "module", Value: marketplaceName},
			interfaces.LogField{Key: "operation", Value: string(op)},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}

// toCanonicalProduct отображает продукт Trendyol в каноническую сущность
func (c *Connector) toCanonicalProduct(item *productItem, syncedAt time.Time) *models.Product {
	return &models.Product{
		VendorID:     c.vendorID,
		Name:         item.Title,
		Description:  item.Description,
		Price:        item.SalePrice,
		ComparePrice: item.ListPrice,
		Stock:        item.Quantity,
		Status:       toProductStatus(item.Approved),
		ExternalID:   item.Barcode,
		Marketplace:  models.MarketplaceTrendyol,
		LastSyncAt:   &syncedAt,
	}
}

// toCanonicalOrder отображает заказ Trendyol в каноническую сущность
func (c *Connector) toCanonicalOrder(item *orderItem, syncedAt time.Time) *models.Order {
	return &models.Order{
		OrderNumber: item.OrderNumber,
		VendorID:    c.vendorID,
		Total:       item.TotalPrice,
		Status:      toCanonicalStatus(item.Status),
		ExternalID:  strconv.FormatInt(item.ID, 10),
		Marketplace: models.MarketplaceTrendyol,
		LastSyncAt:  &syncedAt,
	}
}

// GetProduct возвращает продукт маркетплейса по внешнему идентификатору (через кэш)
func (c *Connector) GetProduct(ctx context.Context, externalID string) (*models.Product, error) {
	var product models.Product

	key := fmt.Sprintf("trendyol:product:%s", externalID)
	err := c.cache.GetOrCompute(ctx, key, c.cacheTTL, &product,
		func(ctx context.Context) (interface{}, error) {
			item, err := c.client.GetProduct(ctx, externalID)
			if err != nil {
				return nil, err
			}
			now := time.Now().UTC()
			return c.toCanonicalProduct(item, now), nil
		})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct отправляет частичное обновление продукта на маркетплейс
func (c *Connector) UpdateProduct(ctx context.Context, externalID string, patch models.ProductPatch) error {
	item := map[string]interface{}{"barcode": externalID}
	if patch.Name != "" {
		item["title"] = patch.Name
	}
	if patch.Price != nil {
		item["salePrice"] = *patch.Price
		item["listPrice"] = *patch.Price
	}
	if patch.Stock != nil {
		item["quantity"] = *patch.Stock
	}

	if err := c.client.UpdateProducts(ctx, []map[string]interface{}{item}); err != nil {
		return err
	}

	c.cache.Invalidate(ctx, fmt.Sprintf("trendyol:product:%s", externalID))
	return nil
}

// GetOrder возвращает заказ маркетплейса по внешнему идентификатору (через кэш)
func (c *Connector) GetOrder(ctx context.Context, externalID string) (*models.Order, error) {
	var order models.Order

	key := fmt.Sprintf("trendyol:order:%s", externalID)
	err := c.cache.GetOrCompute(ctx, key, c.cacheTTL, &order,
		func(ctx context.Context) (interface{}, error) {
			item, err := c.client.GetOrder(ctx, externalID)
			if err != nil {
				return nil, err
			}
			now := time.Now().UTC()
			return c.toCanonicalOrder(item, now), nil
		})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus переводит заказ на маркетплейсе в статус, соответствующий каноническому
func (c *Connector) UpdateOrderStatus(ctx context.Context, externalID string, status models.OrderStatus) error {
	if err := c.client.UpdateOrderStatus(ctx, externalID, fromCanonicalStatus(status)); err != nil {
		return err
	}

	c.cache.Invalidate(ctx, fmt.Sprintf("trendyol:order:%s", externalID))
	return nil
}

// UpdateStock обновляет остаток продукта на маркетплейсе
func (c *Connector) UpdateStock(ctx context.Context, externalID string, quantity int) error {
	item := map[string]interface{}{
		"barcode":  externalID,
		"quantity": quantity,
	}
	if err := c.client.UpdatePriceAndInventory(ctx, []map[string]interface{}{item}); err != nil {
		return err
	}

	c.cache.Invalidate(ctx, fmt.Sprintf("trendyol:product:%s", externalID))
	return nil
}

// UpdatePrice обновляет цену продукта на маркетплейсе
func (c *Connector) UpdatePrice(ctx context.Context, externalID string, price float64) error {
	item := map[string]interface{}{
		"barcode":   externalID,
		"salePrice": price,
		"listPrice": price,
	}
	if err := c.client.UpdatePriceAndInventory(ctx, []map[string]interface{}{item}); err != nil {
		return err
	}

	c.cache.Invalidate(ctx, fmt.Sprintf("trendyol:product:%s", externalID))
	return nil
}
