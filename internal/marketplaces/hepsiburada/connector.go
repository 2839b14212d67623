package hepsiburada

import (
	"context"
	"fmt"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/storage/postgres"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/tx"
)

const defaultPageLimit = 50

// ConnectorConfig — параметры модуля Hepsiburada
type ConnectorConfig struct {
	VendorID string
	Enabled  bool
	PageSize int
	CacheTTL time.Duration
}

// Connector — модуль маркетплейса Hepsiburada
type Connector struct {
	client    *Client
	storage   postgres.SyncStorageInterface
	txManager tx.TxManager
	cache     *services.CacheFacade
	logger    interfaces.LoggerPort

	vendorID string
	enabled  bool
	limit    int
	cacheTTL time.Duration
}

// NewConnector создает модуль Hepsiburada
func NewConnector(client *Client, storage postgres.SyncStorageInterface, txManager tx.TxManager,
	cache *services.CacheFacade, logger interfaces.LoggerPort, cfg ConnectorConfig) *Connector {
	limit := cfg.PageSize
	if limit <= 0 {
		limit = defaultPageLimit
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
		limit:     limit,
		cacheTTL:  cacheTTL,
	}
}

// Name возвращает имя модуля
func (c *Connector) Name() string {
	return marketplaceName
}

// Marketplace возвращает идентификатор маркетплейса
func (c *Connector) Marketplace() models.Marketplace {
	return models.MarketplaceHepsiburada
}

// Enabled сообщает, включен ли модуль
func (c *Connector) Enabled() bool {
	return c.enabled
}

func (c *Connector) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.txManager == nil {
		return fn(ctx)
	}
	return c.txManager.Do(ctx, fn)
}

// SyncProducts выгружает каталог Hepsiburada порциями offset/limit до
// достижения totalCount и идемпотентно сохраняет позиции в хранилище
func (c *Connector) SyncProducts(ctx context.Context) (int, error) {
	synced := 0

	err := func() error {
		for offset := 0; ; offset += c.limit {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := c.client.GetListings(ctx, offset, c.limit)
			if err != nil {
				return err
			}
			if len(result.Listings) == 0 {
				return nil
			}

			now := time.Now().UTC()
			err = c.inTx(ctx, func(ctx context.Context) error {
				for i := range result.Listings {
					product := c.toCanonicalProduct(&result.Listings[i], now)
					if err := c.storage.UpsertProductByExternalID(ctx, product); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			synced += len(result.Listings)
			if offset+c.limit >= result.TotalCount {
				return nil
			}
		}
	}()

	// Фиксация исхода и инвалидация кэша идут на контексте, отвязанном от
	// отмены: прерванная синхронизация обязана оставить запись интеграции
	// в FAILED, а закоммиченные порции — без устаревшего кэша
	flushCtx := context.WithoutCancel(ctx)
	c.finishSync(flushCtx, models.SyncOperationProducts, synced, err)
	c.cache.InvalidatePattern(flushCtx, "products:*")
	c.cache.InvalidatePattern(flushCtx, "hepsiburada:product:*")
	return synced, err
}

// SyncOrders выгружает заказы Hepsiburada порциями offset/limit до
// достижения totalCount и идемпотентно сохраняет их в хранилище
func (c *Connector) SyncOrders(ctx context.Context) (int, error) {
	synced := 0

	err := func() error {
		for offset := 0; ; offset += c.limit {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := c.client.GetOrders(ctx, offset, c.limit)
			if err != nil {
				return err
			}
			if len(result.Orders) == 0 {
				return nil
			}

			now := time.Now().UTC()
			err = c.inTx(ctx, func(ctx context.Context) error {
				for i := range result.Orders {
					order := c.toCanonicalOrder(&result.Orders[i], now)
					if err := c.storage.UpsertOrderByExternalID(ctx, order); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			synced += len(result.Orders)
			if offset+c.limit >= result.TotalCount {
				return nil
			}
		}
	}()

	flushCtx := context.WithoutCancel(ctx)
	c.finishSync(flushCtx, models.SyncOperationOrders, synced, err)
	c.cache.InvalidatePattern(flushCtx, "orders:*")
	c.cache.InvalidatePattern(flushCtx, "hepsiburada:order:*")
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

	if err := c.storage.UpdateSyncResult(ctx, c.vendorID, models.MarketplaceHepsiburada, status, message, op, synced); err != nil {
		c.logger.ErrorWithContext(ctx, "Ошибка сохранения результата синхронизации",
			interfaces.LogField{Key: "module", Value: marketplaceName},
			interfaces.LogField{Key: "operation", Value: string(op)},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}

// toCanonicalProduct отображает позицию каталога в каноническую сущность
func (c *Connector) toCanonicalProduct(item *listingItem, syncedAt time.Time) *models.Product {
	return &models.Product{
		VendorID:    c.vendorID,
		Name:        item.ProductName,
		Price:       item.Price,
		Stock:       item.AvailableQty,
		Status:      toProductStatus(item.IsSalable),
		ExternalID:  item.MerchantSKU,
		Marketplace: models.MarketplaceHepsiburada,
		LastSyncAt:  &syncedAt,
	}
}

// toCanonicalOrder отображает заказ Hepsiburada в каноническую сущность
func (c *Connector) toCanonicalOrder(item *orderEntry, syncedAt time.Time) *models.Order {
	return &models.Order{
		OrderNumber: item.OrderNumber,
		VendorID:    c.vendorID,
		Total:       item.TotalAmount,
		Status:      toCanonicalStatus(item.Status),
		ExternalID:  item.OrderID,
		Marketplace: models.MarketplaceHepsiburada,
		LastSyncAt:  &syncedAt,
	}
}

// GetProduct возвращает продукт маркетплейса по SKU (через кэш)
func (c *Connector) GetProduct(ctx context.Context, externalID string) (*models.Product, error) {
	var product models.Product

	key := fmt.Sprintf("hepsiburada:product:%s", externalID)
	err := c.cache.GetOrCompute(ctx, key, c.cacheTTL, &product,
		func(ctx context.Context) (interface{}, error) {
			item, err := c.client.GetListing(ctx, externalID)
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

// UpdateProduct отправляет частичное обновление позиции на маркетплейс
func (c *Connector) UpdateProduct(ctx context.Context, externalID string, patch models.ProductPatch) error {
	item := map[string]interface{}{"merchantSku": externalID}
	if patch.Name != "" {
		item["productName"] = patch.Name
	}
	if patch.Price != nil {
		item["price"] = *patch.Price
	}
	if patch.Stock != nil {
		item["availableStock"] = *patch.Stock
	}

	if err := c.client.UpdateListing(ctx, item); err != nil {
		return err
	}

	c.cache.Invalidate(ctx, fmt.Sprintf("hepsiburada:product:%s", externalID))
	return nil
}

// GetOrder возвращает заказ маркетплейса по идентификатору (через кэш)
func (c *Connector) GetOrder(ctx context.Context, externalID string) (*models.Order, error) {
	var order models.Order

	key := fmt.Sprintf("hepsiburada:order:%s", externalID)
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

	c.cache.Invalidate(ctx, fmt.Sprintf("hepsiburada:order:%s", externalID))
	return nil
}

// UpdateStock обновляет остаток позиции на маркетплейсе
func (c *Connector) UpdateStock(ctx context.Context, externalID string, quantity int) error {
	item := map[string]interface{}{
		"merchantSku":    externalID,
		"availableStock": quantity,
	}
	if err := c.client.UpdateListing(ctx, item); err != nil {
		return err
	}

	c.cache.Invalidate(ctx, fmt.Sprintf("hepsiburada:product:%s", externalID))
	return nil
}

// UpdatePrice обновляет цену позиции на маркетплейсе
func (c *Connector) UpdatePrice(ctx context.Context, externalID string, price float64) error {
	item := map[string]interface{}{
		"merchantSku": externalID,
		"price":       price,
	}
	if err := c.client.UpdateListing(ctx, item); err != nil {
		return err
	}

	c.cache.Invalidate(ctx, fmt.Sprintf("hepsiburada:product:%s", externalID))
	return nil
}
