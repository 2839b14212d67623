package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/storage/postgres"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
)

const marketplaceName = "fake"

// Connector — тестовый модуль маркетплейса с фиксированным каталогом.
// Включается только явным флагом конфигурации (sync.use_fake_module);
// никогда не выбирается по содержимому учетных данных. Используется
// для локальной разработки и сквозных проверок без внешних API.
type Connector struct {
	storage     postgres.SyncStorageInterface
	logger      interfaces.LoggerPort
	vendorID    string
	marketplace models.Marketplace
	enabled     bool

	mu       sync.Mutex
	products []models.Product
	orders   []models.Order
}

// NewConnector создает тестовый модуль с предзаполненным каталогом.
// Marketplace задает, под каким маркетплейсом модуль сохраняет записи.
func NewConnector(storage postgres.SyncStorageInterface, logger interfaces.LoggerPort,
	vendorID string, marketplace models.Marketplace, enabled bool) *Connector {
	return &Connector{
		storage:     storage,
		logger:      logger,
		vendorID:    vendorID,
		marketplace: marketplace,
		enabled:     enabled,
		products: []models.Product{
			{
				Name:        "Test Product A",
				Price:       50,
				Stock:       10,
				Status:      models.ProductStatusActive,
				ExternalID:  "1000",
				Marketplace: marketplace,
			},
			{
				Name:        "Test Product B",
				Price:       100,
				Stock:       5,
				Status:      models.ProductStatusActive,
				ExternalID:  "1001",
				Marketplace: marketplace,
			},
		},
		orders: []models.Order{
			{
				OrderNumber: "FAKE-0001",
				Total:       150,
				Status:      models.OrderStatusPending,
				ExternalID:  "9000",
				Marketplace: marketplace,
			},
		},
	}
}

// Name возвращает имя модуля
func (c *Connector) Name() string {
	return marketplaceName
}

// Marketplace возвращает идентификатор маркетплейса модуля
func (c *Connector) Marketplace() models.Marketplace {
	return c.marketplace
}

// Enabled сообщает, включен ли модуль
func (c *Connector) Enabled() bool {
	return c.enabled
}

// SyncProducts сохраняет фиксированный каталог в каноническое хранилище
func (c *Connector) SyncProducts(ctx context.Context) (int, error) {
	c.mu.Lock()
	items := make([]models.Product, len(c.products))
	copy(items, c.products)
	c.mu.Unlock()

	now := time.Now().UTC()
	synced := 0
	var syncErr error
	for i := range items {
		product := items[i]
		product.VendorID = c.vendorID
		product.LastSyncAt = &now
		if err := c.storage.UpsertProductByExternalID(ctx, &product); err != nil {
			syncErr = err
			break
		}
		synced++
	}

	c.finishSync(context.WithoutCancel(ctx), models.SyncOperationProducts, synced, syncErr)
	return synced, syncErr
}

// SyncOrders сохраняет фиксированные заказы в каноническое хранилище
func (c *Connector) SyncOrders(ctx context.Context) (int, error) {
	c.mu.Lock()
	items := make([]models.Order, len(c.orders))
	copy(items, c.orders)
	c.mu.Unlock()

	now := time.Now().UTC()
	synced := 0
	var syncErr error
	for i := range items {
		order := items[i]
		order.VendorID = c.vendorID
		order.LastSyncAt = &now
		if err := c.storage.UpsertOrderByExternalID(ctx, &order); err != nil {
			syncErr = err
			break
		}
		synced++
	}

	c.finishSync(context.WithoutCancel(ctx), models.SyncOperationOrders, synced, syncErr)
	return synced, syncErr
}

func (c *Connector) finishSync(ctx context.Context, op models.SyncOperation, synced int, syncErr error) {
	status := models.SyncStatusSuccess
	message := ""
	if syncErr != nil {
		status = models.SyncStatusFailed
		message = pkgerrors.Truncate(syncErr.Error(), models.MaxSyncErrorLength)
	}

	if err := c.storage.UpdateSyncResult(ctx, c.vendorID, c.marketplace, status, message, op, synced); err != nil {
		c.logger.ErrorWithContext(ctx, "Ошибка сохранения результата синхронизации",
			interfaces.LogField{Key: "module", Value: marketplaceName},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}

// GetProduct возвращает продукт фиксированного каталога
func (c *Connector) GetProduct(ctx context.Context, externalID string) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.products {
		if c.products[i].ExternalID == externalID {
			product := c.products[i]
			product.VendorID = c.vendorID
			return &product, nil
		}
	}
	return nil, fmt.Errorf("fake: product %s not found", externalID)
}

// UpdateProduct применяет частичное обновление к продукту каталога
func (c *Connector) UpdateProduct(ctx context.Context, externalID string, patch models.ProductPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.products {
		if c.products[i].ExternalID != externalID {
			continue
		}
		if patch.Name != "" {
			c.products[i].Name = patch.Name
		}
		if patch.Price != nil {
			c.products[i].Price = *patch.Price
		}
		if patch.Stock != nil {
			c.products[i].Stock = *patch.Stock
		}
		return nil
	}
	return fmt.Errorf("fake: product %s not found", externalID)
}

// GetOrder возвращает заказ из фиксированного набора
func (c *Connector) GetOrder(ctx context.Context, externalID string) (*models.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.orders {
		if c.orders[i].ExternalID == externalID {
			order := c.orders[i]
			order.VendorID = c.vendorID
			return &order, nil
		}
	}
	return nil, fmt.Errorf("fake: order %s not found", externalID)
}

// UpdateOrderStatus обновляет статус заказа в фиксированном наборе
func (c *Connector) UpdateOrderStatus(ctx context.Context, externalID string, status models.OrderStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.orders {
		if c.orders[i].ExternalID == externalID {
			c.orders[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("fake: order %s not found", externalID)
}

// UpdateStock обновляет остаток продукта каталога
func (c *Connector) UpdateStock(ctx context.Context, externalID string, quantity int) error {
	return c.UpdateProduct(ctx, externalID, models.ProductPatch{Stock: &quantity})
}

// UpdatePrice обновляет цену продукта каталога
func (c *Connector) UpdatePrice(ctx context.Context, externalID string, price float64) error {
	return c.UpdateProduct(ctx, externalID, models.ProductPatch{Price: &price})
}
