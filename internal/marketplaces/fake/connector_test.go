package fake

import (
	"context"
	"testing"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/logger"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStorage отклоняет запросы с отмененным контекстом, как pgx
type recordingStorage struct {
	products    []*models.Product
	orders      []*models.Order
	marketplace models.Marketplace
	syncStatus  models.SyncStatus
	syncCount   int
	resultCalls int
}

func (s *recordingStorage) UpsertIntegration(ctx context.Context, integration *models.IntegrationConfig) (*models.IntegrationConfig, error) {
	return integration, nil
}

func (s *recordingStorage) FindIntegration(ctx context.Context, vendorID string, marketplace models.Marketplace) (*models.IntegrationConfig, error) {
	return nil, nil
}

func (s *recordingStorage) ListIntegrations(ctx context.Context, vendorID string) ([]*models.IntegrationConfig, error) {
	return nil, nil
}

func (s *recordingStorage) UpdateSyncResult(ctx context.Context, vendorID string, marketplace models.Marketplace,
	status models.SyncStatus, syncErr string, op models.SyncOperation, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.resultCalls++
	s.marketplace = marketplace
	s.syncStatus = status
	s.syncCount = count
	return nil
}

func (s *recordingStorage) UpsertProductByExternalID(ctx context.Context, product *models.Product) error {
	s.products = append(s.products, product)
	return nil
}

func (s *recordingStorage) UpsertOrderByExternalID(ctx context.Context, order *models.Order) error {
	s.orders = append(s.orders, order)
	return nil
}

func TestFakeConnector_SyncsFixedCatalog(t *testing.T) {
	storage := &recordingStorage{}
	connector := NewConnector(storage, logger.NewNopLogger(), "v1", models.MarketplaceFake, true)

	synced, err := connector.SyncProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, synced)

	require.Len(t, storage.products, 2)
	assert.Equal(t, "1000", storage.products[0].ExternalID)
	assert.Equal(t, 50.0, storage.products[0].Price)
	assert.Equal(t, "1001", storage.products[1].ExternalID)
	assert.Equal(t, 100.0, storage.products[1].Price)
	assert.Equal(t, "v1", storage.products[0].VendorID)

	assert.Equal(t, models.SyncStatusSuccess, storage.syncStatus)
	assert.Equal(t, 2, storage.syncCount)
}

func TestFakeConnector_RecordsOwnMarketplaceTag(t *testing.T) {
	storage := &recordingStorage{}
	connector := NewConnector(storage, logger.NewNopLogger(), "v1", models.MarketplaceFake, true)

	_, err := connector.SyncProducts(context.Background())
	require.NoError(t, err)

	// Записи тестового модуля никогда не затирают блок состояния
	// реальной интеграции
	assert.Equal(t, models.MarketplaceFake, storage.marketplace)
	assert.NotEqual(t, models.MarketplaceTrendyol, storage.marketplace)
	for _, product := range storage.products {
		assert.Equal(t, models.MarketplaceFake, product.Marketplace)
	}
	assert.False(t, storage.marketplace.Valid(), "тег тестового модуля не входит в перечисление интеграций")
}

func TestFakeConnector_CancellationRecordsFailure(t *testing.T) {
	storage := &recordingStorage{}
	connector := NewConnector(storage, logger.NewNopLogger(), "v1", models.MarketplaceFake, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connector.SyncProducts(ctx)
	require.Error(t, err)

	// Запись FAILED обязана пережить отмену контекста синхронизации
	assert.Equal(t, 1, storage.resultCalls)
	assert.Equal(t, models.SyncStatusFailed, storage.syncStatus)
}

func TestFakeConnector_UpdatesAreVisible(t *testing.T) {
	connector := NewConnector(&recordingStorage{}, logger.NewNopLogger(), "v1", models.MarketplaceFake, true)
	ctx := context.Background()

	require.NoError(t, connector.UpdateStock(ctx, "1000", 99))
	require.NoError(t, connector.UpdatePrice(ctx, "1001", 42))

	first, err := connector.GetProduct(ctx, "1000")
	require.NoError(t, err)
	assert.Equal(t, 99, first.Stock)

	second, err := connector.GetProduct(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, 42.0, second.Price)
}

func TestFakeConnector_OrderStatusTransition(t *testing.T) {
	connector := NewConnector(&recordingStorage{}, logger.NewNopLogger(), "v1", models.MarketplaceFake, true)
	ctx := context.Background()

	require.NoError(t, connector.UpdateOrderStatus(ctx, "9000", models.OrderStatusShipping))

	order, err := connector.GetOrder(ctx, "9000")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipping, order.Status)
}

func TestFakeConnector_UnknownProduct(t *testing.T) {
	connector := NewConnector(&recordingStorage{}, logger.NewNopLogger(), "v1", models.MarketplaceFake, true)

	_, err := connector.GetProduct(context.Background(), "does-not-exist")
	assert.Error(t, err)
}
