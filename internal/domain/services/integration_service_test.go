package services

import (
	"context"
	"testing"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/cache"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/logger"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStorage — хранилище-заглушка для тестов сервисов
type stubStorage struct {
	integrations map[string]*models.IntegrationConfig
	listCalls    int
	products     []*models.Product
	orders       []*models.Order
}

func newStubStorage() *stubStorage {
	return &stubStorage{integrations: make(map[string]*models.IntegrationConfig)}
}

func storageKey(vendorID string, marketplace models.Marketplace) string {
	return vendorID + "|" + string(marketplace)
}

func (s *stubStorage) UpsertIntegration(ctx context.Context, integration *models.IntegrationConfig) (*models.IntegrationConfig, error) {
	if integration.ID == "" {
		integration.ID = "generated-id"
	}
	integration.LastSyncStatus = models.SyncStatusPending
	integration.LastSyncError = ""

	stored := *integration
	s.integrations[storageKey(integration.VendorID, integration.Marketplace)] = &stored
	return integration, nil
}

func (s *stubStorage) FindIntegration(ctx context.Context, vendorID string, marketplace models.Marketplace) (*models.IntegrationConfig, error) {
	stored, ok := s.integrations[storageKey(vendorID, marketplace)]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (s *stubStorage) ListIntegrations(ctx context.Context, vendorID string) ([]*models.IntegrationConfig, error) {
	s.listCalls++
	var out []*models.IntegrationConfig
	for _, stored := range s.integrations {
		if vendorID == "" || stored.VendorID == vendorID {
			copied := *stored
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *stubStorage) UpdateSyncResult(ctx context.Context, vendorID string, marketplace models.Marketplace,
	status models.SyncStatus, syncErr string, op models.SyncOperation, count int) error {
	stored, ok := s.integrations[storageKey(vendorID, marketplace)]
	if !ok {
		return nil
	}
	stored.LastSyncStatus = status
	stored.LastSyncError = syncErr
	if status == models.SyncStatusSuccess {
		if op == models.SyncOperationOrders {
			stored.OrderCount = count
		} else {
			stored.ProductCount = count
		}
	}
	return nil
}

func (s *stubStorage) UpsertProductByExternalID(ctx context.Context, product *models.Product) error {
	for i, existing := range s.products {
		if existing.ExternalID == product.ExternalID && existing.Marketplace == product.Marketplace {
			s.products[i] = product
			return nil
		}
	}
	s.products = append(s.products, product)
	return nil
}

func (s *stubStorage) UpsertOrderByExternalID(ctx context.Context, order *models.Order) error {
	for i, existing := range s.orders {
		if existing.ExternalID == order.ExternalID && existing.Marketplace == order.Marketplace {
			s.orders[i] = order
			return nil
		}
	}
	s.orders = append(s.orders, order)
	return nil
}

func newTestIntegrationService(storage *stubStorage) *IntegrationService {
	facade := NewCacheFacade(cache.NewMemoryCache(time.Minute), logger.NewNopLogger())
	return NewIntegrationService(storage, facade, logger.NewNopLogger(), time.Minute)
}

func TestGetIntegrations_NeverEchoesCredentials(t *testing.T) {
	storage := newStubStorage()
	storage.integrations[storageKey("v1", models.MarketplaceTrendyol)] = &models.IntegrationConfig{
		ID:          "i1",
		VendorID:    "v1",
		Marketplace: models.MarketplaceTrendyol,
		APIKey:      "secret-key",
		APISecret:   "secret-value",
		SellerID:    "12345",
		IsEnabled:   true,
	}

	svc := newTestIntegrationService(storage)

	integrations, err := svc.GetIntegrations(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, integrations, 1)

	assert.Empty(t, integrations[0].APIKey)
	assert.Empty(t, integrations[0].APISecret)
	assert.Empty(t, integrations[0].SellerID)
	assert.Equal(t, models.MarketplaceTrendyol, integrations[0].Marketplace)
	assert.True(t, integrations[0].IsEnabled)
}

func TestGetIntegrations_UsesCache(t *testing.T) {
	storage := newStubStorage()
	storage.integrations[storageKey("v1", models.MarketplaceTrendyol)] = &models.IntegrationConfig{
		VendorID:    "v1",
		Marketplace: models.MarketplaceTrendyol,
	}

	svc := newTestIntegrationService(storage)
	ctx := context.Background()

	_, err := svc.GetIntegrations(ctx, "v1")
	require.NoError(t, err)
	_, err = svc.GetIntegrations(ctx, "v1")
	require.NoError(t, err)

	assert.Equal(t, 1, storage.listCalls, "повторное чтение должно обслуживаться из кэша")
}

func TestSaveIntegration_UnknownMarketplace(t *testing.T) {
	svc := newTestIntegrationService(newStubStorage())

	_, err := svc.SaveIntegration(context.Background(), "v1", &models.IntegrationPatch{
		Marketplace: "ebay",
		APIKey:      "k",
		APISecret:   "s",
		SellerID:    "1",
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsConfiguration(err))
	assert.Equal(t, 400, pkgerrors.HTTPStatus(err))
}

func TestSaveIntegration_RequiresCredentials(t *testing.T) {
	svc := newTestIntegrationService(newStubStorage())

	_, err := svc.SaveIntegration(context.Background(), "v1", &models.IntegrationPatch{
		Marketplace: "trendyol",
		APIKey:      "k",
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsConfiguration(err))
}

func TestSaveIntegration_MergesWithExisting(t *testing.T) {
	storage := newStubStorage()
	storage.integrations[storageKey("v1", models.MarketplaceTrendyol)] = &models.IntegrationConfig{
		ID:          "i1",
		VendorID:    "v1",
		Marketplace: models.MarketplaceTrendyol,
		APIKey:      "old-key",
		APISecret:   "old-secret",
		SellerID:    "111",
		IsEnabled:   true,
	}

	svc := newTestIntegrationService(storage)

	// Обновляем только api key: остальные учетные данные не затираются
	saved, err := svc.SaveIntegration(context.Background(), "v1", &models.IntegrationPatch{
		Marketplace: "trendyol",
		APIKey:      "new-key",
	})
	require.NoError(t, err)

	stored := storage.integrations[storageKey("v1", models.MarketplaceTrendyol)]
	assert.Equal(t, "new-key", stored.APIKey)
	assert.Equal(t, "old-secret", stored.APISecret)
	assert.Equal(t, "111", stored.SellerID)

	// Ответ не содержит учетных данных
	assert.Empty(t, saved.APIKey)
	assert.Empty(t, saved.APISecret)
	assert.Empty(t, saved.SellerID)
}

func TestSaveIntegration_ResetsSyncStatusToPending(t *testing.T) {
	storage := newStubStorage()
	storage.integrations[storageKey("v1", models.MarketplaceTrendyol)] = &models.IntegrationConfig{
		VendorID:       "v1",
		Marketplace:    models.MarketplaceTrendyol,
		APIKey:         "k",
		APISecret:      "s",
		SellerID:       "1",
		LastSyncStatus: models.SyncStatusFailed,
		LastSyncError:  "previous failure",
	}

	svc := newTestIntegrationService(storage)

	saved, err := svc.SaveIntegration(context.Background(), "v1", &models.IntegrationPatch{
		Marketplace: "trendyol",
		APIKey:      "new-key",
	})
	require.NoError(t, err)

	assert.Equal(t, models.SyncStatusPending, saved.LastSyncStatus)
	assert.Empty(t, saved.LastSyncError)
}

func TestSaveIntegration_InvalidatesCachedList(t *testing.T) {
	storage := newStubStorage()
	svc := newTestIntegrationService(storage)
	ctx := context.Background()

	_, err := svc.GetIntegrations(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, 1, storage.listCalls)

	_, err = svc.SaveIntegration(ctx, "v1", &models.IntegrationPatch{
		Marketplace: "trendyol",
		APIKey:      "k",
		APISecret:   "s",
		SellerID:    "1",
	})
	require.NoError(t, err)

	integrations, err := svc.GetIntegrations(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 2, storage.listCalls, "сохранение должно инвалидировать кэш списка")
	assert.Len(t, integrations, 1)
}

func TestSaveIntegration_RejectsBlankSellerID(t *testing.T) {
	svc := newTestIntegrationService(newStubStorage())

	_, err := svc.SaveIntegration(context.Background(), "v1", &models.IntegrationPatch{
		Marketplace: "trendyol",
		APIKey:      "k",
		APISecret:   "s",
		SellerID:    "   ",
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsConfiguration(err))
}
