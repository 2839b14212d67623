package hepsiburada

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/cache"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/logger"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStorage отклоняет запросы с отмененным контекстом, как pgx
type recordingStorage struct {
	products    []*models.Product
	orders      []*models.Order
	syncStatus  models.SyncStatus
	syncError   string
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
	s.syncStatus = status
	s.syncError = syncErr
	s.syncCount = count
	return nil
}

func (s *recordingStorage) UpsertProductByExternalID(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.products = append(s.products, product)
	return nil
}

func (s *recordingStorage) UpsertOrderByExternalID(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.orders = append(s.orders, order)
	return nil
}

func newTestConnector(baseURL string, storage *recordingStorage, limit int) *Connector {
	facade := services.NewCacheFacade(cache.NewMemoryCache(time.Minute), logger.NewNopLogger())
	client := NewClient(ClientConfig{
		Username:   "user",
		Password:   "pass",
		MerchantID: "m-42",
		BaseURL:    baseURL,
	})
	return NewConnector(client, storage, nil, facade, logger.NewNopLogger(),
		ConnectorConfig{VendorID: "v1", Enabled: true, PageSize: limit})
}

func TestSyncProducts_PaginatesByOffsetToTotalCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var items []listingItem
		for i := offset; i < offset+limit && i < 5; i++ {
			items = append(items, listingItem{
				MerchantSKU: "sku-" + strconv.Itoa(i),
				ProductName: "item",
				Price:       10,
				IsSalable:   true,
			})
		}
		json.NewEncoder(w).Encode(listingPage{
			Listings:   items,
			TotalCount: 5,
			Offset:     offset,
			Limit:      limit,
		})
	}))
	defer server.Close()

	storage := &recordingStorage{}
	connector := newTestConnector(server.URL, storage, 2)

	synced, err := connector.SyncProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, synced)
	assert.Len(t, storage.products, 5)
	assert.Equal(t, models.SyncStatusSuccess, storage.syncStatus)
	assert.Equal(t, models.MarketplaceHepsiburada, storage.products[0].Marketplace)
}

func TestSyncOrders_RecordsFailureOnPermissionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"wrong merchant"}`, http.StatusForbidden)
	}))
	defer server.Close()

	storage := &recordingStorage{}
	connector := newTestConnector(server.URL, storage, 50)

	_, err := connector.SyncOrders(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.SyncStatusFailed, storage.syncStatus)
	assert.Contains(t, storage.syncError, "access denied")
}

func TestSyncProducts_CancellationRecordsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(listingPage{TotalCount: 0})
	}))
	defer server.Close()

	storage := &recordingStorage{}
	connector := newTestConnector(server.URL, storage, 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connector.SyncProducts(ctx)
	require.Error(t, err)

	// Запись FAILED обязана пережить отмену контекста синхронизации
	assert.Equal(t, 1, storage.resultCalls)
	assert.Equal(t, models.SyncStatusFailed, storage.syncStatus)
	assert.Contains(t, storage.syncError, "context canceled")
}

func TestClient_MerchantIDInPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(listingPage{TotalCount: 0})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{MerchantID: "m-42", BaseURL: server.URL})
	_, err := client.GetListings(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "/listings/merchantid/m-42", gotPath)
}

func TestClient_EscapesReservedCharactersInIDs(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(listingItem{})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{MerchantID: "m/42?x", BaseURL: server.URL})
	_, err := client.GetListing(context.Background(), "sku/with?chars")
	require.NoError(t, err)

	// Зарезервированные символы в идентификаторах не должны менять маршрут
	assert.Equal(t, "/listings/merchantid/m%2F42%3Fx/sku/sku%2Fwith%3Fchars", gotPath)
}
