package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/logger"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIntegrationService — сервис-заглушка интеграций
type stubIntegrationService struct {
	integrations []*models.IntegrationConfig
	saveErr      error
	saved        *models.IntegrationConfig
}

func (s *stubIntegrationService) GetIntegrations(ctx context.Context, vendorID string) ([]*models.IntegrationConfig, error) {
	return s.integrations, nil
}

func (s *stubIntegrationService) SaveIntegration(ctx context.Context, vendorID string, patch *models.IntegrationPatch) (*models.IntegrationConfig, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.saved, nil
}

// stubSyncService — сервис-заглушка синхронизации
type stubSyncService struct {
	report *models.SyncReport
	err    error
}

func (s *stubSyncService) Run(ctx context.Context, target string, op models.SyncOperation) (*models.SyncReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func withVendor(r *http.Request, vendorID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "vendor_id", vendorID))
}

func TestGetIntegrations_ReturnsSanitizedRecords(t *testing.T) {
	svc := &stubIntegrationService{
		integrations: []*models.IntegrationConfig{
			{
				VendorID:    "v1",
				Marketplace: models.MarketplaceTrendyol,
				APIKey:      "secret",
				APISecret:   "secret",
				SellerID:    "123",
				IsEnabled:   true,
			},
		},
	}
	// Сервис санитизирует сам; здесь проверяем, что обработчик отдает данные как есть
	svc.integrations[0] = svc.integrations[0].Sanitized()

	handler := NewIntegrationHandler(svc, logger.NewNopLogger())

	req := withVendor(httptest.NewRequest(http.MethodGet, "/api/v1/integrations", nil), "v1")
	rec := httptest.NewRecorder()
	handler.GetIntegrations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "secret")
	assert.NotContains(t, body, `"api_key"`)
	assert.Contains(t, body, "TRENDYOL")
}

func TestGetIntegrations_RequiresVendor(t *testing.T) {
	handler := NewIntegrationHandler(&stubIntegrationService{}, logger.NewNopLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/integrations", nil)
	rec := httptest.NewRecorder()
	handler.GetIntegrations(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaveIntegration_ConfigurationErrorMapsTo400(t *testing.T) {
	svc := &stubIntegrationService{
		saveErr: pkgerrors.NewConfigurationError("marketplace", "unknown marketplace"),
	}
	handler := NewIntegrationHandler(svc, logger.NewNopLogger())

	payload := `{"marketplace":"ebay","api_key":"k","api_secret":"s","seller_id":"1"}`
	req := withVendor(httptest.NewRequest(http.MethodPost, "/api/v1/integrations", strings.NewReader(payload)), "v1")
	rec := httptest.NewRecorder()
	handler.SaveIntegration(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "marketplace")
}

func TestSaveIntegration_InvalidBody(t *testing.T) {
	handler := NewIntegrationHandler(&stubIntegrationService{}, logger.NewNopLogger())

	req := withVendor(httptest.NewRequest(http.MethodPost, "/api/v1/integrations", strings.NewReader("{broken")), "v1")
	rec := httptest.NewRecorder()
	handler.SaveIntegration(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunSync_UnknownModuleMapsTo404(t *testing.T) {
	registry := services.NewRegistry(nil, nil, logger.NewNopLogger())
	handler := NewSyncHandler(&stubSyncService{err: pkgerrors.ErrModuleNotFound}, registry, logger.NewNopLogger())

	payload := `{"module":"ebay","operation":"products"}`
	req := withVendor(httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader(payload)), "v1")
	rec := httptest.NewRecorder()
	handler.RunSync(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunSync_InvalidOperation(t *testing.T) {
	registry := services.NewRegistry(nil, nil, logger.NewNopLogger())
	handler := NewSyncHandler(&stubSyncService{}, registry, logger.NewNopLogger())

	payload := `{"module":"all","operation":"everything"}`
	req := withVendor(httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader(payload)), "v1")
	rec := httptest.NewRecorder()
	handler.RunSync(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunSync_ReturnsReport(t *testing.T) {
	report := models.NewSyncReport(models.SyncOperationProducts)
	report.Add(models.SyncOutcome{Module: "trendyol", Status: models.SyncStatusSuccess, Synced: 2})

	registry := services.NewRegistry(nil, nil, logger.NewNopLogger())
	handler := NewSyncHandler(&stubSyncService{report: report}, registry, logger.NewNopLogger())

	payload := `{"module":"trendyol","operation":"products"}`
	req := withVendor(httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader(payload)), "v1")
	rec := httptest.NewRecorder()
	handler.RunSync(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"synced":2`)
}

func TestRunSync_EmptyBodyMeansFullSync(t *testing.T) {
	report := models.NewSyncReport(models.SyncOperationBoth)
	registry := services.NewRegistry(nil, nil, logger.NewNopLogger())
	handler := NewSyncHandler(&stubSyncService{report: report}, registry, logger.NewNopLogger())

	req := withVendor(httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil), "v1")
	rec := httptest.NewRecorder()
	handler.RunSync(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
