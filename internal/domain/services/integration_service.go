package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/storage/postgres"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
)

// IntegrationServiceInterface определяет контракт сервиса интеграций
type IntegrationServiceInterface interface {
	GetIntegrations(ctx context.Context, vendorID string) ([]*models.IntegrationConfig, error)
	SaveIntegration(ctx context.Context, vendorID string, patch *models.IntegrationPatch) (*models.IntegrationConfig, error)
}

// IntegrationService управляет записями интеграций продавцов с маркетплейсами:
// чтение через кэш и сохранение учетных данных с merge-семантикой
type IntegrationService struct {
	storage  postgres.SyncStorageInterface
	cache    *CacheFacade
	logger   interfaces.LoggerPort
	cacheTTL time.Duration
}

// NewIntegrationService создает новый сервис интеграций
func NewIntegrationService(storage postgres.SyncStorageInterface, cache *CacheFacade,
	logger interfaces.LoggerPort, cacheTTL time.Duration) *IntegrationService {
	return &IntegrationService{
		storage:  storage,
		cache:    cache,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// integrationsCacheKey строит ключ кэша списка интеграций продавца
func integrationsCacheKey(vendorID string) string {
	return fmt.Sprintf("integrations:%s", vendorID)
}

// GetIntegrations возвращает записи интеграций продавца без учетных данных.
// Учетные данные вычищаются до кэширования: ни ответ, ни кэш их не содержат.
func (s *IntegrationService) GetIntegrations(ctx context.Context, vendorID string) ([]*models.IntegrationConfig, error) {
	var integrations []*models.IntegrationConfig

	err := s.cache.GetOrCompute(ctx, integrationsCacheKey(vendorID), s.cacheTTL, &integrations,
		func(ctx context.Context) (interface{}, error) {
			stored, err := s.storage.ListIntegrations(ctx, vendorID)
			if err != nil {
				return nil, err
			}

			sanitized := make([]*models.IntegrationConfig, 0, len(stored))
			for _, integration := range stored {
				sanitized = append(sanitized, integration.Sanitized())
			}
			return sanitized, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get integrations: %w", err)
	}

	return integrations, nil
}

// SaveIntegration сохраняет конфигурацию интеграции продавца с merge-семантикой:
// пустые поля учетных данных в patch не затирают сохраненные значения.
// Каждое сохранение сбрасывает статус синхронизации в PENDING.
// Возвращает запись без учетных данных.
func (s *IntegrationService) SaveIntegration(ctx context.Context, vendorID string, patch *models.IntegrationPatch) (*models.IntegrationConfig, error) {
	marketplace, ok := models.ParseMarketplace(patch.Marketplace)
	if !ok {
		return nil, pkgerrors.NewConfigurationError("marketplace",
			fmt.Sprintf("unknown marketplace %q", patch.Marketplace))
	}

	sellerID := strings.TrimSpace(patch.SellerID)
	if patch.SellerID != "" && sellerID == "" {
		return nil, pkgerrors.NewConfigurationError("seller_id", "must not be blank")
	}

	existing, err := s.storage.FindIntegration(ctx, vendorID, marketplace)
	if err != nil {
		return nil, fmt.Errorf("failed to load integration: %w", err)
	}

	integration := &models.IntegrationConfig{
		VendorID:    vendorID,
		Marketplace: marketplace,
		IsEnabled:   true,
	}
	if existing != nil {
		integration = existing
	}

	if patch.APIKey != "" {
		integration.APIKey = patch.APIKey
	}
	if patch.APISecret != "" {
		integration.APISecret = patch.APISecret
	}
	if sellerID != "" {
		integration.SellerID = sellerID
	}
	if patch.IsEnabled != nil {
		integration.IsEnabled = *patch.IsEnabled
	}

	if !integration.HasCredentials() {
		return nil, pkgerrors.NewConfigurationError("credentials",
			"api_key, api_secret and seller_id are required")
	}

	saved, err := s.storage.UpsertIntegration(ctx, integration)
	if err != nil {
		return nil, fmt.Errorf("failed to save integration: %w", err)
	}

	s.cache.InvalidatePattern(ctx, "integrations:*")

	s.logger.InfoWithContext(ctx, "Конфигурация интеграции сохранена",
		interfaces.LogField{Key: "vendor_id", Value: vendorID},
		interfaces.LogField{Key: "marketplace", Value: string(marketplace)},
		interfaces.LogField{Key: "is_enabled", Value: saved.IsEnabled})

	return saved.Sanitized(), nil
}
