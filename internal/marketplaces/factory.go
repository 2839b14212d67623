package marketplaces

import (
	"github.com/qolanka/marketplace-platform/sync-service/config"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/storage/postgres"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/connectors"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	"github.com/qolanka/marketplace-platform/sync-service/internal/marketplaces/fake"
	"github.com/qolanka/marketplace-platform/sync-service/internal/marketplaces/hepsiburada"
	"github.com/qolanka/marketplace-platform/sync-service/internal/marketplaces/trendyol"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/tx"
)

// Build собирает модули маркетплейсов из конфигурации.
// Тестовый модуль добавляется только по явному флагу sync.use_fake_module.
func Build(cfg *config.Config, storage postgres.SyncStorageInterface, txManager tx.TxManager,
	cache *services.CacheFacade, logger interfaces.LoggerPort) []connectors.Connector {

	var modules []connectors.Connector

	ty := cfg.Marketplaces.Trendyol
	modules = append(modules, trendyol.NewConnector(
		trendyol.NewClient(trendyol.ClientConfig{
			APIKey:    ty.APIKey,
			APISecret: ty.APISecret,
			SellerID:  ty.SellerID,
			Sandbox:   ty.Sandbox,
		}),
		storage, txManager, cache, logger.WithField("module", "trendyol"),
		trendyol.ConnectorConfig{
			VendorID: cfg.Sync.VendorID,
			Enabled:  ty.Enabled,
			PageSize: pageSize(ty.PageSize, cfg.Sync.PageSize),
			CacheTTL: cfg.Cache.TTL,
		},
	))

	hb := cfg.Marketplaces.Hepsiburada
	modules = append(modules, hepsiburada.NewConnector(
		hepsiburada.NewClient(hepsiburada.ClientConfig{
			Username:   hb.APIKey,
			Password:   hb.APISecret,
			MerchantID: hb.SellerID,
			Sandbox:    hb.Sandbox,
		}),
		storage, txManager, cache, logger.WithField("module", "hepsiburada"),
		hepsiburada.ConnectorConfig{
			VendorID: cfg.Sync.VendorID,
			Enabled:  hb.Enabled,
			PageSize: pageSize(hb.PageSize, cfg.Sync.PageSize),
			CacheTTL: cfg.Cache.TTL,
		},
	))

	if cfg.Sync.UseFakeModule {
		modules = append(modules, fake.NewConnector(
			storage, logger.WithField("module", "fake"), cfg.Sync.VendorID, models.MarketplaceFake, true))
	}

	return modules
}

func pageSize(own, fallback int) int {
	if own > 0 {
		return own
	}
	return fallback
}
