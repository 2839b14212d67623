package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qolanka/marketplace-platform/sync-service/internal/api/handlers"
	"github.com/qolanka/marketplace-platform/sync-service/internal/api/middleware"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig — зависимости и настройки маршрутизатора
type RouterConfig struct {
	IntegrationService services.IntegrationServiceInterface
	SyncService        services.SyncServiceInterface
	Registry           *services.Registry
	Cache              *services.CacheFacade
	Logger             interfaces.LoggerPort
	CORSAllowedOrigins []string
	JWTSecret          string
	MetricsEnabled     bool
	MetricsEndpoint    string
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.SecurityHeaders)

	healthHandler := handlers.NewHealthHandler(cfg.Cache)
	r.Method(http.MethodGet, "/health", http.HandlerFunc(healthHandler.Health))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	r.Get("/health/cache", healthHandler.CacheHealth)

	if cfg.MetricsEnabled {
		endpoint := cfg.MetricsEndpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.Handle(endpoint, promhttp.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.VendorAuth(cfg.JWTSecret, cfg.Logger))

		integrationHandler := handlers.NewIntegrationHandler(cfg.IntegrationService, cfg.Logger)
		syncHandler := handlers.NewSyncHandler(cfg.SyncService, cfg.Registry, cfg.Logger)

		// Маршруты конфигурации интеграций
		r.Route("/integrations", func(r chi.Router) {
			r.Get("/", integrationHandler.GetIntegrations)
			r.Post("/", integrationHandler.SaveIntegration)
		})

		// Маршруты синхронизации
		r.Post("/sync", syncHandler.RunSync)
		r.Get("/modules", syncHandler.ListModules)
	})

	return r
}
