package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/qolanka/marketplace-platform/sync-service/config"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/cache"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/logger"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/messaging"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/storage/postgres"
	"github.com/qolanka/marketplace-platform/sync-service/internal/api"
	"github.com/qolanka/marketplace-platform/sync-service/internal/api/middleware"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	"github.com/qolanka/marketplace-platform/sync-service/internal/marketplaces"
	"github.com/qolanka/marketplace-platform/sync-service/internal/utils"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/tx"
)

// метрики для Prometheus
var (
	httpDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_durations_seconds",
		Help:    "Длительность HTTP запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	requestsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Общее количество HTTP запросов",
	}, []string{"path", "method", "status"})
)

// metricsMiddleware собирает метрики HTTP запросов
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewResponseWriter(w)

		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.Status())
		httpDurations.WithLabelValues(r.URL.Path, r.Method, status).Observe(time.Since(start).Seconds())
		requestsCounter.WithLabelValues(r.URL.Path, r.Method, status).Inc()
	})
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	postgresCon, err := utils.GenerateConnectionString(
		cfg.Postgres.Host,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
		cfg.Postgres.Port,
		cfg.Postgres.PoolSize,
		cfg.Postgres.Timeout,
	)
	if err != nil {
		fmt.Printf("Ошибка инициализации строки подключения базы: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.NewPostgresStorage(ctx, postgresCon)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer db.Close()
	log.Info("Хранилище инициализировано")

	txManager := tx.NewTxManager(db.Pool())

	cacheClient, err := buildCache(ctx, cfg)
	if err != nil {
		log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer cacheClient.Close()
	log.Info("Кэш инициализирован", interfaces.LogField{Key: "backend", Value: cfg.Cache.Backend})

	cacheFacade := services.NewCacheFacade(cacheClient, log)

	var messagingClient interfaces.MessagingPort
	if cfg.Kafka.Enabled {
		messagingClient, err = messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, log)
		if err != nil {
			log.Fatal("Ошибка инициализации системы обмена сообщениями", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		defer messagingClient.Close()
		log.Info("Система обмена сообщениями инициализирована")
	}

	modules := marketplaces.Build(cfg, db, txManager, cacheFacade, log)
	registry := services.NewRegistry(modules, messagingClient, log)

	integrationService := services.NewIntegrationService(db, cacheFacade, log, cfg.Cache.TTL)
	syncService := services.NewSyncService(registry, log)
	log.Info("Сервисы инициализированы")

	router := api.SetupRouter(api.RouterConfig{
		IntegrationService: integrationService,
		SyncService:        syncService,
		Registry:           registry,
		Cache:              cacheFacade,
		Logger:             log,
		CORSAllowedOrigins: cfg.Security.CORSAllowOrigins,
		JWTSecret:          cfg.Security.JWTSecret,
		MetricsEnabled:     cfg.Metrics.Enabled,
		MetricsEndpoint:    cfg.Metrics.Endpoint,
	})
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      metricsMiddleware(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		log.Info("HTTP сервер остановлен")

		if messagingClient != nil {
			if err := messagingClient.Close(); err != nil {
				log.Error("Ошибка при закрытии Kafka",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}

		if err := cacheClient.Close(); err != nil {
			log.Error("Ошибка при закрытии кэша",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		if err := db.Close(); err != nil {
			log.Error("Ошибка при закрытии БД",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}

// buildCache создает бэкенд кэша согласно конфигурации
func buildCache(ctx context.Context, cfg *config.Config) (interfaces.CachePort, error) {
	if cfg.Cache.Backend == "memory" {
		return cache.NewMemoryCache(time.Minute), nil
	}
	return cache.NewRedisCache(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
}
