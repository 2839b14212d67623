package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/config"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/cache"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/logger"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/messaging"
	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/storage/postgres"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	"github.com/qolanka/marketplace-platform/sync-service/internal/marketplaces"
	"github.com/qolanka/marketplace-platform/sync-service/internal/utils"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/tx"
)

// Воркер синхронизации: принимает команды из Kafka (топик sync-requests)
// и запускает синхронизацию модулей маркетплейсов
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
	log.Info("Инициализация воркера синхронизации",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
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

	txManager := tx.NewTxManager(db.Pool())

	var cacheClient interfaces.CachePort
	if cfg.Cache.Backend == "memory" {
		cacheClient = cache.NewMemoryCache(time.Minute)
	} else {
		cacheClient, err = cache.NewRedisCache(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
	defer cacheClient.Close()

	cacheFacade := services.NewCacheFacade(cacheClient, log)

	messagingClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, log)
	if err != nil {
		log.Fatal("Ошибка инициализации системы обмена сообщениями", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer messagingClient.Close()

	modules := marketplaces.Build(cfg, db, txManager, cacheFacade, log)
	registry := services.NewRegistry(modules, messagingClient, log)
	syncService := services.NewSyncService(registry, log)

	unsubscribe, err := messagingClient.Subscribe(ctx, messaging.SyncRequestsTopic,
		func(ctx context.Context, msg *interfaces.Message) error {
			var req messaging.SyncRequest
			if err := json.Unmarshal(msg.Value, &req); err != nil {
				log.ErrorWithContext(ctx, "Некорректная команда синхронизации",
					interfaces.LogField{Key: "error", Value: err.Error()})
				// Некорректное сообщение не повторяем
				return nil
			}

			op, ok := models.ParseSyncOperation(req.Operation)
			if !ok {
				log.ErrorWithContext(ctx, "Некорректная операция синхронизации",
					interfaces.LogField{Key: "operation", Value: req.Operation})
				return nil
			}

			report, err := syncService.Run(ctx, req.Module, op)
			if err != nil {
				log.ErrorWithContext(ctx, "Ошибка выполнения синхронизации",
					interfaces.LogField{Key: "module", Value: req.Module},
					interfaces.LogField{Key: "error", Value: err.Error()})
				return nil
			}

			log.InfoWithContext(ctx, "Синхронизация выполнена",
				interfaces.LogField{Key: "module", Value: req.Module},
				interfaces.LogField{Key: "succeeded", Value: report.Succeeded()},
				interfaces.LogField{Key: "failed", Value: report.Failed()})
			return nil
		})
	if err != nil {
		log.Fatal("Ошибка подписки на топик команд", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	log.Info("Воркер запущен", interfaces.LogField{Key: "topic", Value: messaging.SyncRequestsTopic})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Получен сигнал завершения, останавливаем воркер...")
	cancel()

	if err := unsubscribe(); err != nil {
		log.Error("Ошибка отписки от топика", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	log.Info("Воркер корректно завершил работу")
}
