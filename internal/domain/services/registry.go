package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/adapters/messaging"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/connectors"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
)

// Registry — реестр модулей маркетплейсов. Строится один раз при старте
// из конфигурации и передается явно; никаких глобальных синглтонов.
type Registry struct {
	modules   map[string]connectors.Connector
	messaging interfaces.MessagingPort
	logger    interfaces.LoggerPort
}

// NewRegistry создает реестр из готового набора модулей.
// Messaging опционален (nil допустим): события синхронизации публикуются best-effort.
func NewRegistry(modules []connectors.Connector, messagingClient interfaces.MessagingPort, logger interfaces.LoggerPort) *Registry {
	registry := &Registry{
		modules:   make(map[string]connectors.Connector, len(modules)),
		messaging: messagingClient,
		logger:    logger,
	}

	for _, module := range modules {
		registry.modules[strings.ToLower(module.Name())] = module
	}

	logger.Info("Реестр модулей маркетплейсов инициализирован",
		interfaces.LogField{Key: "modules", Value: len(registry.modules)})

	return registry
}

// Get возвращает модуль по имени (без учета регистра).
// Неизвестное имя — ErrModuleNotFound, не паника.
func (r *Registry) Get(name string) (connectors.Connector, error) {
	module, ok := r.modules[strings.ToLower(name)]
	if !ok {
		return nil, pkgerrors.ErrModuleNotFound
	}
	return module, nil
}

// All возвращает все модули в стабильном порядке по имени
func (r *Registry) All() []connectors.Connector {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)

	modules := make([]connectors.Connector, 0, len(names))
	for _, name := range names {
		modules = append(modules, r.modules[name])
	}
	return modules
}

// Enabled возвращает только включенные модули
func (r *Registry) Enabled() []connectors.Connector {
	var enabled []connectors.Connector
	for _, module := range r.All() {
		if module.Enabled() {
			enabled = append(enabled, module)
		}
	}
	return enabled
}

// SyncAllProducts запускает синхронизацию продуктов на всех включенных
// модулях конкурентно и собирает результат каждого модуля независимо
func (r *Registry) SyncAllProducts(ctx context.Context) *models.SyncReport {
	return r.fanOut(ctx, models.SyncOperationProducts, func(ctx context.Context, m connectors.Connector) (int, error) {
		return m.SyncProducts(ctx)
	})
}

// SyncAllOrders запускает синхронизацию заказов на всех включенных
// модулях конкурентно и собирает результат каждого модуля независимо
func (r *Registry) SyncAllOrders(ctx context.Context) *models.SyncReport {
	return r.fanOut(ctx, models.SyncOperationOrders, func(ctx context.Context, m connectors.Connector) (int, error) {
		return m.SyncOrders(ctx)
	})
}

// fanOut — конкурентный fan-out/fan-in по включенным модулям.
// Маркетплейсы — независимые домены доверия: отказ одного модуля
// не прерывает и не скрывает работу остальных, отчет всегда помодульный.
func (r *Registry) fanOut(ctx context.Context, op models.SyncOperation,
	run func(ctx context.Context, m connectors.Connector) (int, error)) *models.SyncReport {

	modules := r.Enabled()
	report := models.NewSyncReport(op)

	r.logger.InfoWithContext(ctx, "Запуск пакетной синхронизации",
		interfaces.LogField{Key: "operation", Value: string(op)},
		interfaces.LogField{Key: "modules", Value: len(modules)})

	results := make(chan models.SyncOutcome, len(modules))
	var wg sync.WaitGroup

	for _, module := range modules {
		wg.Add(1)
		go func(m connectors.Connector) {
			defer wg.Done()

			start := time.Now()
			count, err := run(ctx, m)
			outcome := models.SyncOutcome{
				Module:   m.Name(),
				Synced:   count,
				Duration: time.Since(start),
			}
			if err != nil {
				outcome.Status = models.SyncStatusFailed
				outcome.Error = pkgerrors.Truncate(err.Error(), models.MaxSyncErrorLength)
			} else {
				outcome.Status = models.SyncStatusSuccess
			}
			results <- outcome
		}(module)
	}

	wg.Wait()
	close(results)

	for outcome := range results {
		report.Add(outcome)
		if outcome.Status == models.SyncStatusFailed {
			r.logger.ErrorWithContext(ctx, "Синхронизация модуля завершилась с ошибкой",
				interfaces.LogField{Key: "module", Value: outcome.Module},
				interfaces.LogField{Key: "operation", Value: string(op)},
				interfaces.LogField{Key: "error", Value: outcome.Error})
		} else {
			r.logger.InfoWithContext(ctx, "Синхронизация модуля завершена",
				interfaces.LogField{Key: "module", Value: outcome.Module},
				interfaces.LogField{Key: "operation", Value: string(op)},
				interfaces.LogField{Key: "synced", Value: outcome.Synced})
		}
	}

	report.FinishedAt = time.Now().UTC()
	r.publishReport(ctx, report)

	return report
}

// publishReport публикует событие завершения синхронизации (best-effort)
func (r *Registry) publishReport(ctx context.Context, report *models.SyncReport) {
	if r.messaging == nil {
		return
	}

	event := messaging.SyncCompleted{
		EventType:  messaging.SyncCompletedEvent,
		Operation:  report.Operation,
		Succeeded:  report.Succeeded(),
		Failed:     report.Failed(),
		Outcomes:   report.Outcomes,
		FinishedAt: report.FinishedAt,
	}
	if event.Failed > 0 {
		event.EventType = messaging.SyncFailedEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := r.messaging.Publish(ctx, messaging.SyncEventsTopic, payload); err != nil {
		r.logger.WarnWithContext(ctx, "Ошибка публикации события синхронизации",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}
