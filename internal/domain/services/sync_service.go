package services

import (
	"context"
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/connectors"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
)

// SyncTargetAll — имя цели, означающее все включенные модули
const SyncTargetAll = "all"

// SyncServiceInterface определяет контракт сервиса синхронизации
type SyncServiceInterface interface {
	Run(ctx context.Context, target string, op models.SyncOperation) (*models.SyncReport, error)
}

// SyncService — точка входа запуска синхронизации: один модуль по имени
// либо пакетный запуск по всем включенным модулям через реестр
type SyncService struct {
	registry *Registry
	logger   interfaces.LoggerPort
}

// NewSyncService создает новый сервис синхронизации
func NewSyncService(registry *Registry, logger interfaces.LoggerPort) *SyncService {
	return &SyncService{
		registry: registry,
		logger:   logger,
	}
}

// Run запускает операцию синхронизации для указанной цели.
// Target — имя модуля либо SyncTargetAll; неизвестное имя — ErrModuleNotFound.
func (s *SyncService) Run(ctx context.Context, target string, op models.SyncOperation) (*models.SyncReport, error) {
	if target == "" || target == SyncTargetAll {
		return s.runAll(ctx, op), nil
	}

	module, err := s.registry.Get(target)
	if err != nil {
		return nil, err
	}
	return s.runModule(ctx, module, op), nil
}

// runAll запускает пакетную синхронизацию через реестр.
// Операция "both" выполняется последовательно: сначала продукты, затем заказы.
func (s *SyncService) runAll(ctx context.Context, op models.SyncOperation) *models.SyncReport {
	switch op {
	case models.SyncOperationProducts:
		return s.registry.SyncAllProducts(ctx)
	case models.SyncOperationOrders:
		return s.registry.SyncAllOrders(ctx)
	default:
		products := s.registry.SyncAllProducts(ctx)
		orders := s.registry.SyncAllOrders(ctx)
		return mergeReports(products, orders)
	}
}

// runModule синхронизирует один модуль и строит помодульный отчет
func (s *SyncService) runModule(ctx context.Context, module connectors.Connector, op models.SyncOperation) *models.SyncReport {
	report := models.NewSyncReport(op)

	start := time.Now()
	synced := 0
	var err error

	switch op {
	case models.SyncOperationProducts:
		synced, err = module.SyncProducts(ctx)
	case models.SyncOperationOrders:
		synced, err = module.SyncOrders(ctx)
	default:
		synced, err = module.SyncProducts(ctx)
		if err == nil {
			var orders int
			orders, err = module.SyncOrders(ctx)
			synced += orders
		}
	}

	outcome := models.SyncOutcome{
		Module:   module.Name(),
		Status:   models.SyncStatusSuccess,
		Synced:   synced,
		Duration: time.Since(start),
	}
	if err != nil {
		outcome.Status = models.SyncStatusFailed
		outcome.Error = pkgerrors.Truncate(err.Error(), models.MaxSyncErrorLength)

		s.logger.ErrorWithContext(ctx, "Синхронизация модуля завершилась с ошибкой",
			interfaces.LogField{Key: "module", Value: module.Name()},
			interfaces.LogField{Key: "operation", Value: string(op)},
			interfaces.LogField{Key: "error", Value: outcome.Error})
	}

	report.Add(outcome)
	report.FinishedAt = time.Now().UTC()
	return report
}

// mergeReports объединяет отчеты операций products и orders в отчет "both".
// Модуль считается успешным, только если обе операции прошли успешно.
func mergeReports(products, orders *models.SyncReport) *models.SyncReport {
	merged := models.NewSyncReport(models.SyncOperationBoth)
	merged.StartedAt = products.StartedAt

	for name, outcome := range products.Outcomes {
		merged.Add(outcome)
		if second, ok := orders.Outcomes[name]; ok {
			combined := outcome
			combined.Synced += second.Synced
			combined.Duration += second.Duration
			if second.Status == models.SyncStatusFailed {
				combined.Status = models.SyncStatusFailed
				if combined.Error == "" {
					combined.Error = second.Error
				}
			}
			merged.Add(combined)
		}
	}
	for name, outcome := range orders.Outcomes {
		if _, ok := merged.Outcomes[name]; !ok {
			merged.Add(outcome)
		}
	}

	merged.FinishedAt = orders.FinishedAt
	return merged
}
