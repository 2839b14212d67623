package models

import "time"

// SyncOperation — тип операции синхронизации
type SyncOperation string

const (
	SyncOperationProducts SyncOperation = "products"
	SyncOperationOrders   SyncOperation = "orders"
	SyncOperationBoth     SyncOperation = "both"
)

// ParseSyncOperation разбирает тип операции; пустая строка означает обе операции
func ParseSyncOperation(s string) (SyncOperation, bool) {
	switch SyncOperation(s) {
	case SyncOperationProducts:
		return SyncOperationProducts, true
	case SyncOperationOrders:
		return SyncOperationOrders, true
	case SyncOperationBoth, "":
		return SyncOperationBoth, true
	}
	return "", false
}

// SyncOutcome — результат синхронизации одного модуля маркетплейса
type SyncOutcome struct {
	Module   string        `json:"module"`
	Status   SyncStatus    `json:"status"`
	Synced   int           `json:"synced"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// SyncReport — агрегированный отчет пакетной синхронизации:
// результат каждого модуля фиксируется независимо, отказ одного модуля
// не скрывает результаты остальных.
type SyncReport struct {
	Operation  SyncOperation          `json:"operation"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	Outcomes   map[string]SyncOutcome `json:"outcomes"`
}

// NewSyncReport создает пустой отчет для указанной операции
func NewSyncReport(op SyncOperation) *SyncReport {
	return &SyncReport{
		Operation: op,
		StartedAt: time.Now().UTC(),
		Outcomes:  make(map[string]SyncOutcome),
	}
}

// Add фиксирует результат одного модуля
func (r *SyncReport) Add(outcome SyncOutcome) {
	r.Outcomes[outcome.Module] = outcome
}

// Failed возвращает количество модулей, завершившихся с ошибкой
func (r *SyncReport) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == SyncStatusFailed {
			n++
		}
	}
	return n
}

// Succeeded возвращает количество успешно завершившихся модулей
func (r *SyncReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == SyncStatusSuccess {
			n++
		}
	}
	return n
}
