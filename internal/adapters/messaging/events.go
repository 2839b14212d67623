package messaging

import (
	"time"

	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
)

// Топики движка синхронизации
const (
	// SyncRequestsTopic — входящие запросы на синхронизацию (консьюмер — воркер)
	SyncRequestsTopic = "sync-requests"
	// SyncEventsTopic — события жизненного цикла синхронизации
	SyncEventsTopic = "sync-events"
)

// Типы событий синхронизации
const (
	SyncCompletedEvent = "sync_completed"
	SyncFailedEvent    = "sync_failed"
)

// SyncRequest — команда на запуск синхронизации.
// Module "all" означает все включенные модули.
type SyncRequest struct {
	Module    string `json:"module"`
	Operation string `json:"operation"`
}

// SyncCompleted — событие завершения пакетной синхронизации
type SyncCompleted struct {
	EventType  string                        `json:"event_type"`
	Operation  models.SyncOperation          `json:"operation"`
	Succeeded  int                           `json:"succeeded"`
	Failed     int                           `json:"failed"`
	Outcomes   map[string]models.SyncOutcome `json:"outcomes"`
	FinishedAt time.Time                     `json:"finished_at"`
}
