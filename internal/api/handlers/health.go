package handlers

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
)

// HealthHandler обработчик операционных проверок
type HealthHandler struct {
	cache *services.CacheFacade
}

// NewHealthHandler создает новый обработчик проверок
func NewHealthHandler(cache *services.CacheFacade) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Health обрабатывает базовую проверку живости сервиса
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// CacheHealth сообщает доступность бэкенда кэша.
// Недоступный кэш не делает сервис неработоспособным, поэтому
// эндпоинт отвечает 200 с флагом состояния, а не 503.
func (h *HealthHandler) CacheHealth(w http.ResponseWriter, r *http.Request) {
	healthy := h.cache.HealthCheck(r.Context())

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"cache_healthy": healthy,
	})
}
