package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
)

// SyncHandler обработчик запросов синхронизации
type SyncHandler struct {
	syncService services.SyncServiceInterface
	registry    *services.Registry
	logger      interfaces.LoggerPort
}

// NewSyncHandler создает новый обработчик синхронизации
func NewSyncHandler(syncService services.SyncServiceInterface, registry *services.Registry, logger interfaces.LoggerPort) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		registry:    registry,
		logger:      logger,
	}
}

// syncRequest — тело запроса на запуск синхронизации
type syncRequest struct {
	// Module — имя модуля либо "all" (пустое значение означает "all")
	Module string `json:"module"`
	// Operation — products, orders или both (пустое значение означает both)
	Operation string `json:"operation"`
}

// moduleInfo — модуль маркетплейса в ответе списка модулей
type moduleInfo struct {
	Name        string `json:"name"`
	Marketplace string `json:"marketplace"`
	Enabled     bool   `json:"enabled"`
}

// RunSync обрабатывает запрос на запуск синхронизации
func (h *SyncHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{
				Error:   "bad_request",
				Code:    http.StatusBadRequest,
				Message: "Некорректное тело запроса",
			})
			return
		}
	}

	op, ok := models.ParseSyncOperation(req.Operation)
	if !ok {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректная операция: ожидается products, orders или both",
		})
		return
	}

	report, err := h.syncService.Run(r.Context(), req.Module, op)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка запуска синхронизации",
			interfaces.LogField{Key: "module", Value: req.Module},
			interfaces.LogField{Key: "error", Value: err.Error()})
		renderError(w, r, err, "Ошибка запуска синхронизации")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    report,
	})
}

// ListModules обрабатывает запрос на получение списка модулей маркетплейсов
func (h *SyncHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules := h.registry.All()

	infos := make([]moduleInfo, 0, len(modules))
	for _, module := range modules {
		infos = append(infos, moduleInfo{
			Name:        module.Name(),
			Marketplace: module.Marketplace().String(),
			Enabled:     module.Enabled(),
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    infos,
	})
}
