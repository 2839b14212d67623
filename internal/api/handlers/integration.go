package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/services"
	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/qolanka/marketplace-platform/sync-service/pkg/interfaces"
)

// errorResponse представляет структуру ответа с ошибкой
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// response представляет структуру успешного ответа
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// renderError пишет ответ с ошибкой, отображая ошибку движка в HTTP статус
func renderError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	code := pkgerrors.HTTPStatus(err)

	message := fallback
	if code != http.StatusInternalServerError {
		message = err.Error()
	}

	render.Status(r, code)
	render.JSON(w, r, errorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

// IntegrationHandler обработчик запросов конфигурации интеграций
type IntegrationHandler struct {
	integrationService services.IntegrationServiceInterface
	logger             interfaces.LoggerPort
}

// NewIntegrationHandler создает новый обработчик интеграций
func NewIntegrationHandler(integrationService services.IntegrationServiceInterface, logger interfaces.LoggerPort) *IntegrationHandler {
	return &IntegrationHandler{
		integrationService: integrationService,
		logger:             logger,
	}
}

// GetIntegrations обрабатывает запрос на получение интеграций продавца.
// Учетные данные в ответе отсутствуют всегда.
func (h *IntegrationHandler) GetIntegrations(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := r.Context().Value("vendor_id").(string)
	if !ok || vendorID == "" {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errorResponse{
			Error:   "unauthorized",
			Code:    http.StatusUnauthorized,
			Message: "ID продавца не указан",
		})
		return
	}

	integrations, err := h.integrationService.GetIntegrations(r.Context(), vendorID)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка получения интеграций",
			interfaces.LogField{Key: "error", Value: err.Error()})
		renderError(w, r, err, "Ошибка получения интеграций")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    integrations,
	})
}

// SaveIntegration обрабатывает запрос на сохранение конфигурации интеграции
func (h *IntegrationHandler) SaveIntegration(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := r.Context().Value("vendor_id").(string)
	if !ok || vendorID == "" {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errorResponse{
			Error:   "unauthorized",
			Code:    http.StatusUnauthorized,
			Message: "ID продавца не указан",
		})
		return
	}

	var patch models.IntegrationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректное тело запроса",
		})
		return
	}

	integration, err := h.integrationService.SaveIntegration(r.Context(), vendorID, &patch)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка сохранения интеграции",
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "marketplace", Value: patch.Marketplace})
		renderError(w, r, err, "Ошибка сохранения интеграции")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    integration,
	})
}
