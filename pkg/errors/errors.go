package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Общие ошибки движка синхронизации
var (
	// ErrCacheMiss возвращается кэшем, если значение по ключу не найдено
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrModuleNotFound возвращается реестром, если модуль маркетплейса не зарегистрирован
	ErrModuleNotFound = errors.New("marketplace module not found")

	// ErrIntegrationNotFound возвращается, если запись интеграции не найдена
	ErrIntegrationNotFound = errors.New("integration not found")
)

// RemoteErrorKind классифицирует ошибки внешних API маркетплейсов
type RemoteErrorKind int

const (
	// RemoteAPI — общая ошибка внешнего API (не 2xx, кроме 401/403)
	RemoteAPI RemoteErrorKind = iota
	// RemoteAuth — неверные учетные данные (401)
	RemoteAuth
	// RemotePermission — неверный seller id или недостаточно прав (403)
	RemotePermission
	// RemoteUnreachable — сетевая ошибка, ответ не получен
	RemoteUnreachable
)

// String возвращает строковое представление вида ошибки
func (k RemoteErrorKind) String() string {
	switch k {
	case RemoteAuth:
		return "auth"
	case RemotePermission:
		return "permission"
	case RemoteUnreachable:
		return "unreachable"
	default:
		return "api"
	}
}

// RemoteError представляет типизированную ошибку внешнего API маркетплейса.
// Несет имя маркетплейса, HTTP статус и тело ответа для диагностики.
type RemoteError struct {
	Marketplace string
	Kind        RemoteErrorKind
	StatusCode  int
	Body        string
	Err         error
}

func (e *RemoteError) Error() string {
	switch e.Kind {
	case RemoteAuth:
		return fmt.Sprintf("%s: authentication failed (status %d): invalid api key/secret", e.Marketplace, e.StatusCode)
	case RemotePermission:
		return fmt.Sprintf("%s: access denied (status %d): invalid seller id or insufficient permissions", e.Marketplace, e.StatusCode)
	case RemoteUnreachable:
		return fmt.Sprintf("%s: marketplace unreachable: %v", e.Marketplace, e.Err)
	default:
		return fmt.Sprintf("%s: marketplace api error (status %d): %s", e.Marketplace, e.StatusCode, Truncate(e.Body, 200))
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// ClassifyHTTP строит RemoteError по HTTP статусу ответа внешнего API.
// 401 — ошибка аутентификации, 403 — ошибка прав доступа, остальное — общая ошибка API.
func ClassifyHTTP(marketplace string, statusCode int, body string) *RemoteError {
	kind := RemoteAPI
	switch statusCode {
	case http.StatusUnauthorized:
		kind = RemoteAuth
	case http.StatusForbidden:
		kind = RemotePermission
	}
	return &RemoteError{
		Marketplace: marketplace,
		Kind:        kind,
		StatusCode:  statusCode,
		Body:        body,
	}
}

// Unreachable строит RemoteError для сетевой ошибки без ответа
func Unreachable(marketplace string, err error) *RemoteError {
	return &RemoteError{
		Marketplace: marketplace,
		Kind:        RemoteUnreachable,
		Err:         err,
	}
}

// IsRemoteAuth сообщает, является ли ошибка ошибкой аутентификации внешнего API
func IsRemoteAuth(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == RemoteAuth
}

// IsRemotePermission сообщает, является ли ошибка ошибкой прав доступа внешнего API
func IsRemotePermission(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == RemotePermission
}

// ConfigurationError — ошибка валидации конфигурации интеграции.
// Отклоняется до любого сетевого вызова и исправима на стороне клиента.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError создает ошибку валидации конфигурации
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// IsConfiguration сообщает, является ли ошибка ошибкой конфигурации
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// HTTPStatus отображает ошибку движка в HTTP статус для внешнего API сервиса
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrModuleNotFound), errors.Is(err, ErrIntegrationNotFound):
		return http.StatusNotFound
	case IsConfiguration(err):
		return http.StatusBadRequest
	case IsRemoteAuth(err):
		return http.StatusUnauthorized
	case IsRemotePermission(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Truncate обрезает строку до max символов. Используется для ограничения
// длины сообщения об ошибке перед сохранением в запись интеграции.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
