package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHTTP(t *testing.T) {
	auth := ClassifyHTTP("trendyol", http.StatusUnauthorized, "")
	assert.Equal(t, RemoteAuth, auth.Kind)
	assert.True(t, IsRemoteAuth(auth))

	permission := ClassifyHTTP("trendyol", http.StatusForbidden, "")
	assert.Equal(t, RemotePermission, permission.Kind)
	assert.True(t, IsRemotePermission(permission))

	api := ClassifyHTTP("trendyol", http.StatusBadGateway, "upstream error")
	assert.Equal(t, RemoteAPI, api.Kind)
	assert.False(t, IsRemoteAuth(api))
}

func TestClassifyHTTP_WrappedErrorsAreRecognized(t *testing.T) {
	wrapped := fmt.Errorf("sync failed: %w", ClassifyHTTP("trendyol", http.StatusUnauthorized, ""))
	assert.True(t, IsRemoteAuth(wrapped))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(wrapped))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrModuleNotFound))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrIntegrationNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewConfigurationError("marketplace", "unknown")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ClassifyHTTP("m", http.StatusUnauthorized, "")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ClassifyHTTP("m", http.StatusForbidden, "")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ClassifyHTTP("m", http.StatusBadGateway, "")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unexpected")))
}

func TestRemoteErrorMessages(t *testing.T) {
	auth := ClassifyHTTP("trendyol", http.StatusUnauthorized, "")
	assert.Contains(t, auth.Error(), "authentication failed")
	assert.Contains(t, auth.Error(), "trendyol")

	unreachable := Unreachable("hepsiburada", fmt.Errorf("dial tcp: timeout"))
	assert.Contains(t, unreachable.Error(), "unreachable")

	// Тело длинного ответа усечено в сообщении
	api := ClassifyHTTP("trendyol", http.StatusBadGateway, strings.Repeat("x", 500))
	assert.Less(t, len(api.Error()), 300)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 500))
	assert.Len(t, Truncate(strings.Repeat("a", 600), 500), 500)
}
