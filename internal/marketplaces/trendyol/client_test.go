package trendyol

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		APIKey:    "key",
		APISecret: "secret",
		SellerID:  "777",
		BaseURL:   baseURL,
	})
}

func TestClient_SendsAuthAndUserAgentHeaders(t *testing.T) {
	var gotAuth, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(productPage{TotalPages: 1})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetProducts(context.Background(), 0, 50)
	require.NoError(t, err)

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
	assert.Equal(t, wantAuth, gotAuth)
	assert.Equal(t, "777 - SelfIntegration", gotUA)
}

func TestClient_SellerIDInPathAndPagination(t *testing.T) {
	var gotPath, gotPage, gotSize string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPage = r.URL.Query().Get("page")
		gotSize = r.URL.Query().Get("size")
		json.NewEncoder(w).Encode(productPage{TotalPages: 1})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetProducts(context.Background(), 3, 25)
	require.NoError(t, err)

	assert.Equal(t, "/suppliers/777/products", gotPath)
	assert.Equal(t, "3", gotPage)
	assert.Equal(t, "25", gotSize)
}

func TestClient_EscapesReservedCharactersInIDs(t *testing.T) {
	var gotPath, gotBarcode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotBarcode = r.URL.Query().Get("barcode")
		json.NewEncoder(w).Encode(productPage{Content: []productItem{{Barcode: "x"}}})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{SellerID: "7/7?x", BaseURL: server.URL})
	_, err := client.GetProduct(context.Background(), "bar&code=1")
	require.NoError(t, err)

	// Зарезервированные символы в идентификаторах не должны менять
	// маршрут или параметры запроса
	assert.Equal(t, "/suppliers/7%2F7%3Fx/products", gotPath)
	assert.Equal(t, "bar&code=1", gotBarcode)
}

func TestClient_SandboxAndProductionBaseURL(t *testing.T) {
	production := NewClient(ClientConfig{SellerID: "1"})
	assert.Equal(t, productionBaseURL, production.baseURL)

	sandbox := NewClient(ClientConfig{SellerID: "1", Sandbox: true})
	assert.Equal(t, sandboxBaseURL, sandbox.baseURL)
}

func TestClient_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid credentials"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetProducts(context.Background(), 0, 50)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsRemoteAuth(err))
	assert.Equal(t, http.StatusUnauthorized, pkgerrors.HTTPStatus(err))
}

func TestClient_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"wrong supplier"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetOrders(context.Background(), 0, 50)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsRemotePermission(err))
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // закрываем сразу: соединение невозможно

	client := newTestClient(server.URL)
	_, err := client.GetProducts(context.Background(), 0, 50)

	require.Error(t, err)
	var remoteErr *pkgerrors.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, pkgerrors.RemoteUnreachable, remoteErr.Kind)
}

func TestClient_GetProductNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(productPage{})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetProduct(context.Background(), "missing-barcode")

	require.Error(t, err)
	var remoteErr *pkgerrors.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
}
