package trendyol

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	pkgerrors "github.com/qolanka/marketplace-platform/sync-service/pkg/errors"
)

const (
	marketplaceName = "trendyol"

	productionBaseURL = "https://api.trendyol.com/sapigw"
	sandboxBaseURL    = "https://stage.trendyol.com/sapigw"

	// maxErrorBodySize ограничивает размер читаемого тела ошибки внешнего API
	maxErrorBodySize = 4096
)

// ClientConfig — параметры HTTP клиента Trendyol
type ClientConfig struct {
	APIKey    string
	APISecret string
	// SellerID — идентификатор продавца Trendyol. Непрозрачная строка,
	// подставляется в пути API и в заголовок User-Agent.
	SellerID string
	// Sandbox переключает клиента на тестовый контур stage.trendyol.com.
	// Выбор контура — только явный флаг конфигурации, никогда не содержимое
	// учетных данных.
	Sandbox bool
	// BaseURL переопределяет адрес API (используется в тестах)
	BaseURL string
	Timeout time.Duration
}

// Client — низкоуровневый HTTP клиент API Trendyol.
// Все методы возвращают типизированные ошибки: RemoteError по HTTP статусу
// (401 — auth, 403 — permission) либо RemoteUnreachable при сетевой ошибке.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sellerID   string
	authHeader string
	userAgent  string
}

// NewClient создает клиента API Trendyol
func NewClient(cfg ClientConfig) *Client {
	baseURL := productionBaseURL
	if cfg.Sandbox {
		baseURL = sandboxBaseURL
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(cfg.APIKey + ":" + cfg.APISecret))

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		// seller id подставляется только в пути API, экранируется один раз
		sellerID:   url.PathEscape(cfg.SellerID),
		authHeader: "Basic " + credentials,
		// Trendyol требует seller id в User-Agent для self-integration
		userAgent: cfg.SellerID + " - SelfIntegration",
	}
}

// productItem — продукт в ответе API Trendyol
type productItem struct {
	Barcode     string  `json:"barcode"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	SalePrice   float64 `json:"salePrice"`
	ListPrice   float64 `json:"listPrice"`
	Quantity    int     `json:"quantity"`
	Approved    bool    `json:"approved"`
}

// productPage — страница продуктов с метаданными пагинации
type productPage struct {
	Content       []productItem `json:"content"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int           `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
}

// orderItem — заказ в ответе API Trendyol
type orderItem struct {
	ID          int64   `json:"id"`
	OrderNumber string  `json:"orderNumber"`
	TotalPrice  float64 `json:"totalPrice"`
	Status      string  `json:"status"`
}

// orderPage — страница заказов с метаданными пагинации
type orderPage struct {
	Content       []orderItem `json:"content"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalElements int         `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
}

// do выполняет запрос к API с аутентификацией и разбирает ответ в out.
// Любой не-2xx статус превращается в типизированную RemoteError.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Unreachable(marketplaceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return pkgerrors.ClassifyHTTP(marketplaceName, resp.StatusCode, string(errBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка разбора ответа trendyol: %w", err)
	}
	return nil
}

// GetProducts возвращает одну страницу продуктов продавца
func (c *Client) GetProducts(ctx context.Context, page, size int) (*productPage, error) {
	path := fmt.Sprintf("/suppliers/%s/products?page=%d&size=%d", c.sellerID, page, size)

	var result productPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProduct возвращает один продукт по штрихкоду
func (c *Client) GetProduct(ctx context.Context, barcode string) (*productItem, error) {
	path := fmt.Sprintf("/suppliers/%s/products?barcode=%s", c.sellerID, url.QueryEscape(barcode))

	var result productPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if len(result.Content) == 0 {
		return nil, pkgerrors.ClassifyHTTP(marketplaceName, http.StatusNotFound, "product not found")
	}
	return &result.Content[0], nil
}

// UpdateProducts отправляет обновления продуктов на маркетплейс
func (c *Client) UpdateProducts(ctx context.Context, items []map[string]interface{}) error {
	path := fmt.Sprintf("/suppliers/%s/v2/products", c.sellerID)
	payload := map[string]interface{}{"items": items}
	return c.do(ctx, http.MethodPut, path, payload, nil)
}

// UpdatePriceAndInventory обновляет цену и остаток продуктов
func (c *Client) UpdatePriceAndInventory(ctx context.Context, items []map[string]interface{}) error {
	path := fmt.Sprintf("/suppliers/%s/products/price-and-inventory", c.sellerID)
	payload := map[string]interface{}{"items": items}
	return c.do(ctx, http.MethodPost, path, payload, nil)
}

// GetOrders возвращает одну страницу заказов продавца
func (c *Client) GetOrders(ctx context.Context, page, size int) (*orderPage, error) {
	path := fmt.Sprintf("/suppliers/%s/orders?page=%d&size=%d", c.sellerID, page, size)

	var result orderPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrder возвращает один заказ по номеру
func (c *Client) GetOrder(ctx context.Context, orderNumber string) (*orderItem, error) {
	path := fmt.Sprintf("/suppliers/%s/orders?orderNumber=%s", c.sellerID, url.QueryEscape(orderNumber))

	var result orderPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if len(result.Content) == 0 {
		return nil, pkgerrors.ClassifyHTTP(marketplaceName, http.StatusNotFound, "order not found")
	}
	return &result.Content[0], nil
}

// UpdateOrderStatus переводит пакет заказа в указанный статус Trendyol
func (c *Client) UpdateOrderStatus(ctx context.Context, shipmentPackageID, status string) error {
	path := fmt.Sprintf("/suppliers/%s/shipment-packages/%s", c.sellerID, url.PathEscape(shipmentPackageID))
	payload := map[string]interface{}{"status": status}
	return c.do(ctx, http.MethodPut, path, payload, nil)
}
