package hepsiburada

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
	marketplaceName = "hepsiburada"

	productionBaseURL = "https://listing-external.hepsiburada.com"
	sandboxBaseURL    = "https://listing-external-sit.hepsiburada.com"

	maxErrorBodySize = 4096
)

// ClientConfig — параметры HTTP клиента Hepsiburada
type ClientConfig struct {
	// Username и Password — учетные данные API (merchant credentials)
	Username string
	Password string
	// MerchantID — идентификатор продавца. Непрозрачная строка,
	// подставляется в пути API.
	MerchantID string
	Sandbox    bool
	// BaseURL переопределяет адрес API (используется в тестах)
	BaseURL string
	Timeout time.Duration
}

// Client — низкоуровневый HTTP клиент API Hepsiburada.
// В отличие от Trendyol, API использует пагинацию offset/limit
// и возвращает список в поле listings с общим счетчиком totalCount.
type Client struct {
	httpClient *http.Client
	baseURL    string
	merchantID string
	authHeader string
}

// NewClient создает клиента API Hepsiburada
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

	credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		// merchant id подставляется только в пути API, экранируется один раз
		merchantID: url.PathEscape(cfg.MerchantID),
		authHeader: "Basic " + credentials,
	}
}

// listingItem — позиция каталога в ответе API Hepsiburada
type listingItem struct {
	MerchantSKU  string  `json:"merchantSku"`
	ProductName  string  `json:"productName"`
	Price        float64 `json:"price"`
	AvailableQty int     `json:"availableStock"`
	IsSalable    bool    `json:"isSalable"`
}

// listingPage — страница каталога с пагинацией offset/limit
type listingPage struct {
	Listings   []listingItem `json:"listings"`
	TotalCount int           `json:"totalCount"`
	Offset     int           `json:"offset"`
	Limit      int           `json:"limit"`
}

// orderEntry — заказ в ответе API Hepsiburada
type orderEntry struct {
	OrderID     string  `json:"id"`
	OrderNumber string  `json:"orderNumber"`
	TotalAmount float64 `json:"totalPrice"`
	Status      string  `json:"status"`
}

// orderListPage — страница заказов с пагинацией offset/limit
type orderListPage struct {
	Orders     []orderEntry `json:"items"`
	TotalCount int          `json:"totalCount"`
	Offset     int          `json:"offset"`
	Limit      int          `json:"limit"`
}

// do выполняет запрос к API и разбирает ответ в out
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
		return fmt.Errorf("ошибка разбора ответа hepsiburada: %w", err)
	}
	return nil
}

// GetListings возвращает одну страницу каталога продавца
func (c *Client) GetListings(ctx context.Context, offset, limit int) (*listingPage, error) {
	path := fmt.Sprintf("/listings/merchantid/%s?offset=%d&limit=%d", c.merchantID, offset, limit)

	var result listingPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetListing возвращает одну позицию каталога по SKU продавца
func (c *Client) GetListing(ctx context.Context, sku string) (*listingItem, error) {
	path := fmt.Sprintf("/listings/merchantid/%s/sku/%s", c.merchantID, url.PathEscape(sku))

	var result listingItem
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateListing обновляет позицию каталога (цену и/или остаток)
func (c *Client) UpdateListing(ctx context.Context, item map[string]interface{}) error {
	path := fmt.Sprintf("/listings/merchantid/%s/inventory-uploads", c.merchantID)
	return c.do(ctx, http.MethodPost, path, []map[string]interface{}{item}, nil)
}

// GetOrders возвращает одну страницу заказов продавца
func (c *Client) GetOrders(ctx context.Context, offset, limit int) (*orderListPage, error) {
	path := fmt.Sprintf("/orders/merchantid/%s?offset=%d&limit=%d", c.merchantID, offset, limit)

	var result orderListPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrder возвращает один заказ по идентификатору
func (c *Client) GetOrder(ctx context.Context, orderID string) (*orderEntry, error) {
	path := fmt.Sprintf("/orders/merchantid/%s/id/%s", c.merchantID, url.PathEscape(orderID))

	var result orderEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateOrderStatus переводит заказ в указанный статус Hepsiburada
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	path := fmt.Sprintf("/orders/merchantid/%s/id/%s/status", c.merchantID, url.PathEscape(orderID))
	payload := map[string]interface{}{"status": status}
	return c.do(ctx, http.MethodPut, path, payload, nil)
}
