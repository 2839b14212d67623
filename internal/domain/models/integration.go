package models

import "time"

// MaxSyncErrorLength ограничивает длину сохраняемого сообщения об ошибке синхронизации
const MaxSyncErrorLength = 500

// IntegrationConfig — запись конфигурации и состояния интеграции
// одного продавца (vendor) с одним маркетплейсом.
// Инвариант: не более одной записи на пару (VendorID, Marketplace).
type IntegrationConfig struct {
	ID       string `json:"id"`
	VendorID string `json:"vendor_id"`
	// Marketplace — идентификатор маркетплейса (закрытое перечисление)
	Marketplace Marketplace `json:"marketplace"`

	// Учетные данные. Хранятся как непрозрачные строки и никогда
	// не возвращаются при чтении (см. Sanitized).
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
	// SellerID — внешний идентификатор продавца. Непрозрачная строка:
	// внешние идентификаторы не обязаны быть числовыми на всех маркетплейсах.
	SellerID string `json:"seller_id,omitempty"`

	IsEnabled bool `json:"is_enabled"`

	// Блок состояния синхронизации
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus SyncStatus `json:"last_sync_status"`
	LastSyncError  string     `json:"last_sync_error,omitempty"`
	ProductCount   int        `json:"product_count"`
	OrderCount     int        `json:"order_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitized возвращает копию записи без учетных данных.
// Используется всеми операциями чтения: api key и secret не покидают движок.
func (c *IntegrationConfig) Sanitized() *IntegrationConfig {
	out := *c
	out.APIKey = ""
	out.APISecret = ""
	out.SellerID = ""
	return &out
}

// HasCredentials проверяет, что для интеграции заданы все учетные данные
func (c *IntegrationConfig) HasCredentials() bool {
	return c.APIKey != "" && c.APISecret != "" && c.SellerID != ""
}

// IntegrationPatch — частичное обновление конфигурации интеграции.
// Пустые строковые поля не затирают сохраненные значения.
type IntegrationPatch struct {
	Marketplace string `json:"marketplace"`
	APIKey      string `json:"api_key,omitempty"`
	APISecret   string `json:"api_secret,omitempty"`
	SellerID    string `json:"seller_id,omitempty"`
	IsEnabled   *bool  `json:"is_enabled,omitempty"`
}
