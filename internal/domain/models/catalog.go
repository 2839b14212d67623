package models

import "time"

// Product — каноническая сущность продукта платформы.
// Продукт, синхронизированный с маркетплейса, несет пару
// (ExternalID, Marketplace); инвариант: пара уникальна, что делает
// повторную синхронизацию идемпотентной.
type Product struct {
	ID           string        `json:"id"`
	VendorID     string        `json:"vendor_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Price        float64       `json:"price"`
	ComparePrice float64       `json:"compare_price,omitempty"`
	Stock        int           `json:"stock"`
	Status       ProductStatus `json:"status"`

	// Привязка к внешней системе. Пустой ExternalID означает, что продукт
	// не синхронизирован ни с одним маркетплейсом.
	ExternalID  string      `json:"external_id,omitempty"`
	Marketplace Marketplace `json:"marketplace,omitempty"`

	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Order — каноническая сущность заказа платформы
type Order struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"order_number"`
	VendorID    string      `json:"vendor_id"`
	Total       float64     `json:"total"`
	Status      OrderStatus `json:"status"`

	ExternalID  string      `json:"external_id,omitempty"`
	Marketplace Marketplace `json:"marketplace,omitempty"`

	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ProductPatch — частичное обновление продукта на маркетплейсе
type ProductPatch struct {
	Name  string   `json:"name,omitempty"`
	Price *float64 `json:"price,omitempty"`
	Stock *int     `json:"stock,omitempty"`
}
