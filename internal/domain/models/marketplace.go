package models

import "strings"

// Marketplace — закрытое перечисление поддерживаемых маркетплейсов
type Marketplace string

const (
	MarketplaceTrendyol    Marketplace = "TRENDYOL"
	MarketplaceHepsiburada Marketplace = "HEPSIBURADA"
	MarketplaceAmazon      Marketplace = "AMAZON"
	MarketplaceEtsy        Marketplace = "ETSY"
	MarketplaceAliexpress  Marketplace = "ALIEXPRESS"

	// MarketplaceFake помечает записи тестового модуля. Не входит в закрытое
	// перечисление интеграций (Valid возвращает false): сохранить такую
	// интеграцию через API нельзя, а записи тестового модуля не затирают
	// блок состояния реальных интеграций.
	MarketplaceFake Marketplace = "FAKE"
)

// AllMarketplaces возвращает все поддерживаемые маркетплейсы в стабильном порядке
func AllMarketplaces() []Marketplace {
	return []Marketplace{
		MarketplaceTrendyol,
		MarketplaceHepsiburada,
		MarketplaceAmazon,
		MarketplaceEtsy,
		MarketplaceAliexpress,
	}
}

// Valid проверяет, что значение входит в перечисление
func (m Marketplace) Valid() bool {
	switch m {
	case MarketplaceTrendyol, MarketplaceHepsiburada, MarketplaceAmazon,
		MarketplaceEtsy, MarketplaceAliexpress:
		return true
	}
	return false
}

// String возвращает строковое представление маркетплейса
func (m Marketplace) String() string {
	return string(m)
}

// ParseMarketplace разбирает имя маркетплейса без учета регистра.
// Возвращает false, если имя не входит в перечисление.
func ParseMarketplace(name string) (Marketplace, bool) {
	m := Marketplace(strings.ToUpper(strings.TrimSpace(name)))
	return m, m.Valid()
}

// SyncStatus — статус последней синхронизации интеграции
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "IDLE"
	SyncStatusPending SyncStatus = "PENDING"
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusFailed  SyncStatus = "FAILED"
)

// OrderStatus — каноническое перечисление статусов заказа платформы
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipping   OrderStatus = "SHIPPING"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ProductStatus — канонический статус видимости продукта
type ProductStatus string

const (
	ProductStatusActive  ProductStatus = "ACTIVE"
	ProductStatusPending ProductStatus = "PENDING"
)
