package hepsiburada

import "github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"

// Статусы заказов Hepsiburada
const (
	statusOpen       = "Open"
	statusPackaged   = "Packaged"
	statusInTransit  = "InTransit"
	statusDelivered  = "Delivered"
	statusCancelled  = "CancelledByMerchant"
	statusUndelivery = "UnDelivered"
)

// toCanonicalStatus отображает статус заказа Hepsiburada в канонический.
// Неизвестный статус схлопывается в PENDING.
func toCanonicalStatus(status string) models.OrderStatus {
	switch status {
	case statusOpen:
		return models.OrderStatusPending
	case statusPackaged:
		return models.OrderStatusProcessing
	case statusInTransit, statusUndelivery:
		return models.OrderStatusShipping
	case statusDelivered:
		return models.OrderStatusDelivered
	case statusCancelled:
		return models.OrderStatusCancelled
	default:
		return models.OrderStatusPending
	}
}

// fromCanonicalStatus отображает канонический статус заказа в статус Hepsiburada
func fromCanonicalStatus(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusProcessing:
		return statusPackaged
	case models.OrderStatusShipping:
		return statusInTransit
	case models.OrderStatusDelivered:
		return statusDelivered
	case models.OrderStatusCancelled:
		return statusCancelled
	default:
		return statusOpen
	}
}

// toProductStatus отображает признак продаваемости позиции в канонический статус
func toProductStatus(salable bool) models.ProductStatus {
	if salable {
		return models.ProductStatusActive
	}
	return models.ProductStatusPending
}
