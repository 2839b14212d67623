package trendyol

import "github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"

// Статусы заказов Trendyol
const (
	statusCreated    = "Created"
	statusApproved   = "Approved"
	statusPicking    = "Picking"
	statusShipped    = "Shipped"
	statusDelivered  = "Delivered"
	statusCancelled  = "Cancelled"
	statusUnSupplied = "UnSupplied"
)

// toCanonicalStatus отображает статус заказа Trendyol в канонический.
// Неизвестный статус схлопывается в PENDING, а не в ошибку: появление
// нового статуса на стороне маркетплейса не должно ломать синхронизацию.
func toCanonicalStatus(status string) models.OrderStatus {
	switch status {
	case statusCreated:
		return models.OrderStatusPending
	case statusApproved, statusPicking:
		return models.OrderStatusProcessing
	case statusShipped:
		return models.OrderStatusShipping
	case statusDelivered:
		return models.OrderStatusDelivered
	case statusCancelled, statusUnSupplied:
		return models.OrderStatusCancelled
	default:
		return models.OrderStatusPending
	}
}

// fromCanonicalStatus отображает канонический статус заказа в статус Trendyol
func fromCanonicalStatus(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusProcessing:
		return statusApproved
	case models.OrderStatusShipping:
		return statusShipped
	case models.OrderStatusDelivered:
		return statusDelivered
	case models.OrderStatusCancelled:
		return statusCancelled
	default:
		return statusCreated
	}
}

// toProductStatus отображает флаг одобрения продукта в канонический статус
func toProductStatus(approved bool) models.ProductStatus {
	if approved {
		return models.ProductStatusActive
	}
	return models.ProductStatusPending
}
