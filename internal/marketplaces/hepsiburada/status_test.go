package hepsiburada

import (
	"testing"

	"github.com/qolanka/marketplace-platform/sync-service/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestToCanonicalStatus(t *testing.T) {
	cases := map[string]models.OrderStatus{
		statusOpen:       models.OrderStatusPending,
		statusPackaged:   models.OrderStatusProcessing,
		statusInTransit:  models.OrderStatusShipping,
		statusDelivered:  models.OrderStatusDelivered,
		statusCancelled:  models.OrderStatusCancelled,
		"BrandNewStatus": models.OrderStatusPending,
	}

	for raw, want := range cases {
		assert.Equal(t, want, toCanonicalStatus(raw), "статус %s", raw)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, canonical := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipping,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		assert.Equal(t, canonical, toCanonicalStatus(fromCanonicalStatus(canonical)))
	}
}
