package orders

import "github.com/sofraeats/marketplace/pkg/models"

// transitions is the validated order lifecycle. The repository stays
// permissive; legality is enforced here, above the data layer.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {
		models.OrderStatusConfirmed,
		models.OrderStatusCancelled,
	},
	models.OrderStatusConfirmed: {
		models.OrderStatusPreparing,
		models.OrderStatusCancelled,
	},
	models.OrderStatusPreparing: {
		models.OrderStatusReady,
		models.OrderStatusCancelled,
	},
	models.OrderStatusReady: {
		models.OrderStatusDelivering,
	},
	models.OrderStatusDelivering: {
		models.OrderStatusDelivered,
	},
	models.OrderStatusDelivered: {
		models.OrderStatusRefunded,
	},
	// cancelled and refunded are terminal
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal next steps from a status. Callers use it for
// error messages and for the merchant dashboard action buttons.
func NextStatuses(from models.OrderStatus) []models.OrderStatus {
	next := transitions[from]
	out := make([]models.OrderStatus, len(next))
	copy(out, next)
	return out
}
