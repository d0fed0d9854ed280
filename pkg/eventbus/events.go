package eventbus

import (
	"time"

	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/models"
)

// OrderPlacedData is emitted when a customer places an order.
// This carries everything the merchant side needs to show the incoming order.
type OrderPlacedData struct {
	OrderID         uuid.UUID `json:"order_id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	Total           float64   `json:"total"`
	DeliveryFee     float64   `json:"delivery_fee"`
	PaymentMethod   string    `json:"payment_method"`
	DeliveryAddress string    `json:"delivery_address"`
	ItemCount       int       `json:"item_count"`
	PlacedAt        time.Time `json:"placed_at"`
}

// OrderStatusChangedData is emitted on every order status transition.
type OrderStatusChangedData struct {
	OrderID    uuid.UUID          `json:"order_id"`
	CustomerID uuid.UUID          `json:"customer_id"`
	ProviderID uuid.UUID          `json:"provider_id"`
	FromStatus models.OrderStatus `json:"from_status"`
	ToStatus   models.OrderStatus `json:"to_status"`
	ChangedAt  time.Time          `json:"changed_at"`
}

// OrderCancelledData is emitted when an order is cancelled.
type OrderCancelledData struct {
	OrderID     uuid.UUID `json:"order_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	CancelledBy string    `json:"cancelled_by"` // "customer", "provider" or "admin"
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// ProviderApprovedData is emitted when an admin approves a provider application.
type ProviderApprovedData struct {
	ProviderID     uuid.UUID `json:"provider_id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	CommissionRate float64   `json:"commission_rate"`
	GracePeriodEnd time.Time `json:"grace_period_end"`
	ApprovedAt     time.Time `json:"approved_at"`
}

// ProviderRejectedData is emitted when an admin rejects a provider application.
type ProviderRejectedData struct {
	ProviderID uuid.UUID `json:"provider_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejected_at"`
}

// ProviderSuspendedData is emitted when a provider is suspended.
type ProviderSuspendedData struct {
	ProviderID  uuid.UUID `json:"provider_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Reason      string    `json:"reason"`
	SuspendedAt time.Time `json:"suspended_at"`
}

// SettlementGeneratedData is emitted when a weekly settlement is generated.
type SettlementGeneratedData struct {
	SettlementID uuid.UUID `json:"settlement_id"`
	ProviderID   uuid.UUID `json:"provider_id"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	GrossAmount  float64   `json:"gross_amount"`
	Commission   float64   `json:"commission"`
	NetAmount    float64   `json:"net_amount"`
	OrderCount   int       `json:"order_count"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// PayoutCompletedData is emitted when a settlement payout is recorded.
type PayoutCompletedData struct {
	PayoutID     uuid.UUID `json:"payout_id"`
	SettlementID uuid.UUID `json:"settlement_id"`
	ProviderID   uuid.UUID `json:"provider_id"`
	Amount       float64   `json:"amount"`
	Reference    string    `json:"reference"`
	CompletedAt  time.Time `json:"completed_at"`
}

// ProfileRoleChangedData is emitted when an admin changes a profile role.
type ProfileRoleChangedData struct {
	ProfileID uuid.UUID          `json:"profile_id"`
	FromRole  models.ProfileRole `json:"from_role"`
	ToRole    models.ProfileRole `json:"to_role"`
	ChangedBy uuid.UUID          `json:"changed_by"`
	ChangedAt time.Time          `json:"changed_at"`
}

// SubjectForStatus maps an order status to its lifecycle subject.
func SubjectForStatus(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusPending:
		return SubjectOrderPlaced
	case models.OrderStatusConfirmed:
		return SubjectOrderConfirmed
	case models.OrderStatusPreparing:
		return SubjectOrderPreparing
	case models.OrderStatusReady:
		return SubjectOrderReady
	case models.OrderStatusDelivering:
		return SubjectOrderDelivering
	case models.OrderStatusDelivered:
		return SubjectOrderDelivered
	case models.OrderStatusCancelled:
		return SubjectOrderCancelled
	case models.OrderStatusRefunded:
		return SubjectOrderRefunded
	default:
		return ""
	}
}
