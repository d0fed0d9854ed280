package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// IsClosed reports whether the order is out of the fulfillment pipeline and
// no longer counts as in flight. A delivered order is closed but can still
// move to refunded through an admin refund.
func (s OrderStatus) IsClosed() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// PaymentMethod represents how the customer pays for an order
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order represents a customer order in the system.
// The *_at columns are stamped once, when the matching status is first reached.
type Order struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	CustomerID         uuid.UUID     `json:"customer_id" db:"customer_id"`
	ProviderID         uuid.UUID     `json:"provider_id" db:"provider_id"`
	Status             OrderStatus   `json:"status" db:"status"`
	Subtotal           float64       `json:"subtotal" db:"subtotal"`
	DeliveryFee        float64       `json:"delivery_fee" db:"delivery_fee"`
	Discount           float64       `json:"discount" db:"discount"`
	Total              float64       `json:"total" db:"total"`
	PlatformCommission float64       `json:"platform_commission" db:"platform_commission"`
	PaymentMethod      PaymentMethod `json:"payment_method" db:"payment_method"`
	PaymentStatus      PaymentStatus `json:"payment_status" db:"payment_status"`
	DeliveryAddress    string        `json:"delivery_address" db:"delivery_address"`
	Notes              *string       `json:"notes,omitempty" db:"notes"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty" db:"confirmed_at"`
	PreparingAt        *time.Time    `json:"preparing_at,omitempty" db:"preparing_at"`
	ReadyAt            *time.Time    `json:"ready_at,omitempty" db:"ready_at"`
	DeliveringAt       *time.Time    `json:"delivering_at,omitempty" db:"delivering_at"`
	DeliveredAt        *time.Time    `json:"delivered_at,omitempty" db:"delivered_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	RefundedAt         *time.Time    `json:"refunded_at,omitempty" db:"refunded_at"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// OrderItem represents a single line item of an order
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	NameAr    string    `json:"name_ar" db:"name_ar"`
	NameEn    string    `json:"name_en" db:"name_en"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Subtotal  float64   `json:"subtotal" db:"subtotal"`
}

// OrderCreateRequest represents a request to place an order
type OrderCreateRequest struct {
	ProviderID      uuid.UUID                `json:"provider_id" binding:"required"`
	Items           []OrderItemCreateRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   PaymentMethod            `json:"payment_method" binding:"required,oneof=cash card wallet"`
	DeliveryAddress string                   `json:"delivery_address" binding:"required"`
	Notes           *string                  `json:"notes,omitempty"`
}

// OrderItemCreateRequest represents one requested line item
type OrderItemCreateRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// OrderStatusUpdateRequest represents a request to move an order along its lifecycle
type OrderStatusUpdateRequest struct {
	Status             OrderStatus `json:"status" binding:"required,oneof=confirmed preparing ready delivering delivered cancelled refunded"`
	CancellationReason *string     `json:"cancellation_reason,omitempty"`
}

// OrderDetail is the joined read model used by detail views
type OrderDetail struct {
	Order
	CustomerName   string      `json:"customer_name" db:"customer_name"`
	ProviderNameAr string      `json:"provider_name_ar" db:"provider_name_ar"`
	ProviderNameEn string      `json:"provider_name_en" db:"provider_name_en"`
	Items          []OrderItem `json:"items,omitempty" db:"-"`
}
