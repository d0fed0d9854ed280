package models

import (
	"time"

	"github.com/google/uuid"
)

// SettlementStatus represents the payment state of a weekly settlement
type SettlementStatus string

const (
	SettlementStatusPending SettlementStatus = "pending"
	SettlementStatusPaid    SettlementStatus = "paid"
)

// Settlement is a weekly roll-up of a provider's delivered orders.
// All amounts are computed by the database when the settlement is generated;
// this side only reads and displays them.
type Settlement struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	ProviderID       uuid.UUID        `json:"provider_id" db:"provider_id"`
	PeriodStart      time.Time        `json:"period_start" db:"period_start"`
	PeriodEnd        time.Time        `json:"period_end" db:"period_end"`
	OrderCount       int              `json:"order_count" db:"order_count"`
	GrossAmount      float64          `json:"gross_amount" db:"gross_amount"`
	CommissionAmount float64          `json:"commission_amount" db:"commission_amount"`
	NetAmount        float64          `json:"net_amount" db:"net_amount"`
	Status           SettlementStatus `json:"status" db:"status"`
	GeneratedAt      time.Time        `json:"generated_at" db:"generated_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// PayoutStatus represents the state of a settlement payout
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
)

// Payout records a transfer of a settlement's net amount to the provider
type Payout struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	SettlementID uuid.UUID    `json:"settlement_id" db:"settlement_id"`
	ProviderID   uuid.UUID    `json:"provider_id" db:"provider_id"`
	Amount       float64      `json:"amount" db:"amount"`
	Method       string       `json:"method" db:"method"` // "bank_transfer" or "cash"
	Reference    *string      `json:"reference,omitempty" db:"reference"`
	Status       PayoutStatus `json:"status" db:"status"`
	FailureNote  *string      `json:"failure_note,omitempty" db:"failure_note"`
	PaidAt       *time.Time   `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// CommissionSummary is the per-provider commission view shown on dashboards.
// EffectiveRate is zero while the provider's grace period is still running.
type CommissionSummary struct {
	ProviderID      uuid.UUID  `json:"provider_id"`
	CommissionRate  float64    `json:"commission_rate"`
	EffectiveRate   float64    `json:"effective_rate"`
	InGracePeriod   bool       `json:"in_grace_period"`
	GracePeriodEnds *time.Time `json:"grace_period_ends,omitempty"`
	PeriodGross     float64    `json:"period_gross"`
	PeriodCommission float64   `json:"period_commission"`
}

// PayoutCreateRequest records a completed or pending payout against a settlement
type PayoutCreateRequest struct {
	SettlementID uuid.UUID `json:"settlement_id" binding:"required"`
	Method       string    `json:"method" binding:"required,oneof=bank_transfer cash"`
	Reference    *string   `json:"reference,omitempty"`
}
