package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the back-office.
const (
	AuditActionProviderApproved   = "provider.approved"
	AuditActionProviderRejected   = "provider.rejected"
	AuditActionProviderSuspended  = "provider.suspended"
	AuditActionRoleChanged        = "profile.role_changed"
	AuditActionProfileDeactivated = "profile.deactivated"
	AuditActionOrderRefunded      = "order.refunded"
	AuditActionPayoutRecorded     = "payout.recorded"
	AuditActionPayoutCompleted    = "payout.completed"
	AuditActionPayoutFailed       = "payout.failed"
)

// AuditLog records one admin mutation for accountability
type AuditLog struct {
	ID         uuid.UUID              `json:"id" db:"id"`
	ActorID    uuid.UUID              `json:"actor_id" db:"actor_id"`
	Action     string                 `json:"action" db:"action"`
	TargetType string                 `json:"target_type" db:"target_type"`
	TargetID   uuid.UUID              `json:"target_id" db:"target_id"`
	Details    map[string]interface{} `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

// DashboardStats is the platform-wide snapshot shown on the admin home screen
type DashboardStats struct {
	TotalOrders      int64   `json:"total_orders"`
	OrdersToday      int64   `json:"orders_today"`
	ActiveOrders     int64   `json:"active_orders"`
	TotalProviders   int64   `json:"total_providers"`
	PendingProviders int64   `json:"pending_providers"`
	TotalProfiles    int64   `json:"total_profiles"`
	RevenueToday     float64 `json:"revenue_today"`
	CommissionToday  float64 `json:"commission_today"`
}
