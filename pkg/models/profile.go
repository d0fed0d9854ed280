package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfileRole represents a profile's role on the platform
type ProfileRole string

const (
	RoleCustomer ProfileRole = "customer"
	RoleProvider ProfileRole = "provider"
	RoleAdmin    ProfileRole = "admin"
)

// Profile represents a platform account, bound 1:1 to an external auth identity.
// The aggregate counters are mutated incrementally, never recomputed here.
type Profile struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	AuthID             uuid.UUID   `json:"auth_id" db:"auth_id"`
	FullName           string      `json:"full_name" db:"full_name"`
	Phone              *string     `json:"phone,omitempty" db:"phone"`
	Role               ProfileRole `json:"role" db:"role"`
	IsActive           bool        `json:"is_active" db:"is_active"`
	GovernorateID      *uuid.UUID  `json:"governorate_id,omitempty" db:"governorate_id"`
	CityID             *uuid.UUID  `json:"city_id,omitempty" db:"city_id"`
	DistrictID         *uuid.UUID  `json:"district_id,omitempty" db:"district_id"`
	NotifyOrderUpdates bool        `json:"notify_order_updates" db:"notify_order_updates"`
	NotifyPromotions   bool        `json:"notify_promotions" db:"notify_promotions"`
	TotalOrders        int         `json:"total_orders" db:"total_orders"`
	TotalSpent         float64     `json:"total_spent" db:"total_spent"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// ProfileUpdateRequest represents user-editable profile fields
type ProfileUpdateRequest struct {
	FullName           *string    `json:"full_name,omitempty"`
	Phone              *string    `json:"phone,omitempty"`
	GovernorateID      *uuid.UUID `json:"governorate_id,omitempty"`
	CityID             *uuid.UUID `json:"city_id,omitempty"`
	DistrictID         *uuid.UUID `json:"district_id,omitempty"`
	NotifyOrderUpdates *bool      `json:"notify_order_updates,omitempty"`
	NotifyPromotions   *bool      `json:"notify_promotions,omitempty"`
}

// RoleUpdateRequest represents an admin request to change a profile's role
type RoleUpdateRequest struct {
	Role ProfileRole `json:"role" binding:"required,oneof=customer provider admin"`
}
