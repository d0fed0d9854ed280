package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderStatus represents the lifecycle status of a provider
type ProviderStatus string

const (
	ProviderStatusPendingApproval   ProviderStatus = "pending_approval"
	ProviderStatusApproved          ProviderStatus = "approved"
	ProviderStatusOpen              ProviderStatus = "open"
	ProviderStatusClosed            ProviderStatus = "closed"
	ProviderStatusTemporarilyPaused ProviderStatus = "temporarily_paused"
	ProviderStatusOnVacation        ProviderStatus = "on_vacation"
	ProviderStatusRejected          ProviderStatus = "rejected"
	ProviderStatusSuspended         ProviderStatus = "suspended"
)

// IsOperational reports whether the provider passed approval and may trade.
func (s ProviderStatus) IsOperational() bool {
	switch s {
	case ProviderStatusApproved, ProviderStatusOpen, ProviderStatusClosed,
		ProviderStatusTemporarilyPaused, ProviderStatusOnVacation:
		return true
	}
	return false
}

// ProviderCategory represents the cuisine / merchant category
type ProviderCategory string

const (
	CategoryRestaurant ProviderCategory = "restaurant"
	CategoryBakery     ProviderCategory = "bakery"
	CategoryGrocery    ProviderCategory = "grocery"
	CategorySweets     ProviderCategory = "sweets"
	CategoryCafe       ProviderCategory = "cafe"
)

// DayHours represents opening hours for one weekday
type DayHours struct {
	Open   string `json:"open"`   // "09:00"
	Close  string `json:"close"`  // "23:30"
	Closed bool   `json:"closed"` // whole day off
}

// BusinessHours maps weekday name (lowercase English) to opening hours
type BusinessHours map[string]DayHours

// Provider represents a merchant on the marketplace
type Provider struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	OwnerProfileID   uuid.UUID        `json:"owner_profile_id" db:"owner_profile_id"`
	NameAr           string           `json:"name_ar" db:"name_ar"`
	NameEn           string           `json:"name_en" db:"name_en"`
	DescriptionAr    *string          `json:"description_ar,omitempty" db:"description_ar"`
	DescriptionEn    *string          `json:"description_en,omitempty" db:"description_en"`
	Category         ProviderCategory `json:"category" db:"category"`
	Status           ProviderStatus   `json:"status" db:"status"`
	RejectionReason  *string          `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CommissionRate   float64          `json:"commission_rate" db:"commission_rate"` // 0.15 == 15%
	GracePeriodUntil *time.Time       `json:"grace_period_until,omitempty" db:"grace_period_until"`
	Rating           float64          `json:"rating" db:"rating"`
	ReviewCount      int              `json:"review_count" db:"review_count"`
	OrderCount       int              `json:"order_count" db:"order_count"`
	IsFeatured       bool             `json:"is_featured" db:"is_featured"`
	DeliveryFee      float64          `json:"delivery_fee" db:"delivery_fee"`
	MinOrderAmount   float64          `json:"min_order_amount" db:"min_order_amount"`
	DeliveryRadiusKm float64          `json:"delivery_radius_km" db:"delivery_radius_km"`
	EstimatedMinutes int              `json:"estimated_minutes" db:"estimated_minutes"`
	GovernorateID    *uuid.UUID       `json:"governorate_id,omitempty" db:"governorate_id"`
	CityID           *uuid.UUID       `json:"city_id,omitempty" db:"city_id"`
	DistrictID       *uuid.UUID       `json:"district_id,omitempty" db:"district_id"`
	BusinessHours    BusinessHours    `json:"business_hours" db:"business_hours"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty" db:"approved_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// ProviderSettingsUpdateRequest represents merchant-editable settings
type ProviderSettingsUpdateRequest struct {
	NameAr           *string        `json:"name_ar,omitempty"`
	NameEn           *string        `json:"name_en,omitempty"`
	DescriptionAr    *string        `json:"description_ar,omitempty"`
	DescriptionEn    *string        `json:"description_en,omitempty"`
	DeliveryFee      *float64       `json:"delivery_fee,omitempty" binding:"omitempty,gte=0"`
	MinOrderAmount   *float64       `json:"min_order_amount,omitempty" binding:"omitempty,gte=0"`
	DeliveryRadiusKm *float64       `json:"delivery_radius_km,omitempty" binding:"omitempty,gt=0"`
	EstimatedMinutes *int           `json:"estimated_minutes,omitempty" binding:"omitempty,gt=0"`
	BusinessHours    *BusinessHours `json:"business_hours,omitempty"`
}

// ProviderApplyRequest represents a merchant's application to join
type ProviderApplyRequest struct {
	NameAr           string           `json:"name_ar" binding:"required"`
	NameEn           string           `json:"name_en" binding:"required"`
	DescriptionAr    *string          `json:"description_ar,omitempty"`
	DescriptionEn    *string          `json:"description_en,omitempty"`
	Category         ProviderCategory `json:"category" binding:"required,oneof=restaurant bakery grocery sweets cafe"`
	DeliveryFee      float64          `json:"delivery_fee" binding:"gte=0"`
	MinOrderAmount   float64          `json:"min_order_amount" binding:"gte=0"`
	DeliveryRadiusKm float64          `json:"delivery_radius_km" binding:"required,gt=0"`
	EstimatedMinutes int              `json:"estimated_minutes" binding:"required,gt=0"`
	GovernorateID    *uuid.UUID       `json:"governorate_id,omitempty"`
	CityID           *uuid.UUID       `json:"city_id,omitempty"`
	DistrictID       *uuid.UUID       `json:"district_id,omitempty"`
	BusinessHours    BusinessHours    `json:"business_hours,omitempty"`
}

// ProviderApproveRequest carries the admin's approval terms
type ProviderApproveRequest struct {
	CommissionRate float64 `json:"commission_rate" binding:"required,gt=0,lte=0.5"`
	GraceDays      int     `json:"grace_days" binding:"omitempty,gte=0,lte=90"`
}

// ProviderRejectRequest carries the admin's reason for rejecting an application
type ProviderRejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ProviderStatusChangeRequest represents the owner toggling trading status
type ProviderStatusChangeRequest struct {
	Status ProviderStatus `json:"status" binding:"required,oneof=open closed temporarily_paused on_vacation"`
}
