package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents one section of a provider's menu
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProviderID uuid.UUID `json:"provider_id" db:"provider_id"`
	NameAr    string    `json:"name_ar" db:"name_ar"`
	NameEn    string    `json:"name_en" db:"name_en"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product represents a sellable item on a provider's menu
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ProviderID    uuid.UUID  `json:"provider_id" db:"provider_id"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	NameAr        string     `json:"name_ar" db:"name_ar"`
	NameEn        string     `json:"name_en" db:"name_en"`
	DescriptionAr *string    `json:"description_ar,omitempty" db:"description_ar"`
	DescriptionEn *string    `json:"description_en,omitempty" db:"description_en"`
	Price         float64    `json:"price" db:"price"`
	IsAvailable   bool       `json:"is_available" db:"is_available"`
	SortOrder     int        `json:"sort_order" db:"sort_order"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// CategoryCreateRequest represents a request to add a menu section
type CategoryCreateRequest struct {
	NameAr    string `json:"name_ar" binding:"required"`
	NameEn    string `json:"name_en" binding:"required"`
	SortOrder int    `json:"sort_order" binding:"omitempty,gte=0"`
}

// CategoryUpdateRequest represents editable category fields
type CategoryUpdateRequest struct {
	NameAr    *string `json:"name_ar,omitempty"`
	NameEn    *string `json:"name_en,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty" binding:"omitempty,gte=0"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// ProductCreateRequest represents a request to add a product
type ProductCreateRequest struct {
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	NameAr        string     `json:"name_ar" binding:"required"`
	NameEn        string     `json:"name_en" binding:"required"`
	DescriptionAr *string    `json:"description_ar,omitempty"`
	DescriptionEn *string    `json:"description_en,omitempty"`
	Price         float64    `json:"price" binding:"required,gt=0"`
	SortOrder     int        `json:"sort_order" binding:"omitempty,gte=0"`
}

// ProductUpdateRequest represents editable product fields
type ProductUpdateRequest struct {
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	NameAr        *string    `json:"name_ar,omitempty"`
	NameEn        *string    `json:"name_en,omitempty"`
	DescriptionAr *string    `json:"description_ar,omitempty"`
	DescriptionEn *string    `json:"description_en,omitempty"`
	Price         *float64   `json:"price,omitempty" binding:"omitempty,gt=0"`
	IsAvailable   *bool      `json:"is_available,omitempty"`
	SortOrder     *int       `json:"sort_order,omitempty" binding:"omitempty,gte=0"`
}
