package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// RepositoryInterface defines catalog data access
type RepositoryInterface interface {
	GetCategory(ctx context.Context, id uuid.UUID) (models.Category, error)
	ListCategories(ctx context.Context, providerID uuid.UUID, activeOnly bool) ([]models.Category, error)
	CreateCategory(ctx context.Context, providerID uuid.UUID, req *models.CategoryCreateRequest) (models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *models.CategoryUpdateRequest) (models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error)
	GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error)
	ListProducts(ctx context.Context, providerID uuid.UUID, page, pageSize int, filters ProductFilters) (repository.Page[models.Product], error)
	CreateProduct(ctx context.Context, providerID uuid.UUID, req *models.ProductCreateRequest) (models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.ProductUpdateRequest) (models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error)
	AvailableProducts(ctx context.Context, providerID uuid.UUID) ([]models.Product, error)
}

// ProviderReader resolves providers for ownership checks.
type ProviderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Provider, error)
}

// MenuCache caches assembled menus. *cache.Manager satisfies it.
type MenuCache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error
	Delete(ctx context.Context, keys ...string) error
}
