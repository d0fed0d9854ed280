package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

const (
	categoriesTable = "categories"
	productsTable   = "products"
)

var categoryCols = []string{
	"id", "provider_id", "name_ar", "name_en", "sort_order", "is_active",
	"created_at", "updated_at",
}

var productCols = []string{
	"id", "provider_id", "category_id", "name_ar", "name_en",
	"description_ar", "description_en", "price", "is_available", "sort_order",
	"created_at", "updated_at",
}

// menuOrder sorts menu sections and items the way the merchant arranged them.
var menuOrder = repository.Asc("sort_order")

// ProductFilters are the supported product listing predicates, compiled in a
// fixed order.
type ProductFilters struct {
	CategoryID *uuid.UUID
	Available  *bool
}

func (f ProductFilters) compile() []repository.Filter {
	var filters []repository.Filter
	if f.CategoryID != nil {
		filters = append(filters, repository.Eq("category_id", *f.CategoryID))
	}
	if f.Available != nil {
		filters = append(filters, repository.Eq("is_available", *f.Available))
	}
	return filters
}

// Repository handles database access for menu categories and products.
type Repository struct {
	categories *repository.Base[models.Category]
	products   *repository.Base[models.Product]
}

// NewRepository creates a new catalog repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		categories: repository.New[models.Category](pool, categoriesTable, categoryCols...),
		products:   repository.New[models.Product](pool, productsTable, productCols...),
	}
}

// GetCategory fetches one category.
func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (models.Category, error) {
	return r.categories.FindByID(ctx, id)
}

// ListCategories returns a provider's categories in menu order.
func (r *Repository) ListCategories(ctx context.Context, providerID uuid.UUID, activeOnly bool) ([]models.Category, error) {
	filters := []repository.Filter{repository.Eq("provider_id", providerID)}
	if activeOnly {
		filters = append(filters, repository.Eq("is_active", true))
	}
	items, _, err := r.categories.FindAll(ctx, repository.Options{
		Filters: filters,
		Sort:    menuOrder,
	})
	return items, err
}

// CreateCategory inserts a new menu section.
func (r *Repository) CreateCategory(ctx context.Context, providerID uuid.UUID, req *models.CategoryCreateRequest) (models.Category, error) {
	return r.categories.Create(ctx, repository.Values{
		"id":          uuid.New(),
		"provider_id": providerID,
		"name_ar":     req.NameAr,
		"name_en":     req.NameEn,
		"sort_order":  req.SortOrder,
		"is_active":   true,
	})
}

// UpdateCategory applies the non-nil fields of req.
func (r *Repository) UpdateCategory(ctx context.Context, id uuid.UUID, req *models.CategoryUpdateRequest) (models.Category, error) {
	values := repository.Values{}
	if req.NameAr != nil {
		values["name_ar"] = *req.NameAr
	}
	if req.NameEn != nil {
		values["name_en"] = *req.NameEn
	}
	if req.SortOrder != nil {
		values["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		values["is_active"] = *req.IsActive
	}
	return r.categories.Update(ctx, id, values)
}

// DeleteCategory removes a category. Products keep their rows; the category
// reference is detached first so the menu never dangles.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := r.products.UpdateWhere(ctx, "category_id", id, repository.Values{
		"category_id": nil,
	}); err != nil {
		return false, err
	}
	return r.categories.Delete(ctx, id)
}

// GetProduct fetches one product.
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	return r.products.FindByID(ctx, id)
}

// ListProducts pages through a provider's products matching the filters.
func (r *Repository) ListProducts(ctx context.Context, providerID uuid.UUID, page, pageSize int, filters ProductFilters) (repository.Page[models.Product], error) {
	compiled := append([]repository.Filter{
		repository.Eq("provider_id", providerID),
	}, filters.compile()...)
	return r.products.FindPaginated(ctx, page, pageSize, repository.Options{
		Filters: compiled,
		Sort:    menuOrder,
	})
}

// CreateProduct inserts a new product.
func (r *Repository) CreateProduct(ctx context.Context, providerID uuid.UUID, req *models.ProductCreateRequest) (models.Product, error) {
	return r.products.Create(ctx, repository.Values{
		"id":             uuid.New(),
		"provider_id":    providerID,
		"category_id":    req.CategoryID,
		"name_ar":        req.NameAr,
		"name_en":        req.NameEn,
		"description_ar": req.DescriptionAr,
		"description_en": req.DescriptionEn,
		"price":          req.Price,
		"is_available":   true,
		"sort_order":     req.SortOrder,
	})
}

// UpdateProduct applies the non-nil fields of req.
func (r *Repository) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.ProductUpdateRequest) (models.Product, error) {
	values := repository.Values{}
	if req.CategoryID != nil {
		values["category_id"] = *req.CategoryID
	}
	if req.NameAr != nil {
		values["name_ar"] = *req.NameAr
	}
	if req.NameEn != nil {
		values["name_en"] = *req.NameEn
	}
	if req.DescriptionAr != nil {
		values["description_ar"] = *req.DescriptionAr
	}
	if req.DescriptionEn != nil {
		values["description_en"] = *req.DescriptionEn
	}
	if req.Price != nil {
		values["price"] = *req.Price
	}
	if req.IsAvailable != nil {
		values["is_available"] = *req.IsAvailable
	}
	if req.SortOrder != nil {
		values["sort_order"] = *req.SortOrder
	}
	return r.products.Update(ctx, id, values)
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.products.Delete(ctx, id)
}

// AvailableProducts is a preset: the storefront view of a provider's sellable
// items.
func (r *Repository) AvailableProducts(ctx context.Context, providerID uuid.UUID) ([]models.Product, error) {
	items, _, err := r.products.FindAll(ctx, repository.Options{
		Filters: []repository.Filter{
			repository.Eq("provider_id", providerID),
			repository.Eq("is_available", true),
		},
		Sort: menuOrder,
	})
	return items, err
}
