package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/cache"
	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

const menuCacheTTL = 5 * time.Minute

// MenuSection is one category with its available products.
type MenuSection struct {
	Category models.Category  `json:"category"`
	Products []models.Product `json:"products"`
}

// Menu is the storefront read model of a provider's catalog.
type Menu struct {
	ProviderID uuid.UUID     `json:"provider_id"`
	Sections   []MenuSection `json:"sections"`
	// Uncategorized holds available products whose category was removed.
	Uncategorized []models.Product `json:"uncategorized,omitempty"`
}

// Service handles catalog business logic
type Service struct {
	repo      RepositoryInterface
	providers ProviderReader
	cache     MenuCache
}

// NewService creates a new catalog service
func NewService(repo RepositoryInterface, providers ProviderReader) *Service {
	return &Service{repo: repo, providers: providers}
}

// SetCache wires menu caching. Nil disables it.
func (s *Service) SetCache(c MenuCache) {
	s.cache = c
}

// ownedProvider loads the provider and checks the caller owns it.
func (s *Service) ownedProvider(ctx context.Context, providerID, callerID uuid.UUID) (models.Provider, error) {
	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return models.Provider{}, err
	}
	if provider.OwnerProfileID != callerID {
		return models.Provider{}, common.NewForbiddenError("not your catalog")
	}
	return provider, nil
}

// CreateCategory adds a menu section for the caller's provider.
func (s *Service) CreateCategory(ctx context.Context, providerID, callerID uuid.UUID, req *models.CategoryCreateRequest) (models.Category, error) {
	if _, err := s.ownedProvider(ctx, providerID, callerID); err != nil {
		return models.Category{}, err
	}
	category, err := s.repo.CreateCategory(ctx, providerID, req)
	if err != nil {
		return models.Category{}, err
	}
	s.invalidateMenu(ctx, providerID)
	return category, nil
}

// UpdateCategory edits a menu section of the caller's provider.
func (s *Service) UpdateCategory(ctx context.Context, categoryID, callerID uuid.UUID, req *models.CategoryUpdateRequest) (models.Category, error) {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return models.Category{}, err
	}
	if _, err := s.ownedProvider(ctx, category.ProviderID, callerID); err != nil {
		return models.Category{}, err
	}
	updated, err := s.repo.UpdateCategory(ctx, categoryID, req)
	if err != nil {
		return models.Category{}, err
	}
	s.invalidateMenu(ctx, category.ProviderID)
	return updated, nil
}

// DeleteCategory removes a menu section; its products become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, categoryID, callerID uuid.UUID) error {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if _, err := s.ownedProvider(ctx, category.ProviderID, callerID); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if !deleted {
		return repository.ErrNotFound
	}
	s.invalidateMenu(ctx, category.ProviderID)
	return nil
}

// ListCategories returns the caller's menu sections, inactive ones included.
func (s *Service) ListCategories(ctx context.Context, providerID, callerID uuid.UUID) ([]models.Category, error) {
	if _, err := s.ownedProvider(ctx, providerID, callerID); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, providerID, false)
}

// CreateProduct adds a product for the caller's provider. A category, when
// given, must belong to the same provider.
func (s *Service) CreateProduct(ctx context.Context, providerID, callerID uuid.UUID, req *models.ProductCreateRequest) (models.Product, error) {
	if _, err := s.ownedProvider(ctx, providerID, callerID); err != nil {
		return models.Product{}, err
	}
	if req.CategoryID != nil {
		category, err := s.repo.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return models.Product{}, common.NewBadRequestError("unknown category", err)
		}
		if category.ProviderID != providerID {
			return models.Product{}, common.NewBadRequestError("category belongs to another provider", nil)
		}
	}
	product, err := s.repo.CreateProduct(ctx, providerID, req)
	if err != nil {
		return models.Product{}, err
	}
	s.invalidateMenu(ctx, providerID)
	return product, nil
}

// UpdateProduct edits a product of the caller's provider.
func (s *Service) UpdateProduct(ctx context.Context, productID, callerID uuid.UUID, req *models.ProductUpdateRequest) (models.Product, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	if _, err := s.ownedProvider(ctx, product.ProviderID, callerID); err != nil {
		return models.Product{}, err
	}
	if req.CategoryID != nil {
		category, err := s.repo.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return models.Product{}, common.NewBadRequestError("unknown category", err)
		}
		if category.ProviderID != product.ProviderID {
			return models.Product{}, common.NewBadRequestError("category belongs to another provider", nil)
		}
	}
	updated, err := s.repo.UpdateProduct(ctx, productID, req)
	if err != nil {
		return models.Product{}, err
	}
	s.invalidateMenu(ctx, product.ProviderID)
	return updated, nil
}

// DeleteProduct removes a product of the caller's provider.
func (s *Service) DeleteProduct(ctx context.Context, productID, callerID uuid.UUID) error {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if _, err := s.ownedProvider(ctx, product.ProviderID, callerID); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return repository.ErrNotFound
	}
	s.invalidateMenu(ctx, product.ProviderID)
	return nil
}

// ListProducts pages through the caller's products, unavailable ones included.
func (s *Service) ListProducts(ctx context.Context, providerID, callerID uuid.UUID, page, pageSize int, filters ProductFilters) (repository.Page[models.Product], error) {
	if _, err := s.ownedProvider(ctx, providerID, callerID); err != nil {
		return repository.Page[models.Product]{}, err
	}
	return s.repo.ListProducts(ctx, providerID, page, pageSize, filters)
}

// GetProduct fetches one product without ownership checks. Used by the
// storefront and by order pricing.
func (s *Service) GetProduct(ctx context.Context, productID uuid.UUID) (models.Product, error) {
	return s.repo.GetProduct(ctx, productID)
}

// GetMenu assembles the storefront menu: active sections in order, each with
// its available products. Cached briefly; menu edits invalidate.
func (s *Service) GetMenu(ctx context.Context, providerID uuid.UUID) (Menu, error) {
	if s.cache != nil {
		var menu Menu
		err := s.cache.GetOrSet(ctx, cache.Keys.ProviderMenu(providerID.String()), menuCacheTTL, &menu, func() (interface{}, error) {
			return s.buildMenu(ctx, providerID)
		})
		return menu, err
	}
	return s.buildMenu(ctx, providerID)
}

func (s *Service) buildMenu(ctx context.Context, providerID uuid.UUID) (Menu, error) {
	categories, err := s.repo.ListCategories(ctx, providerID, true)
	if err != nil {
		return Menu{}, err
	}
	products, err := s.repo.AvailableProducts(ctx, providerID)
	if err != nil {
		return Menu{}, err
	}

	byCategory := make(map[uuid.UUID][]models.Product)
	var uncategorized []models.Product
	for _, product := range products {
		if product.CategoryID == nil {
			uncategorized = append(uncategorized, product)
			continue
		}
		byCategory[*product.CategoryID] = append(byCategory[*product.CategoryID], product)
	}

	menu := Menu{ProviderID: providerID, Uncategorized: uncategorized}
	seen := make(map[uuid.UUID]bool, len(categories))
	for _, category := range categories {
		menu.Sections = append(menu.Sections, MenuSection{
			Category: category,
			Products: byCategory[category.ID],
		})
		seen[category.ID] = true
	}
	// Products pointing at an inactive section still sell from the tail.
	for _, product := range products {
		if product.CategoryID != nil && !seen[*product.CategoryID] {
			menu.Uncategorized = append(menu.Uncategorized, product)
		}
	}
	return menu, nil
}

func (s *Service) invalidateMenu(ctx context.Context, providerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	// Stale menus expire on their own; eager invalidation is best-effort.
	_ = s.cache.Delete(ctx, cache.Keys.ProviderMenu(providerID.String()))
}
