package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

type mockRepository struct {
	categories map[uuid.UUID]models.Category
	products   map[uuid.UUID]models.Product
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		categories: make(map[uuid.UUID]models.Category),
		products:   make(map[uuid.UUID]models.Product),
	}
}

func (m *mockRepository) GetCategory(ctx context.Context, id uuid.UUID) (models.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return models.Category{}, repository.ErrNotFound
	}
	return category, nil
}

func (m *mockRepository) ListCategories(ctx context.Context, providerID uuid.UUID, activeOnly bool) ([]models.Category, error) {
	var out []models.Category
	for _, category := range m.categories {
		if category.ProviderID != providerID {
			continue
		}
		if activeOnly && !category.IsActive {
			continue
		}
		out = append(out, category)
	}
	return out, nil
}

func (m *mockRepository) CreateCategory(ctx context.Context, providerID uuid.UUID, req *models.CategoryCreateRequest) (models.Category, error) {
	category := models.Category{
		ID:         uuid.New(),
		ProviderID: providerID,
		NameAr:     req.NameAr,
		NameEn:     req.NameEn,
		SortOrder:  req.SortOrder,
		IsActive:   true,
	}
	m.categories[category.ID] = category
	return category, nil
}

func (m *mockRepository) UpdateCategory(ctx context.Context, id uuid.UUID, req *models.CategoryUpdateRequest) (models.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return models.Category{}, repository.ErrNotFound
	}
	if req.NameEn != nil {
		category.NameEn = *req.NameEn
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	m.categories[id] = category
	return category, nil
}

func (m *mockRepository) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.categories[id]; !ok {
		return false, nil
	}
	for pid, product := range m.products {
		if product.CategoryID != nil && *product.CategoryID == id {
			product.CategoryID = nil
			m.products[pid] = product
		}
	}
	delete(m.categories, id)
	return true, nil
}

func (m *mockRepository) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return models.Product{}, repository.ErrNotFound
	}
	return product, nil
}

func (m *mockRepository) ListProducts(ctx context.Context, providerID uuid.UUID, page, pageSize int, filters ProductFilters) (repository.Page[models.Product], error) {
	var out []models.Product
	for _, product := range m.products {
		if product.ProviderID == providerID {
			out = append(out, product)
		}
	}
	return repository.Page[models.Product]{Data: out, Count: int64(len(out)), Page: page, PageSize: pageSize}, nil
}

func (m *mockRepository) CreateProduct(ctx context.Context, providerID uuid.UUID, req *models.ProductCreateRequest) (models.Product, error) {
	product := models.Product{
		ID:          uuid.New(),
		ProviderID:  providerID,
		CategoryID:  req.CategoryID,
		NameAr:      req.NameAr,
		NameEn:      req.NameEn,
		Price:       req.Price,
		IsAvailable: true,
		SortOrder:   req.SortOrder,
	}
	m.products[product.ID] = product
	return product, nil
}

func (m *mockRepository) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.ProductUpdateRequest) (models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return models.Product{}, repository.ErrNotFound
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	m.products[id] = product
	return product, nil
}

func (m *mockRepository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

func (m *mockRepository) AvailableProducts(ctx context.Context, providerID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, product := range m.products {
		if product.ProviderID == providerID && product.IsAvailable {
			out = append(out, product)
		}
	}
	return out, nil
}

type mockProviders struct {
	providers map[uuid.UUID]models.Provider
}

func (m *mockProviders) GetByID(ctx context.Context, id uuid.UUID) (models.Provider, error) {
	provider, ok := m.providers[id]
	if !ok {
		return models.Provider{}, repository.ErrNotFound
	}
	return provider, nil
}

type mockCache struct {
	deleted []string
}

func (m *mockCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error {
	// Always a miss; serve fresh.
	data, err := fn()
	if err != nil {
		return err
	}
	menu, ok := data.(Menu)
	if !ok {
		return errors.New("unexpected cached type")
	}
	*result.(*Menu) = menu
	return nil
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	m.deleted = append(m.deleted, keys...)
	return nil
}

func fixture() (*Service, *mockRepository, uuid.UUID, uuid.UUID) {
	repo := newMockRepository()
	ownerID := uuid.New()
	providerID := uuid.New()
	providers := &mockProviders{providers: map[uuid.UUID]models.Provider{
		providerID: {ID: providerID, OwnerProfileID: ownerID, Status: models.ProviderStatusOpen},
	}}
	return NewService(repo, providers), repo, providerID, ownerID
}

func TestCreateCategory_OwnershipEnforced(t *testing.T) {
	svc, _, providerID, ownerID := fixture()

	_, err := svc.CreateCategory(context.Background(), providerID, ownerID, &models.CategoryCreateRequest{
		NameAr: "مشاوي", NameEn: "Grills",
	})
	assert.NoError(t, err)

	_, err = svc.CreateCategory(context.Background(), providerID, uuid.New(), &models.CategoryCreateRequest{
		NameAr: "مشاوي", NameEn: "Grills",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

func TestCreateProduct_RejectsForeignCategory(t *testing.T) {
	svc, repo, providerID, ownerID := fixture()

	foreign := models.Category{ID: uuid.New(), ProviderID: uuid.New(), IsActive: true}
	repo.categories[foreign.ID] = foreign

	_, err := svc.CreateProduct(context.Background(), providerID, ownerID, &models.ProductCreateRequest{
		CategoryID: &foreign.ID,
		NameAr:     "كبسة", NameEn: "Kabsa", Price: 12,
	})
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Code)
}

func TestDeleteCategory_DetachesProducts(t *testing.T) {
	svc, repo, providerID, ownerID := fixture()

	category, err := svc.CreateCategory(context.Background(), providerID, ownerID, &models.CategoryCreateRequest{
		NameAr: "حلويات", NameEn: "Desserts",
	})
	require.NoError(t, err)

	product, err := svc.CreateProduct(context.Background(), providerID, ownerID, &models.ProductCreateRequest{
		CategoryID: &category.ID,
		NameAr:     "كنافة", NameEn: "Kunafa", Price: 8,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(context.Background(), category.ID, ownerID))
	assert.Nil(t, repo.products[product.ID].CategoryID)
}

func TestUpdateProduct_NotOwner(t *testing.T) {
	svc, repo, providerID, _ := fixture()

	product := models.Product{ID: uuid.New(), ProviderID: providerID, Price: 10, IsAvailable: true}
	repo.products[product.ID] = product

	price := 12.0
	_, err := svc.UpdateProduct(context.Background(), product.ID, uuid.New(), &models.ProductUpdateRequest{Price: &price})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

func TestGetMenu_Assembly(t *testing.T) {
	svc, _, providerID, ownerID := fixture()

	grills, err := svc.CreateCategory(context.Background(), providerID, ownerID, &models.CategoryCreateRequest{
		NameAr: "مشاوي", NameEn: "Grills", SortOrder: 1,
	})
	require.NoError(t, err)

	kebab, err := svc.CreateProduct(context.Background(), providerID, ownerID, &models.ProductCreateRequest{
		CategoryID: &grills.ID, NameAr: "كباب", NameEn: "Kebab", Price: 15,
	})
	require.NoError(t, err)

	loose, err := svc.CreateProduct(context.Background(), providerID, ownerID, &models.ProductCreateRequest{
		NameAr: "ماء", NameEn: "Water", Price: 1,
	})
	require.NoError(t, err)

	// Unavailable products never reach the menu.
	hidden, err := svc.CreateProduct(context.Background(), providerID, ownerID, &models.ProductCreateRequest{
		CategoryID: &grills.ID, NameAr: "مقلوبة", NameEn: "Maqluba", Price: 14,
	})
	require.NoError(t, err)
	off := false
	_, err = svc.UpdateProduct(context.Background(), hidden.ID, ownerID, &models.ProductUpdateRequest{IsAvailable: &off})
	require.NoError(t, err)

	menu, err := svc.GetMenu(context.Background(), providerID)
	require.NoError(t, err)

	require.Len(t, menu.Sections, 1)
	assert.Equal(t, grills.ID, menu.Sections[0].Category.ID)
	require.Len(t, menu.Sections[0].Products, 1)
	assert.Equal(t, kebab.ID, menu.Sections[0].Products[0].ID)
	require.Len(t, menu.Uncategorized, 1)
	assert.Equal(t, loose.ID, menu.Uncategorized[0].ID)
}

func TestGetMenu_InactiveSectionProductsStaySellable(t *testing.T) {
	svc, _, providerID, ownerID := fixture()

	category, err := svc.CreateCategory(context.Background(), providerID, ownerID, &models.CategoryCreateRequest{
		NameAr: "موسمي", NameEn: "Seasonal",
	})
	require.NoError(t, err)

	product, err := svc.CreateProduct(context.Background(), providerID, ownerID, &models.ProductCreateRequest{
		CategoryID: &category.ID, NameAr: "قطايف", NameEn: "Qatayef", Price: 6,
	})
	require.NoError(t, err)

	off := false
	_, err = svc.UpdateCategory(context.Background(), category.ID, ownerID, &models.CategoryUpdateRequest{IsActive: &off})
	require.NoError(t, err)

	menu, err := svc.GetMenu(context.Background(), providerID)
	require.NoError(t, err)
	assert.Empty(t, menu.Sections)
	require.Len(t, menu.Uncategorized, 1)
	assert.Equal(t, product.ID, menu.Uncategorized[0].ID)
}

func TestMenuCacheInvalidation(t *testing.T) {
	svc, _, providerID, ownerID := fixture()
	c := &mockCache{}
	svc.SetCache(c)

	_, err := svc.CreateCategory(context.Background(), providerID, ownerID, &models.CategoryCreateRequest{
		NameAr: "مشروبات", NameEn: "Drinks",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"provider:menu:" + providerID.String()}, c.deleted)

	menu, err := svc.GetMenu(context.Background(), providerID)
	require.NoError(t, err)
	assert.Equal(t, providerID, menu.ProviderID)
}
