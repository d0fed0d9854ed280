package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

type mockRepository struct {
	providers map[uuid.UUID]models.Provider
	updateErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{providers: make(map[uuid.UUID]models.Provider)}
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Provider, error) {
	provider, ok := m.providers[id]
	if !ok {
		return models.Provider{}, repository.ErrNotFound
	}
	return provider, nil
}

func (m *mockRepository) GetByOwner(ctx context.Context, ownerProfileID uuid.UUID) (models.Provider, error) {
	for _, provider := range m.providers {
		if provider.OwnerProfileID == ownerProfileID {
			return provider, nil
		}
	}
	return models.Provider{}, repository.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Provider], error) {
	var out []models.Provider
	for _, provider := range m.providers {
		if filters.Status != nil && provider.Status != *filters.Status {
			continue
		}
		if len(filters.Statuses) > 0 {
			found := false
			for _, s := range filters.Statuses {
				if provider.Status == s {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, provider)
	}
	return repository.Page[models.Provider]{Data: out, Count: int64(len(out)), Page: page, PageSize: pageSize}, nil
}

func (m *mockRepository) Create(ctx context.Context, ownerProfileID uuid.UUID, req *models.ProviderApplyRequest) (models.Provider, error) {
	provider := models.Provider{
		ID:               uuid.New(),
		OwnerProfileID:   ownerProfileID,
		NameAr:           req.NameAr,
		NameEn:           req.NameEn,
		Category:         req.Category,
		Status:           models.ProviderStatusPendingApproval,
		DeliveryFee:      req.DeliveryFee,
		MinOrderAmount:   req.MinOrderAmount,
		DeliveryRadiusKm: req.DeliveryRadiusKm,
		EstimatedMinutes: req.EstimatedMinutes,
		BusinessHours:    req.BusinessHours,
		CreatedAt:        time.Now(),
	}
	m.providers[provider.ID] = provider
	return provider, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProviderStatus, extra repository.Values) (models.Provider, error) {
	if m.updateErr != nil {
		return models.Provider{}, m.updateErr
	}
	provider, ok := m.providers[id]
	if !ok {
		return models.Provider{}, repository.ErrNotFound
	}
	provider.Status = status
	if v, ok := extra["commission_rate"]; ok {
		provider.CommissionRate = v.(float64)
	}
	if v, ok := extra["grace_period_until"]; ok {
		t := v.(time.Time)
		provider.GracePeriodUntil = &t
	}
	if v, ok := extra["rejection_reason"]; ok && v != nil {
		reason := v.(string)
		provider.RejectionReason = &reason
	}
	if v, ok := extra["approved_at"]; ok {
		t := v.(time.Time)
		provider.ApprovedAt = &t
	}
	m.providers[id] = provider
	return provider, nil
}

func (m *mockRepository) UpdateSettings(ctx context.Context, id uuid.UUID, req *models.ProviderSettingsUpdateRequest) (models.Provider, error) {
	provider, ok := m.providers[id]
	if !ok {
		return models.Provider{}, repository.ErrNotFound
	}
	if req.DeliveryFee != nil {
		provider.DeliveryFee = *req.DeliveryFee
	}
	if req.BusinessHours != nil {
		provider.BusinessHours = *req.BusinessHours
	}
	m.providers[id] = provider
	return provider, nil
}

func (m *mockRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (models.Provider, error) {
	provider, ok := m.providers[id]
	if !ok {
		return models.Provider{}, repository.ErrNotFound
	}
	provider.IsFeatured = featured
	m.providers[id] = provider
	return provider, nil
}

func (m *mockRepository) Featured(ctx context.Context, limit int) ([]models.Provider, error) {
	var out []models.Provider
	for _, provider := range m.providers {
		if provider.IsFeatured && provider.Status.IsOperational() {
			out = append(out, provider)
		}
	}
	return out, nil
}

func (m *mockRepository) PendingApplications(ctx context.Context, page, pageSize int) (repository.Page[models.Provider], error) {
	pending := models.ProviderStatusPendingApproval
	return m.List(ctx, page, pageSize, ListFilters{Status: &pending}, nil)
}

func (m *mockRepository) CountByStatus(ctx context.Context, status models.ProviderStatus) (int64, error) {
	var n int64
	for _, provider := range m.providers {
		if provider.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.providers)), nil
}

type mockRoles struct {
	roles map[uuid.UUID]models.ProfileRole
	err   error
}

func (m *mockRoles) SetRole(ctx context.Context, profileID uuid.UUID, role models.ProfileRole) error {
	if m.err != nil {
		return m.err
	}
	m.roles[profileID] = role
	return nil
}

type mockBus struct {
	subjects []string
}

func (m *mockBus) Publish(ctx context.Context, subject string, event *eventbus.Event) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func seedPending(repo *mockRepository) models.Provider {
	provider := models.Provider{
		ID:             uuid.New(),
		OwnerProfileID: uuid.New(),
		NameAr:         "مطعم السلام",
		NameEn:         "Al Salam Restaurant",
		Status:         models.ProviderStatusPendingApproval,
	}
	repo.providers[provider.ID] = provider
	return provider
}

func TestApply_OnePerProfile(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")

	ownerID := uuid.New()
	req := &models.ProviderApplyRequest{
		NameAr: "مخبز", NameEn: "Bakery", Category: models.CategoryBakery,
		DeliveryRadiusKm: 5, EstimatedMinutes: 30,
	}

	_, err := svc.Apply(context.Background(), ownerID, req)
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), ownerID, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestApply_RejectsBadHours(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")

	_, err := svc.Apply(context.Background(), uuid.New(), &models.ProviderApplyRequest{
		NameAr: "مقهى", NameEn: "Cafe", Category: models.CategoryCafe,
		DeliveryRadiusKm: 5, EstimatedMinutes: 20,
		BusinessHours: models.BusinessHours{
			"monday": {Open: "09:00", Close: "09:00"},
		},
	})
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Code)
}

func TestApprove_SetsTermsAndPromotesOwner(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")
	roles := &mockRoles{roles: make(map[uuid.UUID]models.ProfileRole)}
	bus := &mockBus{}
	svc.SetRoleUpdater(roles)
	svc.SetEventPublisher(bus)

	pending := seedPending(repo)

	approved, err := svc.Approve(context.Background(), pending.ID, &models.ProviderApproveRequest{
		CommissionRate: 0.15,
		GraceDays:      14,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ProviderStatusApproved, approved.Status)
	assert.Equal(t, 0.15, approved.CommissionRate)
	require.NotNil(t, approved.GracePeriodUntil)
	assert.True(t, approved.GracePeriodUntil.After(time.Now().AddDate(0, 0, 13)))
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, models.RoleProvider, roles.roles[pending.OwnerProfileID])
	assert.Equal(t, []string{eventbus.SubjectProviderApproved}, bus.subjects)
}

func TestApprove_OnlyFromPending(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")

	provider := seedPending(repo)
	provider.Status = models.ProviderStatusOpen
	repo.providers[provider.ID] = provider

	_, err := svc.Approve(context.Background(), provider.ID, &models.ProviderApproveRequest{CommissionRate: 0.1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidTransition))
}

func TestApprove_RoleFailureDoesNotFailApproval(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")
	svc.SetRoleUpdater(&mockRoles{err: errors.New("profiles down")})

	pending := seedPending(repo)
	_, err := svc.Approve(context.Background(), pending.ID, &models.ProviderApproveRequest{CommissionRate: 0.1})
	assert.NoError(t, err)
}

func TestReject_SetsReason(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")
	bus := &mockBus{}
	svc.SetEventPublisher(bus)

	pending := seedPending(repo)

	rejected, err := svc.Reject(context.Background(), pending.ID, "incomplete papers")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "incomplete papers", *rejected.RejectionReason)
	assert.Equal(t, []string{eventbus.SubjectProviderRejected}, bus.subjects)
}

func TestSuspend_OnlyOperational(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")

	pending := seedPending(repo)
	_, err := svc.Suspend(context.Background(), pending.ID, "fraud report")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidTransition))

	open := seedPending(repo)
	open.Status = models.ProviderStatusOpen
	repo.providers[open.ID] = open

	suspended, err := svc.Suspend(context.Background(), open.ID, "fraud report")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderStatusSuspended, suspended.Status)
}

func TestReinstate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")

	provider := seedPending(repo)
	provider.Status = models.ProviderStatusSuspended
	repo.providers[provider.ID] = provider

	reinstated, err := svc.Reinstate(context.Background(), provider.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderStatusApproved, reinstated.Status)

	_, err = svc.Reinstate(context.Background(), reinstated.ID)
	assert.Error(t, err)
}

func TestChangeTradingStatus(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")

	provider := seedPending(repo)
	provider.Status = models.ProviderStatusApproved
	repo.providers[provider.ID] = provider

	updated, err := svc.ChangeTradingStatus(context.Background(), provider.OwnerProfileID, models.ProviderStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderStatusOpen, updated.Status)

	// Approved is not a toggle the owner may pick.
	_, err = svc.ChangeTradingStatus(context.Background(), provider.OwnerProfileID, models.ProviderStatusApproved)
	assert.Error(t, err)

	// Suspended providers cannot reopen themselves.
	provider.Status = models.ProviderStatusSuspended
	repo.providers[provider.ID] = provider
	_, err = svc.ChangeTradingStatus(context.Background(), provider.OwnerProfileID, models.ProviderStatusOpen)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidTransition))
}

func TestGetPublic_HidesNonOperational(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")

	pending := seedPending(repo)
	_, err := svc.GetPublic(context.Background(), pending.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	open := seedPending(repo)
	open.Status = models.ProviderStatusOpen
	repo.providers[open.ID] = open
	_, err = svc.GetPublic(context.Background(), open.ID)
	assert.NoError(t, err)
}

func TestBrowse_ForcesOperationalSet(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")

	seedPending(repo)
	open := seedPending(repo)
	open.Status = models.ProviderStatusOpen
	repo.providers[open.ID] = open

	page, err := svc.Browse(context.Background(), 1, 20, ListFilters{}, nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, open.ID, page.Data[0].ID)

	pending := models.ProviderStatusPendingApproval
	_, err = svc.Browse(context.Background(), 1, 20, ListFilters{Status: &pending}, nil)
	assert.Error(t, err)
}

func TestListFilters_CompileOrder(t *testing.T) {
	status := models.ProviderStatusOpen
	category := models.CategoryRestaurant
	governorate := uuid.New()

	filters := ListFilters{
		Search:        "salam",
		FeaturedOnly:  true,
		GovernorateID: &governorate,
		Category:      &category,
		Status:        &status,
	}.compile()

	want := []repository.Filter{
		repository.Eq("status", status),
		repository.Eq("category", category),
		repository.Eq("governorate_id", governorate),
		repository.Eq("is_featured", true),
		repository.ILike("search_name", "%salam%"),
	}
	assert.Equal(t, want, filters)
}
