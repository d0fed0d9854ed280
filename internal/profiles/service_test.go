package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

type mockRepository struct {
	profiles map[uuid.UUID]models.Profile
}

func newMockRepository() *mockRepository {
	return &mockRepository{profiles: make(map[uuid.UUID]models.Profile)}
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrNotFound
	}
	return profile, nil
}

func (m *mockRepository) GetByAuthID(ctx context.Context, authID uuid.UUID) (models.Profile, error) {
	for _, profile := range m.profiles {
		if profile.AuthID == authID {
			return profile, nil
		}
	}
	return models.Profile{}, repository.ErrNotFound
}

func (m *mockRepository) Ensure(ctx context.Context, authID uuid.UUID, fullName string) (models.Profile, error) {
	if existing, err := m.GetByAuthID(ctx, authID); err == nil {
		existing.FullName = fullName
		m.profiles[existing.ID] = existing
		return existing, nil
	}
	profile := models.Profile{
		ID:       uuid.New(),
		AuthID:   authID,
		FullName: fullName,
		Role:     models.RoleCustomer,
		IsActive: true,
	}
	m.profiles[profile.ID] = profile
	return profile, nil
}

func (m *mockRepository) List(ctx context.Context, page, pageSize int, filters ListFilters) (repository.Page[models.Profile], error) {
	var out []models.Profile
	for _, profile := range m.profiles {
		if filters.Role != nil && profile.Role != *filters.Role {
			continue
		}
		out = append(out, profile)
	}
	return repository.Page[models.Profile]{Data: out, Count: int64(len(out)), Page: page, PageSize: pageSize}, nil
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, req *models.ProfileUpdateRequest) (models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrNotFound
	}
	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Phone != nil {
		profile.Phone = req.Phone
	}
	m.profiles[id] = profile
	return profile, nil
}

func (m *mockRepository) SetRole(ctx context.Context, id uuid.UUID, role models.ProfileRole) (models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrNotFound
	}
	profile.Role = role
	m.profiles[id] = profile
	return profile, nil
}

func (m *mockRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrNotFound
	}
	profile.IsActive = active
	m.profiles[id] = profile
	return profile, nil
}

func (m *mockRepository) IncrementOrderCounters(ctx context.Context, id uuid.UUID, amount float64) error {
	profile, ok := m.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	profile.TotalOrders++
	profile.TotalSpent += amount
	m.profiles[id] = profile
	return nil
}

func (m *mockRepository) CountByRole(ctx context.Context, role models.ProfileRole) (int64, error) {
	var n int64
	for _, profile := range m.profiles {
		if profile.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.profiles)), nil
}

type mockBus struct {
	subjects []string
}

func (m *mockBus) Publish(ctx context.Context, subject string, event *eventbus.Event) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func seedProfile(repo *mockRepository, role models.ProfileRole) models.Profile {
	profile := models.Profile{
		ID:       uuid.New(),
		AuthID:   uuid.New(),
		FullName: "Huda Karim",
		Role:     role,
		IsActive: true,
	}
	repo.profiles[profile.ID] = profile
	return profile
}

func TestEnsure_Idempotent(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")

	authID := uuid.New()
	first, err := svc.Ensure(context.Background(), authID, "Omar Nabil")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, first.Role)

	second, err := svc.Ensure(context.Background(), authID, "Omar N.")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Omar N.", second.FullName)
}

func TestUpdateProfile_ValidatesPhone(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")
	profile := seedProfile(repo, models.RoleCustomer)

	bad := "not-a-phone"
	_, err := svc.UpdateProfile(context.Background(), profile.ID, &models.ProfileUpdateRequest{Phone: &bad})
	require.Error(t, err)

	good := "+96895554321"
	updated, err := svc.UpdateProfile(context.Background(), profile.ID, &models.ProfileUpdateRequest{Phone: &good})
	require.NoError(t, err)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, good, *updated.Phone)
}

func TestChangeRole(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")
	bus := &mockBus{}
	svc.SetEventPublisher(bus)

	actor := seedProfile(repo, models.RoleAdmin)
	target := seedProfile(repo, models.RoleCustomer)

	updated, err := svc.ChangeRole(context.Background(), target.ID, actor.ID, models.RoleProvider)
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, updated.Role)
	assert.Equal(t, []string{eventbus.SubjectProfileRoleChanged}, bus.subjects)
}

func TestChangeRole_SelfForbidden(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")
	actor := seedProfile(repo, models.RoleAdmin)

	_, err := svc.ChangeRole(context.Background(), actor.ID, actor.ID, models.RoleCustomer)
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Code)
}

func TestChangeRole_NoOpSkipsEvent(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")
	bus := &mockBus{}
	svc.SetEventPublisher(bus)

	actor := seedProfile(repo, models.RoleAdmin)
	target := seedProfile(repo, models.RoleCustomer)

	_, err := svc.ChangeRole(context.Background(), target.ID, actor.ID, models.RoleCustomer)
	require.NoError(t, err)
	assert.Empty(t, bus.subjects)
}

func TestDeactivate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")
	actor := seedProfile(repo, models.RoleAdmin)
	target := seedProfile(repo, models.RoleCustomer)

	updated, err := svc.Deactivate(context.Background(), target.ID, actor.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.Deactivate(context.Background(), actor.ID, actor.ID)
	assert.Error(t, err)

	back, err := svc.Reactivate(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, back.IsActive)
}

func TestIncrementOrderCounters(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test")
	profile := seedProfile(repo, models.RoleCustomer)

	require.NoError(t, svc.IncrementOrderCounters(context.Background(), profile.ID, 24.5))
	require.NoError(t, svc.IncrementOrderCounters(context.Background(), profile.ID, 10))

	stored := repo.profiles[profile.ID]
	assert.Equal(t, 2, stored.TotalOrders)
	assert.Equal(t, 34.5, stored.TotalSpent)

	err := svc.IncrementOrderCounters(context.Background(), uuid.New(), 5)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestListFilters_CompileOrder(t *testing.T) {
	role := models.RoleProvider
	active := true
	filters := ListFilters{Search: "huda", Active: &active, Role: &role}.compile()

	want := []repository.Filter{
		repository.Eq("role", role),
		repository.Eq("is_active", active),
		repository.ILike("full_name", "%huda%"),
	}
	assert.Equal(t, want, filters)
}
