package profiles

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

const profilesTable = "profiles"

var profileCols = []string{
	"id", "auth_id", "full_name", "phone", "role", "is_active",
	"governorate_id", "city_id", "district_id",
	"notify_order_updates", "notify_promotions",
	"total_orders", "total_spent",
	"created_at", "updated_at",
}

// profileListCols is the narrow projection for admin listings.
var profileListCols = []string{
	"id", "full_name", "phone", "role", "is_active",
	"total_orders", "total_spent", "created_at",
}

// ListFilters are the supported profile listing predicates, compiled in a
// fixed order.
type ListFilters struct {
	Role   *models.ProfileRole
	Active *bool
	// Search matches the full name, case-insensitive.
	Search string
}

func (f ListFilters) compile() []repository.Filter {
	var filters []repository.Filter
	if f.Role != nil {
		filters = append(filters, repository.Eq("role", *f.Role))
	}
	if f.Active != nil {
		filters = append(filters, repository.Eq("is_active", *f.Active))
	}
	if f.Search != "" {
		filters = append(filters, repository.ILike("full_name", "%"+f.Search+"%"))
	}
	return filters
}

// SortNewest orders profiles by signup time, latest first.
var SortNewest = repository.Desc("created_at")

// Repository handles database access for profiles.
type Repository struct {
	pool *pgxpool.Pool
	base *repository.Base[models.Profile]
}

// NewRepository creates a new profiles repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
		base: repository.New[models.Profile](pool, profilesTable, profileCols...),
	}
}

// GetByID fetches one profile.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	return r.base.FindByID(ctx, id)
}

// GetByAuthID fetches the profile bound to an auth identity.
func (r *Repository) GetByAuthID(ctx context.Context, authID uuid.UUID) (models.Profile, error) {
	return r.base.First(ctx, repository.Options{
		Filters: []repository.Filter{repository.Eq("auth_id", authID)},
	})
}

// Ensure upserts the profile row for an auth identity. First contact creates
// a customer profile; later calls refresh the name only and never touch the
// id, role or active flag.
func (r *Repository) Ensure(ctx context.Context, authID uuid.UUID, fullName string) (models.Profile, error) {
	return r.base.Upsert(ctx, repository.Values{
		"id":         uuid.New(),
		"auth_id":    authID,
		"full_name":  fullName,
		"role":       models.RoleCustomer,
		"is_active":  true,
		"updated_at": time.Now(),
	}, "auth_id", "full_name", "updated_at")
}

// List pages through profiles matching the filters with the narrow projection.
func (r *Repository) List(ctx context.Context, page, pageSize int, filters ListFilters) (repository.Page[models.Profile], error) {
	return r.base.FindPaginated(ctx, page, pageSize, repository.Options{
		Select:  profileListCols,
		Filters: filters.compile(),
		Sort:    SortNewest,
	})
}

// Update applies the non-nil fields of req.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req *models.ProfileUpdateRequest) (models.Profile, error) {
	values := repository.Values{"updated_at": time.Now()}
	if req.FullName != nil {
		values["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		values["phone"] = *req.Phone
	}
	if req.GovernorateID != nil {
		values["governorate_id"] = *req.GovernorateID
	}
	if req.CityID != nil {
		values["city_id"] = *req.CityID
	}
	if req.DistrictID != nil {
		values["district_id"] = *req.DistrictID
	}
	if req.NotifyOrderUpdates != nil {
		values["notify_order_updates"] = *req.NotifyOrderUpdates
	}
	if req.NotifyPromotions != nil {
		values["notify_promotions"] = *req.NotifyPromotions
	}
	return r.base.Update(ctx, id, values)
}

// SetRole changes a profile's role.
func (r *Repository) SetRole(ctx context.Context, id uuid.UUID, role models.ProfileRole) (models.Profile, error) {
	return r.base.Update(ctx, id, repository.Values{
		"role":       role,
		"updated_at": time.Now(),
	})
}

// SetActive toggles the active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (models.Profile, error) {
	return r.base.Update(ctx, id, repository.Values{
		"is_active":  active,
		"updated_at": time.Now(),
	})
}

// IncrementOrderCounters bumps the running aggregates after a delivery. The
// increment happens in SQL so concurrent deliveries never lose updates.
func (r *Repository) IncrementOrderCounters(ctx context.Context, id uuid.UUID, amount float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET total_orders = total_orders + 1,
		    total_spent = total_spent + $2,
		    updated_at = now()
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return fmt.Errorf("increment order counters for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountByRole counts profiles holding a role.
func (r *Repository) CountByRole(ctx context.Context, role models.ProfileRole) (int64, error) {
	return r.base.Count(ctx, repository.Eq("role", role))
}

// Count counts all profiles.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.base.Count(ctx)
}
