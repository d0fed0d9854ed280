package providers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

const providersTable = "providers"

// providerCols is the full projection.
var providerCols = []string{
	"id", "owner_profile_id", "name_ar", "name_en",
	"description_ar", "description_en", "category", "status",
	"rejection_reason", "commission_rate", "grace_period_until",
	"rating", "review_count", "order_count", "is_featured",
	"delivery_fee", "min_order_amount", "delivery_radius_km", "estimated_minutes",
	"governorate_id", "city_id", "district_id", "business_hours",
	"approved_at", "created_at", "updated_at",
}

// providerListCols is the narrow projection for browse views.
var providerListCols = []string{
	"id", "name_ar", "name_en", "category", "status",
	"rating", "review_count", "is_featured",
	"delivery_fee", "min_order_amount", "estimated_minutes", "created_at",
}

// operationalStatuses are the statuses a provider may trade in.
var operationalStatuses = []models.ProviderStatus{
	models.ProviderStatusApproved, models.ProviderStatusOpen,
	models.ProviderStatusClosed, models.ProviderStatusTemporarilyPaused,
	models.ProviderStatusOnVacation,
}

// ListFilters are the supported provider listing predicates. They compile in a
// fixed order so the generated SQL is stable regardless of which are set.
type ListFilters struct {
	Status        *models.ProviderStatus
	Statuses      []models.ProviderStatus
	Category      *models.ProviderCategory
	GovernorateID *uuid.UUID
	CityID        *uuid.UUID
	DistrictID    *uuid.UUID
	FeaturedOnly  bool
	// Search matches the bilingual search_name column, case-insensitive.
	Search string
}

func (f ListFilters) compile() []repository.Filter {
	var filters []repository.Filter
	if f.Status != nil {
		filters = append(filters, repository.Eq("status", *f.Status))
	} else if len(f.Statuses) > 0 {
		values := make([]interface{}, len(f.Statuses))
		for i, s := range f.Statuses {
			values[i] = s
		}
		filters = append(filters, repository.In("status", values...))
	}
	if f.Category != nil {
		filters = append(filters, repository.Eq("category", *f.Category))
	}
	if f.GovernorateID != nil {
		filters = append(filters, repository.Eq("governorate_id", *f.GovernorateID))
	}
	if f.CityID != nil {
		filters = append(filters, repository.Eq("city_id", *f.CityID))
	}
	if f.DistrictID != nil {
		filters = append(filters, repository.Eq("district_id", *f.DistrictID))
	}
	if f.FeaturedOnly {
		filters = append(filters, repository.Eq("is_featured", true))
	}
	if f.Search != "" {
		filters = append(filters, repository.ILike("search_name", "%"+f.Search+"%"))
	}
	return filters
}

// Named sort strategies for provider listings.
var (
	SortNewest   = repository.Desc("created_at")
	SortOldest   = repository.Asc("created_at")
	SortTopRated = repository.Desc("rating")
	SortNameEn   = repository.Asc("name_en")
)

// Repository handles database access for providers.
type Repository struct {
	base *repository.Base[models.Provider]
}

// NewRepository creates a new providers repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		base: repository.New[models.Provider](pool, providersTable, providerCols...),
	}
}

// GetByID fetches one provider with the full projection.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (models.Provider, error) {
	return r.base.FindByID(ctx, id)
}

// GetByOwner fetches the provider owned by a profile. At most one exists.
func (r *Repository) GetByOwner(ctx context.Context, ownerProfileID uuid.UUID) (models.Provider, error) {
	return r.base.First(ctx, repository.Options{
		Filters: []repository.Filter{repository.Eq("owner_profile_id", ownerProfileID)},
	})
}

// List pages through providers matching the filters with the narrow projection.
func (r *Repository) List(ctx context.Context, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Provider], error) {
	if sort == nil {
		sort = SortTopRated
	}
	return r.base.FindPaginated(ctx, page, pageSize, repository.Options{
		Select:  providerListCols,
		Filters: filters.compile(),
		Sort:    sort,
	})
}

// Create inserts a new provider application in pending_approval.
func (r *Repository) Create(ctx context.Context, ownerProfileID uuid.UUID, req *models.ProviderApplyRequest) (models.Provider, error) {
	return r.base.Create(ctx, repository.Values{
		"id":                 uuid.New(),
		"owner_profile_id":   ownerProfileID,
		"name_ar":            req.NameAr,
		"name_en":            req.NameEn,
		"description_ar":     req.DescriptionAr,
		"description_en":     req.DescriptionEn,
		"category":           req.Category,
		"status":             models.ProviderStatusPendingApproval,
		"commission_rate":    0,
		"delivery_fee":       req.DeliveryFee,
		"min_order_amount":   req.MinOrderAmount,
		"delivery_radius_km": req.DeliveryRadiusKm,
		"estimated_minutes":  req.EstimatedMinutes,
		"governorate_id":     req.GovernorateID,
		"city_id":            req.CityID,
		"district_id":        req.DistrictID,
		"business_hours":     req.BusinessHours,
	})
}

// UpdateStatus moves the provider to status with extra columns in the same
// UPDATE. Transition legality is enforced above this layer.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProviderStatus, extra repository.Values) (models.Provider, error) {
	values := repository.Values{
		"status":     status,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		values[k] = v
	}
	return r.base.Update(ctx, id, values)
}

// UpdateSettings applies the non-nil fields of req.
func (r *Repository) UpdateSettings(ctx context.Context, id uuid.UUID, req *models.ProviderSettingsUpdateRequest) (models.Provider, error) {
	values := repository.Values{"updated_at": time.Now()}
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
	if req.DeliveryFee != nil {
		values["delivery_fee"] = *req.DeliveryFee
	}
	if req.MinOrderAmount != nil {
		values["min_order_amount"] = *req.MinOrderAmount
	}
	if req.DeliveryRadiusKm != nil {
		values["delivery_radius_km"] = *req.DeliveryRadiusKm
	}
	if req.EstimatedMinutes != nil {
		values["estimated_minutes"] = *req.EstimatedMinutes
	}
	if req.BusinessHours != nil {
		values["business_hours"] = *req.BusinessHours
	}
	return r.base.Update(ctx, id, values)
}

// SetFeatured toggles the featured flag.
func (r *Repository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (models.Provider, error) {
	return r.base.Update(ctx, id, repository.Values{
		"is_featured": featured,
		"updated_at":  time.Now(),
	})
}

// Featured is a preset: top-rated featured operational providers.
func (r *Repository) Featured(ctx context.Context, limit int) ([]models.Provider, error) {
	if limit <= 0 {
		limit = 10
	}
	filters := ListFilters{Statuses: operationalStatuses, FeaturedOnly: true}
	items, _, err := r.base.FindAll(ctx, repository.Options{
		Select:  providerListCols,
		Filters: filters.compile(),
		Sort:    SortTopRated,
		Limit:   limit,
	})
	return items, err
}

// PendingApplications is a preset: applications awaiting review, oldest first.
func (r *Repository) PendingApplications(ctx context.Context, page, pageSize int) (repository.Page[models.Provider], error) {
	pending := models.ProviderStatusPendingApproval
	return r.base.FindPaginated(ctx, page, pageSize, repository.Options{
		Filters: (ListFilters{Status: &pending}).compile(),
		Sort:    SortOldest,
	})
}

// CountByStatus counts providers in the given status.
func (r *Repository) CountByStatus(ctx context.Context, status models.ProviderStatus) (int64, error) {
	return r.base.Count(ctx, repository.Eq("status", status))
}

// Count counts all providers.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.base.Count(ctx)
}
