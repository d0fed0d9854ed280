package providers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// RepositoryInterface defines provider data access
type RepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Provider, error)
	GetByOwner(ctx context.Context, ownerProfileID uuid.UUID) (models.Provider, error)
	List(ctx context.Context, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Provider], error)
	Create(ctx context.Context, ownerProfileID uuid.UUID, req *models.ProviderApplyRequest) (models.Provider, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProviderStatus, extra repository.Values) (models.Provider, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, req *models.ProviderSettingsUpdateRequest) (models.Provider, error)
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (models.Provider, error)
	Featured(ctx context.Context, limit int) ([]models.Provider, error)
	PendingApplications(ctx context.Context, page, pageSize int) (repository.Page[models.Provider], error)
	CountByStatus(ctx context.Context, status models.ProviderStatus) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// EventPublisher publishes provider lifecycle events. *eventbus.Bus satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}

// ListCache caches the featured-provider list. *cache.Manager satisfies it.
type ListCache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error
	Delete(ctx context.Context, keys ...string) error
}

// RoleUpdater promotes a profile when its provider application is approved.
type RoleUpdater interface {
	SetRole(ctx context.Context, profileID uuid.UUID, role models.ProfileRole) error
}
