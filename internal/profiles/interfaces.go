package profiles

import (
	"context"

	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// RepositoryInterface defines profile data access
type RepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Profile, error)
	GetByAuthID(ctx context.Context, authID uuid.UUID) (models.Profile, error)
	Ensure(ctx context.Context, authID uuid.UUID, fullName string) (models.Profile, error)
	List(ctx context.Context, page, pageSize int, filters ListFilters) (repository.Page[models.Profile], error)
	Update(ctx context.Context, id uuid.UUID, req *models.ProfileUpdateRequest) (models.Profile, error)
	SetRole(ctx context.Context, id uuid.UUID, role models.ProfileRole) (models.Profile, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (models.Profile, error)
	IncrementOrderCounters(ctx context.Context, id uuid.UUID, amount float64) error
	CountByRole(ctx context.Context, role models.ProfileRole) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// EventPublisher publishes profile events. *eventbus.Bus satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
