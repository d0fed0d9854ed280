package settlements

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// RepositoryInterface defines settlement data access
type RepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Settlement, error)
	List(ctx context.Context, page, pageSize int, filters ListFilters) (repository.Page[models.Settlement], error)
	MarkPaid(ctx context.Context, id uuid.UUID) (models.Settlement, error)
	PeriodTotals(ctx context.Context, providerID uuid.UUID, from, to time.Time) (gross, commission float64, err error)
	GetPayout(ctx context.Context, id uuid.UUID) (models.Payout, error)
	PayoutsForSettlement(ctx context.Context, settlementID uuid.UUID) ([]models.Payout, error)
	CreatePayout(ctx context.Context, settlement models.Settlement, method string, reference *string) (models.Payout, error)
	UpdatePayoutStatus(ctx context.Context, id uuid.UUID, status models.PayoutStatus, extra repository.Values) (models.Payout, error)
}

// ProviderReader resolves providers for commission terms and ownership checks.
type ProviderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Provider, error)
	GetByOwner(ctx context.Context, ownerProfileID uuid.UUID) (models.Provider, error)
}

// EventPublisher publishes settlement events. *eventbus.Bus satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
