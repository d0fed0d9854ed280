package settlements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

const (
	settlementsTable = "settlements"
	payoutsTable     = "payouts"
)

var settlementCols = []string{
	"id", "provider_id", "period_start", "period_end",
	"order_count", "gross_amount", "commission_amount", "net_amount",
	"status", "generated_at", "created_at", "updated_at",
}

var payoutCols = []string{
	"id", "settlement_id", "provider_id", "amount", "method",
	"reference", "status", "failure_note", "paid_at",
	"created_at", "updated_at",
}

// ListFilters are the supported settlement listing predicates, compiled in a
// fixed order.
type ListFilters struct {
	ProviderID *uuid.UUID
	Status     *models.SettlementStatus
	From       *time.Time
	To         *time.Time
}

func (f ListFilters) compile() []repository.Filter {
	var filters []repository.Filter
	if f.ProviderID != nil {
		filters = append(filters, repository.Eq("provider_id", *f.ProviderID))
	}
	if f.Status != nil {
		filters = append(filters, repository.Eq("status", *f.Status))
	}
	if f.From != nil {
		filters = append(filters, repository.Gte("period_start", *f.From))
	}
	if f.To != nil {
		filters = append(filters, repository.Lt("period_end", *f.To))
	}
	return filters
}

// SortNewest orders settlements by period, latest first.
var SortNewest = repository.Desc("period_start")

// Repository handles database access for settlements and payouts.
type Repository struct {
	settlements *repository.Base[models.Settlement]
	payouts     *repository.Base[models.Payout]
}

// NewRepository creates a new settlements repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		settlements: repository.New[models.Settlement](pool, settlementsTable, settlementCols...),
		payouts:     repository.New[models.Payout](pool, payoutsTable, payoutCols...),
	}
}

// GetByID fetches one settlement.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (models.Settlement, error) {
	return r.settlements.FindByID(ctx, id)
}

// List pages through settlements matching the filters.
func (r *Repository) List(ctx context.Context, page, pageSize int, filters ListFilters) (repository.Page[models.Settlement], error) {
	return r.settlements.FindPaginated(ctx, page, pageSize, repository.Options{
		Filters: filters.compile(),
		Sort:    SortNewest,
	})
}

// MarkPaid moves a settlement to paid.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID) (models.Settlement, error) {
	return r.settlements.Update(ctx, id, repository.Values{
		"status":     models.SettlementStatusPaid,
		"updated_at": time.Now(),
	})
}

// PeriodTotals sums delivered amounts over settlements intersecting the
// period. The rows are DB-computed; only the addition happens here.
func (r *Repository) PeriodTotals(ctx context.Context, providerID uuid.UUID, from, to time.Time) (gross, commission float64, err error) {
	filters := ListFilters{ProviderID: &providerID, From: &from, To: &to}
	rows, _, err := r.settlements.FindAll(ctx, repository.Options{
		Select:  []string{"id", "provider_id", "period_start", "period_end", "gross_amount", "commission_amount"},
		Filters: filters.compile(),
	})
	if err != nil {
		return 0, 0, err
	}
	for _, row := range rows {
		gross += row.GrossAmount
		commission += row.CommissionAmount
	}
	return gross, commission, nil
}

// GetPayout fetches one payout.
func (r *Repository) GetPayout(ctx context.Context, id uuid.UUID) (models.Payout, error) {
	return r.payouts.FindByID(ctx, id)
}

// PayoutsForSettlement lists a settlement's payout attempts, oldest first.
func (r *Repository) PayoutsForSettlement(ctx context.Context, settlementID uuid.UUID) ([]models.Payout, error) {
	items, _, err := r.payouts.FindBy(ctx, "settlement_id", settlementID, repository.Options{
		Sort: repository.Asc("created_at"),
	})
	return items, err
}

// CreatePayout records a new payout attempt in pending.
func (r *Repository) CreatePayout(ctx context.Context, settlement models.Settlement, method string, reference *string) (models.Payout, error) {
	return r.payouts.Create(ctx, repository.Values{
		"id":            uuid.New(),
		"settlement_id": settlement.ID,
		"provider_id":   settlement.ProviderID,
		"amount":        settlement.NetAmount,
		"method":        method,
		"reference":     reference,
		"status":        models.PayoutStatusPending,
	})
}

// UpdatePayoutStatus moves a payout to status with extra columns in the same
// UPDATE. Transition legality is enforced above this layer.
func (r *Repository) UpdatePayoutStatus(ctx context.Context, id uuid.UUID, status models.PayoutStatus, extra repository.Values) (models.Payout, error) {
	values := repository.Values{
		"status":     status,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		values[k] = v
	}
	return r.payouts.Update(ctx, id, values)
}
