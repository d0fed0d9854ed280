package admin

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sofraeats/marketplace/internal/orders"
	"github.com/sofraeats/marketplace/internal/profiles"
	"github.com/sofraeats/marketplace/internal/providers"
	"github.com/sofraeats/marketplace/internal/settlements"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// AuditRecorder persists the audit trail. *AuditRepository satisfies it.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditLog) (models.AuditLog, error)
	List(ctx context.Context, page, pageSize int, filters AuditFilters) (repository.Page[models.AuditLog], error)
}

// ProviderAdmin is the slice of the providers service the back-office drives.
type ProviderAdmin interface {
	Approve(ctx context.Context, providerID uuid.UUID, req *models.ProviderApproveRequest) (models.Provider, error)
	Reject(ctx context.Context, providerID uuid.UUID, reason string) (models.Provider, error)
	Suspend(ctx context.Context, providerID uuid.UUID, reason string) (models.Provider, error)
	Reinstate(ctx context.Context, providerID uuid.UUID) (models.Provider, error)
	SetFeatured(ctx context.Context, providerID uuid.UUID, featured bool) (models.Provider, error)
	PendingApplications(ctx context.Context, page, pageSize int) (repository.Page[models.Provider], error)
	List(ctx context.Context, page, pageSize int, filters providers.ListFilters, sort *repository.Sort) (repository.Page[models.Provider], error)
	CountByStatus(ctx context.Context, status models.ProviderStatus) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// ProfileAdmin is the slice of the profiles service the back-office drives.
type ProfileAdmin interface {
	ChangeRole(ctx context.Context, profileID, actorID uuid.UUID, role models.ProfileRole) (models.Profile, error)
	Deactivate(ctx context.Context, profileID, actorID uuid.UUID) (models.Profile, error)
	Reactivate(ctx context.Context, profileID uuid.UUID) (models.Profile, error)
	ListProfiles(ctx context.Context, page, pageSize int, filters profiles.ListFilters) (repository.Page[models.Profile], error)
	Count(ctx context.Context) (int64, error)
}

// OrderAdmin is the slice of the orders service the back-office drives.
type OrderAdmin interface {
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, reason *string) (models.Order, error)
	ListOrders(ctx context.Context, page, pageSize int, filters orders.ListFilters, sort *repository.Sort) (repository.Page[models.Order], error)
	GetStatistics(ctx context.Context, providerID *uuid.UUID, from, to time.Time) (orders.Statistics, error)
}

// SettlementAdmin is the slice of the settlements service the back-office
// drives.
type SettlementAdmin interface {
	ListSettlements(ctx context.Context, page, pageSize int, filters settlements.ListFilters) (repository.Page[models.Settlement], error)
	GetDetail(ctx context.Context, settlementID, callerID uuid.UUID, role models.ProfileRole) (settlements.SettlementDetail, error)
	RecordPayout(ctx context.Context, req *models.PayoutCreateRequest) (models.Payout, error)
	StartPayout(ctx context.Context, payoutID uuid.UUID) (models.Payout, error)
	CompletePayout(ctx context.Context, payoutID uuid.UUID, reference *string) (models.Payout, error)
	FailPayout(ctx context.Context, payoutID uuid.UUID, note string) (models.Payout, error)
}

// StatsCache caches the dashboard snapshot. *cache.Manager satisfies it.
type StatsCache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error
}
