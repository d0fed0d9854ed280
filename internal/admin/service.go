package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sofraeats/marketplace/internal/settlements"
	"github.com/sofraeats/marketplace/pkg/cache"
	"github.com/sofraeats/marketplace/pkg/logger"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

const dashboardCacheTTL = time.Minute

// Service drives the back-office. Every mutation leaves an audit entry; the
// audit write is best-effort and never rolls the mutation back.
type Service struct {
	audit       AuditRecorder
	providers   ProviderAdmin
	profiles    ProfileAdmin
	orders      OrderAdmin
	settlements SettlementAdmin
	cache       StatsCache
}

// NewService creates a new admin service
func NewService(audit AuditRecorder, providers ProviderAdmin, profiles ProfileAdmin, orders OrderAdmin, settlements SettlementAdmin) *Service {
	return &Service{
		audit:       audit,
		providers:   providers,
		profiles:    profiles,
		orders:      orders,
		settlements: settlements,
	}
}

// SetCache wires dashboard caching. Nil disables it.
func (s *Service) SetCache(c StatsCache) {
	s.cache = c
}

// ApproveProvider accepts a provider application.
func (s *Service) ApproveProvider(ctx context.Context, actorID, providerID uuid.UUID, req *models.ProviderApproveRequest) (models.Provider, error) {
	provider, err := s.providers.Approve(ctx, providerID, req)
	if err != nil {
		return models.Provider{}, err
	}
	s.record(ctx, actorID, models.AuditActionProviderApproved, "provider", providerID, map[string]interface{}{
		"commission_rate": req.CommissionRate,
		"grace_days":      req.GraceDays,
	})
	return provider, nil
}

// RejectProvider declines a provider application.
func (s *Service) RejectProvider(ctx context.Context, actorID, providerID uuid.UUID, reason string) (models.Provider, error) {
	provider, err := s.providers.Reject(ctx, providerID, reason)
	if err != nil {
		return models.Provider{}, err
	}
	s.record(ctx, actorID, models.AuditActionProviderRejected, "provider", providerID, map[string]interface{}{
		"reason": reason,
	})
	return provider, nil
}

// SuspendProvider takes a provider off the marketplace.
func (s *Service) SuspendProvider(ctx context.Context, actorID, providerID uuid.UUID, reason string) (models.Provider, error) {
	provider, err := s.providers.Suspend(ctx, providerID, reason)
	if err != nil {
		return models.Provider{}, err
	}
	s.record(ctx, actorID, models.AuditActionProviderSuspended, "provider", providerID, map[string]interface{}{
		"reason": reason,
	})
	return provider, nil
}

// ReinstateProvider lifts a suspension.
func (s *Service) ReinstateProvider(ctx context.Context, actorID, providerID uuid.UUID) (models.Provider, error) {
	provider, err := s.providers.Reinstate(ctx, providerID)
	if err != nil {
		return models.Provider{}, err
	}
	s.record(ctx, actorID, "provider.reinstated", "provider", providerID, nil)
	return provider, nil
}

// SetProviderFeatured toggles the featured flag.
func (s *Service) SetProviderFeatured(ctx context.Context, actorID, providerID uuid.UUID, featured bool) (models.Provider, error) {
	provider, err := s.providers.SetFeatured(ctx, providerID, featured)
	if err != nil {
		return models.Provider{}, err
	}
	s.record(ctx, actorID, "provider.featured", "provider", providerID, map[string]interface{}{
		"featured": featured,
	})
	return provider, nil
}

// ChangeProfileRole moves a profile to a new role.
func (s *Service) ChangeProfileRole(ctx context.Context, actorID, profileID uuid.UUID, role models.ProfileRole) (models.Profile, error) {
	profile, err := s.profiles.ChangeRole(ctx, profileID, actorID, role)
	if err != nil {
		return models.Profile{}, err
	}
	s.record(ctx, actorID, models.AuditActionRoleChanged, "profile", profileID, map[string]interface{}{
		"role": string(role),
	})
	return profile, nil
}

// DeactivateProfile turns a profile off.
func (s *Service) DeactivateProfile(ctx context.Context, actorID, profileID uuid.UUID) (models.Profile, error) {
	profile, err := s.profiles.Deactivate(ctx, profileID, actorID)
	if err != nil {
		return models.Profile{}, err
	}
	s.record(ctx, actorID, models.AuditActionProfileDeactivated, "profile", profileID, nil)
	return profile, nil
}

// ReactivateProfile turns a profile back on.
func (s *Service) ReactivateProfile(ctx context.Context, actorID, profileID uuid.UUID) (models.Profile, error) {
	profile, err := s.profiles.Reactivate(ctx, profileID)
	if err != nil {
		return models.Profile{}, err
	}
	s.record(ctx, actorID, "profile.reactivated", "profile", profileID, nil)
	return profile, nil
}

// RefundOrder refunds a delivered order through the lifecycle table.
func (s *Service) RefundOrder(ctx context.Context, actorID, orderID uuid.UUID, reason *string) (models.Order, error) {
	order, err := s.orders.AdminUpdateStatus(ctx, orderID, models.OrderStatusRefunded, reason)
	if err != nil {
		return models.Order{}, err
	}
	details := map[string]interface{}{"total": order.Total}
	if reason != nil {
		details["reason"] = *reason
	}
	s.record(ctx, actorID, models.AuditActionOrderRefunded, "order", orderID, details)
	return order, nil
}

// RecordPayout opens a payout attempt for a settlement.
func (s *Service) RecordPayout(ctx context.Context, actorID uuid.UUID, req *models.PayoutCreateRequest) (models.Payout, error) {
	payout, err := s.settlements.RecordPayout(ctx, req)
	if err != nil {
		return models.Payout{}, err
	}
	s.record(ctx, actorID, models.AuditActionPayoutRecorded, "settlement", req.SettlementID, map[string]interface{}{
		"payout_id": payout.ID.String(),
		"method":    req.Method,
		"amount":    payout.Amount,
	})
	return payout, nil
}

// CompletePayout finishes a payout and settles its settlement.
func (s *Service) CompletePayout(ctx context.Context, actorID, payoutID uuid.UUID, reference *string) (models.Payout, error) {
	payout, err := s.settlements.CompletePayout(ctx, payoutID, reference)
	if err != nil {
		return models.Payout{}, err
	}
	s.record(ctx, actorID, models.AuditActionPayoutCompleted, "payout", payoutID, nil)
	return payout, nil
}

// StartPayout marks a payout as in flight.
func (s *Service) StartPayout(ctx context.Context, actorID, payoutID uuid.UUID) (models.Payout, error) {
	payout, err := s.settlements.StartPayout(ctx, payoutID)
	if err != nil {
		return models.Payout{}, err
	}
	s.record(ctx, actorID, "payout.started", "payout", payoutID, nil)
	return payout, nil
}

// FailPayout records a failed payout attempt.
func (s *Service) FailPayout(ctx context.Context, actorID, payoutID uuid.UUID, note string) (models.Payout, error) {
	payout, err := s.settlements.FailPayout(ctx, payoutID, note)
	if err != nil {
		return models.Payout{}, err
	}
	s.record(ctx, actorID, models.AuditActionPayoutFailed, "payout", payoutID, map[string]interface{}{"note": note})
	return payout, nil
}

// SettlementDetail loads a settlement with its payout history.
func (s *Service) SettlementDetail(ctx context.Context, actorID, settlementID uuid.UUID) (settlements.SettlementDetail, error) {
	return s.settlements.GetDetail(ctx, settlementID, actorID, models.RoleAdmin)
}

// Dashboard assembles the platform snapshot, cached briefly.
func (s *Service) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	if s.cache == nil {
		return s.buildDashboard(ctx)
	}
	var stats models.DashboardStats
	err := s.cache.GetOrSet(ctx, cache.Keys.DashboardStats("today"), dashboardCacheTTL, &stats, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	})
	return stats, err
}

func (s *Service) buildDashboard(ctx context.Context) (models.DashboardStats, error) {
	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	allTime, err := s.orders.GetStatistics(ctx, nil, startOfToday.AddDate(-10, 0, 0), now)
	if err != nil {
		return models.DashboardStats{}, err
	}
	today, err := s.orders.GetStatistics(ctx, nil, startOfToday, now)
	if err != nil {
		return models.DashboardStats{}, err
	}

	var active int64
	for status, n := range allTime.ByStatus {
		if !status.IsClosed() {
			active += n
		}
	}

	totalProviders, err := s.providers.Count(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	pendingProviders, err := s.providers.CountByStatus(ctx, models.ProviderStatusPendingApproval)
	if err != nil {
		return models.DashboardStats{}, err
	}
	totalProfiles, err := s.profiles.Count(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}

	return models.DashboardStats{
		TotalOrders:      allTime.TotalOrders,
		OrdersToday:      today.TotalOrders,
		ActiveOrders:     active,
		TotalProviders:   totalProviders,
		PendingProviders: pendingProviders,
		TotalProfiles:    totalProfiles,
		RevenueToday:     today.TotalRevenue,
		CommissionToday:  today.TotalCommission,
	}, nil
}

// AuditTrail pages through the audit log.
func (s *Service) AuditTrail(ctx context.Context, page, pageSize int, filters AuditFilters) (repository.Page[models.AuditLog], error) {
	return s.audit.List(ctx, page, pageSize, filters)
}

func (s *Service) record(ctx context.Context, actorID uuid.UUID, action, targetType string, targetID uuid.UUID, details map[string]interface{}) {
	_, err := s.audit.Record(ctx, models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to write audit entry",
			zap.String("action", action),
			zap.String("target_id", targetID.String()),
			zap.Error(err),
		)
	}
}
