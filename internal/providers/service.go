package providers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sofraeats/marketplace/pkg/cache"
	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/logger"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
	"github.com/sofraeats/marketplace/pkg/validation"
)

const featuredCacheTTL = 2 * time.Minute

// Service handles provider business logic
type Service struct {
	repo   RepositoryInterface
	roles  RoleUpdater
	bus    EventPublisher
	cache  ListCache
	source string
}

// NewService creates a new providers service
func NewService(repo RepositoryInterface, source string) *Service {
	return &Service{repo: repo, source: source}
}

// SetEventPublisher wires lifecycle event publishing. Nil disables it.
func (s *Service) SetEventPublisher(bus EventPublisher) {
	s.bus = bus
}

// SetCache wires featured-list caching. Nil disables it.
func (s *Service) SetCache(c ListCache) {
	s.cache = c
}

// SetRoleUpdater wires owner promotion on approval. Nil disables it.
func (s *Service) SetRoleUpdater(roles RoleUpdater) {
	s.roles = roles
}

// Apply submits a provider application. One per profile.
func (s *Service) Apply(ctx context.Context, callerID uuid.UUID, req *models.ProviderApplyRequest) (models.Provider, error) {
	if _, err := s.repo.GetByOwner(ctx, callerID); err == nil {
		return models.Provider{}, common.NewConflictError("profile already owns a provider")
	}
	if err := validateBusinessHours(req.BusinessHours); err != nil {
		return models.Provider{}, err
	}
	if err := validation.ValidateDeliveryRadius(req.DeliveryRadiusKm); err != nil {
		return models.Provider{}, common.NewBadRequestError(err.Error(), err)
	}
	return s.repo.Create(ctx, callerID, req)
}

// GetPublic fetches one provider for the storefront. Providers that never
// passed approval stay invisible.
func (s *Service) GetPublic(ctx context.Context, providerID uuid.UUID) (models.Provider, error) {
	provider, err := s.repo.GetByID(ctx, providerID)
	if err != nil {
		return models.Provider{}, err
	}
	if !provider.Status.IsOperational() {
		return models.Provider{}, repository.ErrNotFound
	}
	return provider, nil
}

// GetByID fetches one provider without visibility rules.
func (s *Service) GetByID(ctx context.Context, providerID uuid.UUID) (models.Provider, error) {
	return s.repo.GetByID(ctx, providerID)
}

// GetMine fetches the caller's own provider.
func (s *Service) GetMine(ctx context.Context, callerID uuid.UUID) (models.Provider, error) {
	return s.repo.GetByOwner(ctx, callerID)
}

// Browse pages through operational providers for the storefront. Caller
// filters narrow within the operational set, never out of it.
func (s *Service) Browse(ctx context.Context, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Provider], error) {
	if filters.Status != nil && !filters.Status.IsOperational() {
		return repository.Page[models.Provider]{}, common.NewBadRequestError("unknown provider status", nil)
	}
	if filters.Status == nil {
		filters.Statuses = operationalStatuses
	}
	return s.repo.List(ctx, page, pageSize, filters, sort)
}

// List pages through providers without visibility rules. Admin surfaces only.
func (s *Service) List(ctx context.Context, page, pageSize int, filters ListFilters, sort *repository.Sort) (repository.Page[models.Provider], error) {
	return s.repo.List(ctx, page, pageSize, filters, sort)
}

// Featured returns the featured-provider strip, cached briefly.
func (s *Service) Featured(ctx context.Context, limit int) ([]models.Provider, error) {
	if limit <= 0 {
		limit = 10
	}
	if s.cache == nil {
		return s.repo.Featured(ctx, limit)
	}
	var featured []models.Provider
	err := s.cache.GetOrSet(ctx, cache.Keys.FeaturedProviders(limit), featuredCacheTTL, &featured, func() (interface{}, error) {
		return s.repo.Featured(ctx, limit)
	})
	return featured, err
}

// CountByStatus counts providers in the given status.
func (s *Service) CountByStatus(ctx context.Context, status models.ProviderStatus) (int64, error) {
	return s.repo.CountByStatus(ctx, status)
}

// Count counts all providers.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// PendingApplications pages through applications awaiting review.
func (s *Service) PendingApplications(ctx context.Context, page, pageSize int) (repository.Page[models.Provider], error) {
	return s.repo.PendingApplications(ctx, page, pageSize)
}

// Approve accepts a pending application: sets the commission terms, stamps
// approval and promotes the owner to the provider role.
func (s *Service) Approve(ctx context.Context, providerID uuid.UUID, req *models.ProviderApproveRequest) (models.Provider, error) {
	provider, err := s.repo.GetByID(ctx, providerID)
	if err != nil {
		return models.Provider{}, err
	}
	if provider.Status != models.ProviderStatusPendingApproval {
		return models.Provider{}, common.NewAppError(409, "provider is not awaiting approval", common.ErrInvalidTransition)
	}
	if err := validation.ValidateCommissionRate(req.CommissionRate); err != nil {
		return models.Provider{}, common.NewBadRequestError(err.Error(), err)
	}

	now := time.Now()
	extra := repository.Values{
		"commission_rate":  req.CommissionRate,
		"approved_at":      now,
		"rejection_reason": nil,
	}
	var graceEnd time.Time
	if req.GraceDays > 0 {
		graceEnd = now.AddDate(0, 0, req.GraceDays)
		extra["grace_period_until"] = graceEnd
	}

	approved, err := s.repo.UpdateStatus(ctx, providerID, models.ProviderStatusApproved, extra)
	if err != nil {
		return models.Provider{}, err
	}

	if s.roles != nil {
		if err := s.roles.SetRole(ctx, approved.OwnerProfileID, models.RoleProvider); err != nil {
			// The approval stands; the role catches up on the next admin sweep.
			logger.WarnContext(ctx, "failed to promote provider owner",
				zap.String("provider_id", providerID.String()),
				zap.Error(err),
			)
		}
	}

	s.publish(ctx, eventbus.SubjectProviderApproved, eventbus.ProviderApprovedData{
		ProviderID:     approved.ID,
		OwnerID:        approved.OwnerProfileID,
		CommissionRate: req.CommissionRate,
		GracePeriodEnd: graceEnd,
		ApprovedAt:     now,
	})
	return approved, nil
}

// Reject declines a pending application with a reason.
func (s *Service) Reject(ctx context.Context, providerID uuid.UUID, reason string) (models.Provider, error) {
	provider, err := s.repo.GetByID(ctx, providerID)
	if err != nil {
		return models.Provider{}, err
	}
	if provider.Status != models.ProviderStatusPendingApproval {
		return models.Provider{}, common.NewAppError(409, "provider is not awaiting approval", common.ErrInvalidTransition)
	}

	rejected, err := s.repo.UpdateStatus(ctx, providerID, models.ProviderStatusRejected, repository.Values{
		"rejection_reason": reason,
	})
	if err != nil {
		return models.Provider{}, err
	}

	s.publish(ctx, eventbus.SubjectProviderRejected, eventbus.ProviderRejectedData{
		ProviderID: rejected.ID,
		OwnerID:    rejected.OwnerProfileID,
		Reason:     reason,
		RejectedAt: time.Now().UTC(),
	})
	return rejected, nil
}

// Suspend takes an operational provider off the marketplace.
func (s *Service) Suspend(ctx context.Context, providerID uuid.UUID, reason string) (models.Provider, error) {
	provider, err := s.repo.GetByID(ctx, providerID)
	if err != nil {
		return models.Provider{}, err
	}
	if !provider.Status.IsOperational() {
		return models.Provider{}, common.NewAppError(409, "only operational providers can be suspended", common.ErrInvalidTransition)
	}

	suspended, err := s.repo.UpdateStatus(ctx, providerID, models.ProviderStatusSuspended, nil)
	if err != nil {
		return models.Provider{}, err
	}
	s.invalidateFeatured(ctx)

	s.publish(ctx, eventbus.SubjectProviderSuspended, eventbus.ProviderSuspendedData{
		ProviderID:  suspended.ID,
		OwnerID:     suspended.OwnerProfileID,
		Reason:      reason,
		SuspendedAt: time.Now().UTC(),
	})
	return suspended, nil
}

// Reinstate lifts a suspension back to approved.
func (s *Service) Reinstate(ctx context.Context, providerID uuid.UUID) (models.Provider, error) {
	provider, err := s.repo.GetByID(ctx, providerID)
	if err != nil {
		return models.Provider{}, err
	}
	if provider.Status != models.ProviderStatusSuspended {
		return models.Provider{}, common.NewAppError(409, "provider is not suspended", common.ErrInvalidTransition)
	}
	return s.repo.UpdateStatus(ctx, providerID, models.ProviderStatusApproved, nil)
}

// ChangeTradingStatus lets the owner toggle among the trading statuses.
func (s *Service) ChangeTradingStatus(ctx context.Context, callerID uuid.UUID, status models.ProviderStatus) (models.Provider, error) {
	provider, err := s.repo.GetByOwner(ctx, callerID)
	if err != nil {
		return models.Provider{}, err
	}
	if !provider.Status.IsOperational() {
		return models.Provider{}, common.NewAppError(409, "provider may not trade yet", common.ErrInvalidTransition)
	}
	if !status.IsOperational() || status == models.ProviderStatusApproved {
		return models.Provider{}, common.NewBadRequestError("not a trading status", nil)
	}
	return s.repo.UpdateStatus(ctx, provider.ID, status, nil)
}

// UpdateSettings applies the owner's settings edits.
func (s *Service) UpdateSettings(ctx context.Context, callerID uuid.UUID, req *models.ProviderSettingsUpdateRequest) (models.Provider, error) {
	provider, err := s.repo.GetByOwner(ctx, callerID)
	if err != nil {
		return models.Provider{}, err
	}
	if req.BusinessHours != nil {
		if err := validateBusinessHours(*req.BusinessHours); err != nil {
			return models.Provider{}, err
		}
	}
	if req.DeliveryRadiusKm != nil {
		if err := validation.ValidateDeliveryRadius(*req.DeliveryRadiusKm); err != nil {
			return models.Provider{}, common.NewBadRequestError(err.Error(), err)
		}
	}
	return s.repo.UpdateSettings(ctx, provider.ID, req)
}

// SetFeatured toggles the featured flag and drops the cached strip.
func (s *Service) SetFeatured(ctx context.Context, providerID uuid.UUID, featured bool) (models.Provider, error) {
	provider, err := s.repo.SetFeatured(ctx, providerID, featured)
	if err != nil {
		return models.Provider{}, err
	}
	s.invalidateFeatured(ctx)
	return provider, nil
}

func (s *Service) invalidateFeatured(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, limit := range []int{5, 10, 20} {
		_ = s.cache.Delete(ctx, cache.Keys.FeaturedProviders(limit))
	}
}

func validateBusinessHours(hours models.BusinessHours) error {
	for day, window := range hours {
		if window.Closed {
			continue
		}
		if err := validation.ValidateBusinessHours(window.Open, window.Close); err != nil {
			return common.NewBadRequestError("invalid hours for "+day, err)
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, subject string, data interface{}) {
	if s.bus == nil {
		return
	}
	event, err := eventbus.NewEvent(subject, s.source, data)
	if err != nil {
		logger.WarnContext(ctx, "failed to build event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
