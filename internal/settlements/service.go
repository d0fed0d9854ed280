package settlements

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/logger"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

// SettlementDetail is a settlement with its payout attempts.
type SettlementDetail struct {
	models.Settlement
	Payouts []models.Payout `json:"payouts"`
}

// payoutTransitions is the legal (from, to) table for payout statuses.
var payoutTransitions = map[models.PayoutStatus][]models.PayoutStatus{
	models.PayoutStatusPending:    {models.PayoutStatusProcessing, models.PayoutStatusCompleted, models.PayoutStatusFailed},
	models.PayoutStatusProcessing: {models.PayoutStatusCompleted, models.PayoutStatusFailed},
	models.PayoutStatusCompleted:  {},
	models.PayoutStatusFailed:     {},
}

func canTransitionPayout(from, to models.PayoutStatus) bool {
	for _, allowed := range payoutTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Service handles settlement business logic. Settlement amounts are computed
// by the database; this layer reads, displays and records payouts.
type Service struct {
	repo      RepositoryInterface
	providers ProviderReader
	bus       EventPublisher
	source    string
}

// NewService creates a new settlements service
func NewService(repo RepositoryInterface, providers ProviderReader, source string) *Service {
	return &Service{repo: repo, providers: providers, source: source}
}

// SetEventPublisher wires payout event publishing. Nil disables it.
func (s *Service) SetEventPublisher(bus EventPublisher) {
	s.bus = bus
}

// ListSettlements pages through settlements without scoping. Admin surfaces
// only.
func (s *Service) ListSettlements(ctx context.Context, page, pageSize int, filters ListFilters) (repository.Page[models.Settlement], error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// ListMySettlements pages through the caller's own provider's settlements.
func (s *Service) ListMySettlements(ctx context.Context, callerID uuid.UUID, page, pageSize int, filters ListFilters) (repository.Page[models.Settlement], error) {
	provider, err := s.providers.GetByOwner(ctx, callerID)
	if err != nil {
		return repository.Page[models.Settlement]{}, err
	}
	filters.ProviderID = &provider.ID
	return s.repo.List(ctx, page, pageSize, filters)
}

// GetDetail fetches a settlement with its payout history. The caller must be
// an admin or the provider's owner.
func (s *Service) GetDetail(ctx context.Context, settlementID, callerID uuid.UUID, role models.ProfileRole) (SettlementDetail, error) {
	settlement, err := s.repo.GetByID(ctx, settlementID)
	if err != nil {
		return SettlementDetail{}, err
	}
	if role != models.RoleAdmin {
		provider, err := s.providers.GetByID(ctx, settlement.ProviderID)
		if err != nil {
			return SettlementDetail{}, err
		}
		if provider.OwnerProfileID != callerID {
			return SettlementDetail{}, common.NewForbiddenError("not your settlement")
		}
	}
	payouts, err := s.repo.PayoutsForSettlement(ctx, settlementID)
	if err != nil {
		return SettlementDetail{}, err
	}
	return SettlementDetail{Settlement: settlement, Payouts: payouts}, nil
}

// CommissionSummary assembles the commission view for a provider over
// [from, to). A zero range defaults to the last 30 days.
func (s *Service) CommissionSummary(ctx context.Context, providerID uuid.UUID, from, to time.Time) (models.CommissionSummary, error) {
	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return models.CommissionSummary{}, err
	}
	if from.IsZero() && to.IsZero() {
		to = time.Now()
		from = to.AddDate(0, 0, -30)
	}

	gross, commission, err := s.repo.PeriodTotals(ctx, providerID, from, to)
	if err != nil {
		return models.CommissionSummary{}, err
	}

	now := time.Now()
	inGrace := provider.GracePeriodUntil != nil && now.Before(*provider.GracePeriodUntil)
	effective := provider.CommissionRate
	if inGrace {
		effective = 0
	}

	// The stored totals are canonical; the local formula only cross-checks.
	expected := math.Round(provider.CommissionRate*gross*100) / 100
	if !inGrace && gross > 0 && math.Abs(expected-commission) > 0.01 {
		logger.WarnContext(ctx, "settlement commission disagrees with local formula",
			zap.String("provider_id", providerID.String()),
			zap.Float64("stored", commission),
			zap.Float64("computed", expected),
		)
	}

	return models.CommissionSummary{
		ProviderID:       providerID,
		CommissionRate:   provider.CommissionRate,
		EffectiveRate:    effective,
		InGracePeriod:    inGrace,
		GracePeriodEnds:  provider.GracePeriodUntil,
		PeriodGross:      gross,
		PeriodCommission: commission,
	}, nil
}

// MyCommissionSummary assembles the commission view for the caller's own
// provider.
func (s *Service) MyCommissionSummary(ctx context.Context, callerID uuid.UUID, from, to time.Time) (models.CommissionSummary, error) {
	provider, err := s.providers.GetByOwner(ctx, callerID)
	if err != nil {
		return models.CommissionSummary{}, err
	}
	return s.CommissionSummary(ctx, provider.ID, from, to)
}

// RecordPayout opens a payout attempt against an unpaid settlement.
func (s *Service) RecordPayout(ctx context.Context, req *models.PayoutCreateRequest) (models.Payout, error) {
	settlement, err := s.repo.GetByID(ctx, req.SettlementID)
	if err != nil {
		return models.Payout{}, err
	}
	if settlement.Status == models.SettlementStatusPaid {
		return models.Payout{}, common.NewConflictError("settlement is already paid")
	}

	existing, err := s.repo.PayoutsForSettlement(ctx, req.SettlementID)
	if err != nil {
		return models.Payout{}, err
	}
	for _, payout := range existing {
		if payout.Status == models.PayoutStatusPending || payout.Status == models.PayoutStatusProcessing {
			return models.Payout{}, common.NewConflictError("a payout is already in flight for this settlement")
		}
	}

	return s.repo.CreatePayout(ctx, settlement, req.Method, req.Reference)
}

// CompletePayout marks a payout as completed, stamps it and settles the
// underlying settlement.
func (s *Service) CompletePayout(ctx context.Context, payoutID uuid.UUID, reference *string) (models.Payout, error) {
	payout, err := s.repo.GetPayout(ctx, payoutID)
	if err != nil {
		return models.Payout{}, err
	}
	if !canTransitionPayout(payout.Status, models.PayoutStatusCompleted) {
		return models.Payout{}, common.NewAppError(409, "payout can no longer be completed", common.ErrInvalidTransition)
	}

	now := time.Now()
	extra := repository.Values{"paid_at": now}
	if reference != nil {
		extra["reference"] = *reference
	}
	completed, err := s.repo.UpdatePayoutStatus(ctx, payoutID, models.PayoutStatusCompleted, extra)
	if err != nil {
		return models.Payout{}, err
	}

	if _, err := s.repo.MarkPaid(ctx, completed.SettlementID); err != nil {
		// The payout record stands; the settlement flag catches up manually.
		logger.WarnContext(ctx, "failed to mark settlement paid",
			zap.String("settlement_id", completed.SettlementID.String()),
			zap.Error(err),
		)
	}

	s.publish(ctx, eventbus.SubjectPayoutCompleted, eventbus.PayoutCompletedData{
		PayoutID:     completed.ID,
		SettlementID: completed.SettlementID,
		ProviderID:   completed.ProviderID,
		Amount:       completed.Amount,
		Reference:    stringOrEmpty(completed.Reference),
		CompletedAt:  now.UTC(),
	})
	return completed, nil
}

// StartPayout moves a pending payout into processing.
func (s *Service) StartPayout(ctx context.Context, payoutID uuid.UUID) (models.Payout, error) {
	payout, err := s.repo.GetPayout(ctx, payoutID)
	if err != nil {
		return models.Payout{}, err
	}
	if !canTransitionPayout(payout.Status, models.PayoutStatusProcessing) {
		return models.Payout{}, common.NewAppError(409, "payout is not pending", common.ErrInvalidTransition)
	}
	return s.repo.UpdatePayoutStatus(ctx, payoutID, models.PayoutStatusProcessing, nil)
}

// FailPayout marks a payout as failed with a note. A fresh attempt can then
// be recorded.
func (s *Service) FailPayout(ctx context.Context, payoutID uuid.UUID, note string) (models.Payout, error) {
	payout, err := s.repo.GetPayout(ctx, payoutID)
	if err != nil {
		return models.Payout{}, err
	}
	if !canTransitionPayout(payout.Status, models.PayoutStatusFailed) {
		return models.Payout{}, common.NewAppError(409, "payout can no longer fail", common.ErrInvalidTransition)
	}
	return s.repo.UpdatePayoutStatus(ctx, payoutID, models.PayoutStatusFailed, repository.Values{
		"failure_note": note,
	})
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

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
