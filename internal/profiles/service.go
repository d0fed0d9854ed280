package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/logger"
	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
	"github.com/sofraeats/marketplace/pkg/validation"
)

// Service handles profile business logic
type Service struct {
	repo   RepositoryInterface
	bus    EventPublisher
	source string
}

// NewService creates a new profiles service
func NewService(repo RepositoryInterface, source string) *Service {
	return &Service{repo: repo, source: source}
}

// SetEventPublisher wires role-change event publishing. Nil disables it.
func (s *Service) SetEventPublisher(bus EventPublisher) {
	s.bus = bus
}

// Ensure resolves an auth identity to its profile, creating one on first
// contact.
func (s *Service) Ensure(ctx context.Context, authID uuid.UUID, fullName string) (models.Profile, error) {
	return s.repo.Ensure(ctx, authID, fullName)
}

// GetProfile fetches one profile.
func (s *Service) GetProfile(ctx context.Context, profileID uuid.UUID) (models.Profile, error) {
	return s.repo.GetByID(ctx, profileID)
}

// UpdateProfile applies the caller's edits to their own profile.
func (s *Service) UpdateProfile(ctx context.Context, callerID uuid.UUID, req *models.ProfileUpdateRequest) (models.Profile, error) {
	if req.Phone != nil && !validation.ValidatePhoneNumber(*req.Phone) {
		return models.Profile{}, common.NewBadRequestError("invalid phone number", nil)
	}
	return s.repo.Update(ctx, callerID, req)
}

// ListProfiles pages through profiles. Admin surfaces only.
func (s *Service) ListProfiles(ctx context.Context, page, pageSize int, filters ListFilters) (repository.Page[models.Profile], error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// ChangeRole moves a profile to a new role. Admins cannot demote themselves;
// the platform must always keep the actor's own access intact.
func (s *Service) ChangeRole(ctx context.Context, profileID, actorID uuid.UUID, role models.ProfileRole) (models.Profile, error) {
	if profileID == actorID {
		return models.Profile{}, common.NewBadRequestError("cannot change your own role", nil)
	}
	profile, err := s.repo.GetByID(ctx, profileID)
	if err != nil {
		return models.Profile{}, err
	}
	if profile.Role == role {
		return profile, nil
	}

	updated, err := s.repo.SetRole(ctx, profileID, role)
	if err != nil {
		return models.Profile{}, err
	}

	s.publish(ctx, eventbus.SubjectProfileRoleChanged, eventbus.ProfileRoleChangedData{
		ProfileID: profileID,
		FromRole:  profile.Role,
		ToRole:    role,
		ChangedBy: actorID,
		ChangedAt: time.Now().UTC(),
	})
	return updated, nil
}

// SetRole changes a role without actor checks. Internal wiring only (provider
// approval promotes the owner through this).
func (s *Service) SetRole(ctx context.Context, profileID uuid.UUID, role models.ProfileRole) error {
	_, err := s.repo.SetRole(ctx, profileID, role)
	return err
}

// Deactivate turns a profile off. Deactivated admins lose the back-office.
func (s *Service) Deactivate(ctx context.Context, profileID, actorID uuid.UUID) (models.Profile, error) {
	if profileID == actorID {
		return models.Profile{}, common.NewBadRequestError("cannot deactivate yourself", nil)
	}
	return s.repo.SetActive(ctx, profileID, false)
}

// Reactivate turns a profile back on.
func (s *Service) Reactivate(ctx context.Context, profileID uuid.UUID) (models.Profile, error) {
	return s.repo.SetActive(ctx, profileID, true)
}

// Count counts all profiles.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// IncrementOrderCounters bumps the caller-facing aggregates after a delivery.
func (s *Service) IncrementOrderCounters(ctx context.Context, profileID uuid.UUID, amount float64) error {
	return s.repo.IncrementOrderCounters(ctx, profileID, amount)
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
