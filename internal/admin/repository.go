package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sofraeats/marketplace/pkg/models"
	"github.com/sofraeats/marketplace/pkg/repository"
)

const auditLogsTable = "audit_logs"

var auditLogCols = []string{
	"id", "actor_id", "action", "target_type", "target_id", "details", "created_at",
}

// AuditFilters are the supported audit listing predicates, compiled in a
// fixed order.
type AuditFilters struct {
	ActorID  *uuid.UUID
	Action   string
	TargetID *uuid.UUID
}

func (f AuditFilters) compile() []repository.Filter {
	var filters []repository.Filter
	if f.ActorID != nil {
		filters = append(filters, repository.Eq("actor_id", *f.ActorID))
	}
	if f.Action != "" {
		filters = append(filters, repository.Eq("action", f.Action))
	}
	if f.TargetID != nil {
		filters = append(filters, repository.Eq("target_id", *f.TargetID))
	}
	return filters
}

// AuditRepository persists the back-office audit trail.
type AuditRepository struct {
	base *repository.Base[models.AuditLog]
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{
		base: repository.New[models.AuditLog](pool, auditLogsTable, auditLogCols...),
	}
}

// Record appends one audit entry.
func (r *AuditRepository) Record(ctx context.Context, entry models.AuditLog) (models.AuditLog, error) {
	return r.base.Create(ctx, repository.Values{
		"id":          uuid.New(),
		"actor_id":    entry.ActorID,
		"action":      entry.Action,
		"target_type": entry.TargetType,
		"target_id":   entry.TargetID,
		"details":     entry.Details,
	})
}

// List pages through the audit trail, newest first.
func (r *AuditRepository) List(ctx context.Context, page, pageSize int, filters AuditFilters) (repository.Page[models.AuditLog], error) {
	return r.base.FindPaginated(ctx, page, pageSize, repository.Options{
		Filters: filters.compile(),
		Sort:    repository.Desc("created_at"),
	})
}
