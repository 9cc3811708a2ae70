package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit entries.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Entry) error
	ListForTenant(ctx context.Context, tenantID string, limit int) ([]Entry, error)
}

// Service records internal audit information for the billing pipeline.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEntry = errors.New("audit: invalid entry")

func (s *Service) Append(ctx context.Context, e Entry) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.TenantID == "" {
		return ErrInvalidEntry
	}
	if e.Type == "" {
		return ErrInvalidEntry
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogEventIngested records a new ledger event accepted into the log.
func (s *Service) LogEventIngested(ctx context.Context, tenantID, actorUserID, eventID string, eventType, externalRef string) error {
	return s.Append(ctx, Entry{
		TenantID:      tenantID,
		Type:          EntryTypeEventIngested,
		ActorUserID:   actorUserID,
		LedgerEventID: eventID,
		Message:       fmt.Sprintf("ingested %s event (ref %s)", eventType, externalRef),
	})
}

// LogRatingRun records the outcome of a rating pass over a period.
func (s *Service) LogRatingRun(ctx context.Context, tenantID, actorUserID string, created int) error {
	return s.Append(ctx, Entry{
		TenantID:    tenantID,
		Type:        EntryTypeRatingRun,
		ActorUserID: actorUserID,
		Message:     fmt.Sprintf("rating run created %d transactions", created),
	})
}

// LogStatementGenerated records a freshly generated draft statement.
func (s *Service) LogStatementGenerated(ctx context.Context, tenantID, actorUserID, statementID string, total string) error {
	return s.Append(ctx, Entry{
		TenantID:           tenantID,
		Type:               EntryTypeStatementCreate,
		ActorUserID:        actorUserID,
		BillingStatementID: statementID,
		Message:            fmt.Sprintf("generated draft statement, total %s", total),
	})
}

// LogStatusChanged records a statement lifecycle transition.
func (s *Service) LogStatusChanged(ctx context.Context, tenantID, actorUserID, statementID string, from, to string) error {
	return s.Append(ctx, Entry{
		TenantID:           tenantID,
		Type:               EntryTypeStatusChange,
		ActorUserID:        actorUserID,
		BillingStatementID: statementID,
		Message:            fmt.Sprintf("status %s -> %s", from, to),
	})
}

// ListForTenant returns the most recent audit entries for a tenant.
func (s *Service) ListForTenant(ctx context.Context, tenantID string, limit int) ([]Entry, error) {
	if tenantID == "" {
		return nil, ErrInvalidEntry
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListForTenant(ctx, tenantID, limit)
}
