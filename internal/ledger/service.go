package ledger

import (
	"context"
	"errors"
	"time"

	"billing-console/internal/tenant"
	"billing-console/pkg/utils"

	"github.com/google/uuid"
)

// Repository is the persistence contract for ledger events.
//
// It MUST be append-only: no Update/Delete methods are provided.
type Repository interface {
	// FindByExternalRef looks up an event by its ingestion idempotency key.
	// accountID empty matches only tenant-wide (empty-account) events.
	FindByExternalRef(ctx context.Context, tenantID, accountID, externalRef string) (Event, bool, error)

	Insert(ctx context.Context, e Event) error

	// ListForPeriod returns events whose occurred_at falls on the calendar
	// days [from, to] inclusive. accountID empty returns all events for the
	// tenant; non-empty narrows to that account.
	ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]Event, error)
}

// Auditor is the audit collaborator invoked directly after ingestion.
// The source system dispatched a domain event here; one consumer means a
// plain call is enough.
type Auditor interface {
	LogEventIngested(ctx context.Context, tenantID, actorUserID, eventID string, eventType, externalRef string) error
}

var (
	ErrInvalidEvent = errors.New("ledger: invalid event")
	ErrUnknownScope = errors.New("ledger: unknown tenant or account")
)

// Service ingests ledger events for the billing core.
//
// Contract:
// - Validation rejects unknown event types and disallowed metadata keys
//   before anything is persisted.
// - Duplicate external references return the existing event, never an error.
// - The rating core trusts occurred_at, event_type and scoping as given.
type Service struct {
	repo    Repository
	auditor Auditor
	tenants tenant.Repository
	clock   func() time.Time
}

func NewService(repo Repository, auditor Auditor) *Service {
	return &Service{repo: repo, auditor: auditor, clock: time.Now}
}

// WithTenantRegistry makes ingestion reject events for tenants or accounts
// the registry does not know. Without a registry the scope is trusted.
func (s *Service) WithTenantRegistry(tenants tenant.Repository) *Service {
	s.tenants = tenants
	return s
}

type IngestRequest struct {
	TenantID  string `json:"tenant_id"`
	AccountID string `json:"account_id,omitempty"`
	ProgramID string `json:"program_id,omitempty"`

	EventType           EventType         `json:"event_type"`
	ExternalReferenceID string            `json:"external_reference_id"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	OccurredAt          time.Time         `json:"occurred_at"`

	// ActorUserID is recorded on the audit trail, not on the event itself.
	ActorUserID string `json:"-"`
}

// Ingest validates and persists a ledger event. The second return value is
// false when an event with the same external reference already existed.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (Event, bool, error) {
	if s.repo == nil {
		return Event{}, false, errors.New("ledger: repository not configured")
	}
	if req.TenantID == "" || req.ExternalReferenceID == "" {
		return Event{}, false, ErrInvalidEvent
	}
	if !IsKnownEventType(req.EventType) {
		return Event{}, false, ErrInvalidEvent
	}
	for k := range req.Metadata {
		if !AllowedMetadataKey(k) {
			return Event{}, false, ErrInvalidEvent
		}
	}
	if req.OccurredAt.IsZero() {
		return Event{}, false, ErrInvalidEvent
	}

	if s.tenants != nil {
		if _, ok, err := s.tenants.GetTenant(ctx, req.TenantID); err != nil {
			return Event{}, false, err
		} else if !ok {
			return Event{}, false, ErrUnknownScope
		}
		if req.AccountID != "" {
			if _, ok, err := s.tenants.GetAccount(ctx, req.TenantID, req.AccountID); err != nil {
				return Event{}, false, err
			} else if !ok {
				return Event{}, false, ErrUnknownScope
			}
		}
	}

	// Conflict path: same external reference returns the existing record.
	if existing, ok, err := s.repo.FindByExternalRef(ctx, req.TenantID, req.AccountID, req.ExternalReferenceID); err != nil {
		return Event{}, false, err
	} else if ok {
		return existing, false, nil
	}

	now := s.clock().UTC()
	e := Event{
		ID:                  uuid.NewString(),
		TenantID:            req.TenantID,
		AccountID:           req.AccountID,
		ProgramID:           req.ProgramID,
		EventType:           req.EventType,
		ExternalReferenceID: req.ExternalReferenceID,
		Metadata:            req.Metadata,
		OccurredAt:          req.OccurredAt.UTC(),
		CreatedAt:           now,
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		// Lost a race against a concurrent ingest of the same reference:
		// the unique index fired after our existence check passed. Return
		// the winner's event, same as the ordinary duplicate path.
		if utils.IsUniqueViolation(err) {
			if existing, ok, ferr := s.repo.FindByExternalRef(ctx, req.TenantID, req.AccountID, req.ExternalReferenceID); ferr == nil && ok {
				return existing, false, nil
			}
		}
		return Event{}, false, err
	}

	if s.auditor != nil {
		// Audit is best-effort; ingestion must not fail on audit errors.
		_ = s.auditor.LogEventIngested(ctx, e.TenantID, req.ActorUserID, e.ID, string(e.EventType), e.ExternalReferenceID)
	}
	return e, true, nil
}

// ListForPeriod exposes the repository read used by the rating engine.
func (s *Service) ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]Event, error) {
	if tenantID == "" {
		return nil, ErrInvalidEvent
	}
	return s.repo.ListForPeriod(ctx, tenantID, accountID, from, to)
}
