package audit

import "time"

// Entry is an immutable, append-only audit log record.
//
// Invariants:
// - Entries are never updated or deleted.
// - tenant_id is required for tenancy isolation.
// - actor capture is best-effort; do not block billing flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_entries with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.

type Entry struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`

	// Type indicates the business category of the audit record.
	Type EntryType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the entry (if applicable).
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`

	// Target identifiers (optional, depending on the entry type).
	LedgerEventID      string `json:"ledger_event_id,omitempty" db:"ledger_event_id"`
	BillingStatementID string `json:"billing_statement_id,omitempty" db:"billing_statement_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EntryType string

const (
	EntryTypeEventIngested   EntryType = "ledger_event_ingested"
	EntryTypeRatingRun       EntryType = "rating_run"
	EntryTypeStatementCreate EntryType = "statement_generated"
	EntryTypeStatusChange    EntryType = "statement_status_changed"
)
