package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// RatedSpendRequest requests aggregated spend derived from immutable rated
// transactions. Tenant isolation: TenantID is required.

type RatedSpendRequest struct {
	TenantID  string    `json:"tenant_id"`
	Range     TimeRange `json:"range"`
	AccountID string    `json:"account_id,omitempty"`
}

type RatedSpendSummary struct {
	TenantID  string `json:"tenant_id"`
	AccountID string `json:"account_id,omitempty"`
	Currency  string `json:"currency"`

	TotalTransactions int             `json:"total_transactions"`
	TotalAmount       decimal.Decimal `json:"total_amount"`

	ByEventType []EventTypeSpend `json:"by_event_type"`
}

// EventTypeSpend is one row of the per-event-type breakdown, ordered by
// first appearance in the rated transaction stream.
type EventTypeSpend struct {
	EventType string          `json:"event_type"`
	Count     int             `json:"count"`
	Amount    decimal.Decimal `json:"amount"`
}

// StatementSummaryRequest requests statement lifecycle counts for a period.

type StatementSummaryRequest struct {
	TenantID string    `json:"tenant_id"`
	Range    TimeRange `json:"range"`
}

type StatementSummary struct {
	TenantID string `json:"tenant_id"`

	TotalStatements int `json:"total_statements"`
	DraftCount      int `json:"draft_count"`
	ReviewedCount   int `json:"reviewed_count"`
	FinalizedCount  int `json:"finalized_count"`

	// FinalizedAmount sums totals of finalized statements only; drafts and
	// reviewed statements may still change meaningfully via regeneration.
	FinalizedAmount decimal.Decimal `json:"finalized_amount"`
	Currency        string          `json:"currency"`
}
