package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the statement lifecycle state. The state machine is ordered
// and one-directional: draft -> reviewed -> finalized.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReviewed  Status = "reviewed"
	StatusFinalized Status = "finalized"
)

// BillingStatement is a period invoice for a tenant (optionally an account).
//
// Invariants:
// - Created by the Generator with status draft.
// - TotalAmount is written once, immediately after line items are inserted.
// - Status changes only through the Lifecycle.
type BillingStatement struct {
	ID        string `json:"id" db:"id"`
	TenantID  string `json:"tenant_id" db:"tenant_id"`
	AccountID string `json:"account_id,omitempty" db:"account_id"`

	PeriodStart time.Time `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time `json:"period_end" db:"period_end"`

	Status Status `json:"status" db:"status"`

	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Currency    string          `json:"currency" db:"currency"`

	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
}

// BillingLineItem is one charge row on a statement. Owned exclusively by
// its statement (cascade delete).
type BillingLineItem struct {
	ID                 string `json:"id" db:"id"`
	BillingStatementID string `json:"billing_statement_id" db:"billing_statement_id"`

	PricingRuleID   string `json:"pricing_rule_id,omitempty" db:"pricing_rule_id"`
	PricingModuleID string `json:"pricing_module_id,omitempty" db:"pricing_module_id"`
	EventType       string `json:"event_type,omitempty" db:"event_type"`

	Description string `json:"description" db:"description"`

	Quantity    int             `json:"quantity" db:"quantity"`
	UnitAmount  decimal.Decimal `json:"unit_amount" db:"unit_amount"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Currency    string          `json:"currency" db:"currency"`
}
