package rating

import (
	"time"

	"github.com/shopspring/decimal"
)

// RatedTransaction is the priced outcome of exactly one ledger event.
//
// Invariants:
// - Created only by the Engine; never updated.
// - ledger_event_id is unique: at most one rated transaction per event,
//   even under concurrent rating runs.
type RatedTransaction struct {
	ID        string `json:"id" db:"id"`
	TenantID  string `json:"tenant_id" db:"tenant_id"`
	AccountID string `json:"account_id,omitempty" db:"account_id"`

	LedgerEventID   string `json:"ledger_event_id" db:"ledger_event_id"`
	PricingRuleID   string `json:"pricing_rule_id" db:"pricing_rule_id"`
	PricingModuleID string `json:"pricing_module_id" db:"pricing_module_id"`

	EventType string `json:"event_type" db:"event_type"`

	Amount   decimal.Decimal `json:"amount" db:"amount"`
	Currency string          `json:"currency" db:"currency"`

	// Explanation is a human-readable audit string recording why this
	// charge exists.
	Explanation string `json:"explanation" db:"explanation"`

	RatedAt time.Time `json:"rated_at" db:"rated_at"`
}
