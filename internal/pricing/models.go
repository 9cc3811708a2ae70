package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing models are tenant-scoped. Amounts are decimal values with
// currency-minor-unit precision (shopspring/decimal, never float).

// Module is a billable product/feature grouping (e.g. WAREHOUSE_MANAGER).
type Module struct {
	ID          string `json:"id" db:"id"`
	Code        string `json:"code" db:"code"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type RuleType string

const (
	// RuleTypeFlat charges once per statement period the rule's window intersects.
	RuleTypeFlat RuleType = "flat"
	// RuleTypePerEvent charges once per matching ledger event.
	RuleTypePerEvent RuleType = "per_event"
)

// Rule is a tenant-scoped pricing policy.
//
// Invariants:
// - per_event rules carry a non-empty EventType; flat rules carry none.
// - EffectiveFrom/EffectiveTo are calendar dates (UTC midnight), inclusive
//   on both ends; nil EffectiveTo means open-ended.
//
// The rating core treats rules as read-only; the admin CRUD layer owns
// their mutation.
type Rule struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`

	PricingModuleID string `json:"pricing_module_id" db:"pricing_module_id"`

	// ModuleCode is resolved via join when rules are loaded for rating and
	// statement generation. Empty when the module reference is missing.
	ModuleCode string `json:"module_code,omitempty" db:"module_code"`

	RuleType RuleType `json:"rule_type" db:"rule_type"`

	// EventType is set iff RuleType is per_event.
	EventType string `json:"event_type,omitempty" db:"event_type"`

	Amount   decimal.Decimal `json:"amount" db:"amount"`
	Currency string          `json:"currency" db:"currency"`

	// TierSchema is reserved for future usage-bracket pricing. No
	// implementation reads it.
	TierSchema string `json:"tier_schema,omitempty" db:"tier_schema"`

	EffectiveFrom time.Time  `json:"effective_from" db:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty" db:"effective_to"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UnknownModuleCode is the sentinel used in explanations and line-item
// descriptions when a rule's module reference cannot be resolved.
const UnknownModuleCode = "UNKNOWN_MODULE"

// ResolvedModuleCode returns the rule's module code or the sentinel.
func (r Rule) ResolvedModuleCode() string {
	if r.ModuleCode == "" {
		return UnknownModuleCode
	}
	return r.ModuleCode
}
