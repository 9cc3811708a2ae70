package tenant

import "time"

// Tenant is the top-level billing boundary. Every ledger event, pricing
// rule, rated transaction and statement is owned by exactly one tenant.
type Tenant struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Account is an optional narrower billing scope under a tenant.
// Records that carry an empty account_id are tenant-wide.
type Account struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	Name     string `json:"name" db:"name"`
	Code     string `json:"code" db:"code"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
