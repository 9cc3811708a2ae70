package tenant

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo reads tenants and accounts.
//
// NOTE: assumes tables:
// - tenants (id, name, code UNIQUE, created_at, updated_at)
// - accounts (id, tenant_id, name, code, created_at, updated_at,
//   UNIQUE (tenant_id, code))
type PostgresRepo struct {
	DB *sql.DB
}

func (r *PostgresRepo) GetTenant(ctx context.Context, id string) (Tenant, bool, error) {
	const q = `
SELECT id, name, code, created_at, updated_at
FROM tenants
WHERE id = $1
`
	var t Tenant
	err := r.DB.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Code, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tenant{}, false, nil
		}
		return Tenant{}, false, err
	}
	return t, true, nil
}

func (r *PostgresRepo) GetAccount(ctx context.Context, tenantID, id string) (Account, bool, error) {
	const q = `
SELECT id, tenant_id, name, code, created_at, updated_at
FROM accounts
WHERE tenant_id = $1 AND id = $2
`
	var a Account
	err := r.DB.QueryRowContext(ctx, q, tenantID, id).Scan(&a.ID, &a.TenantID, &a.Name, &a.Code, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, false, nil
		}
		return Account{}, false, err
	}
	return a, true, nil
}
