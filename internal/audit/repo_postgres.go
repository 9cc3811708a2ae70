package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo persists audit entries.
//
// NOTE: assumes table audit_entries (id, tenant_id, type, actor_user_id,
// ledger_event_id, billing_statement_id, message, metadata, created_at)
// with an INSERT-only policy.
type PostgresRepo struct {
	DB *sql.DB
}

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	const q = `
INSERT INTO audit_entries (
  id, tenant_id, type, actor_user_id, ledger_event_id, billing_statement_id, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := r.DB.ExecContext(ctx, q,
		e.ID,
		e.TenantID,
		e.Type,
		e.ActorUserID,
		e.LedgerEventID,
		e.BillingStatementID,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) ListForTenant(ctx context.Context, tenantID string, limit int) ([]Entry, error) {
	const q = `
SELECT id, tenant_id, type, actor_user_id, ledger_event_id, billing_statement_id, message, metadata, created_at
FROM audit_entries
WHERE tenant_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`
	rows, err := r.DB.QueryContext(ctx, q, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.TenantID,
			&e.Type,
			&e.ActorUserID,
			&e.LedgerEventID,
			&e.BillingStatementID,
			&e.Message,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
