package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PostgresRepo persists ledger events.
//
// NOTE: assumes table ledger_events (id, tenant_id, account_id, program_id,
// event_type, external_reference_id, metadata JSONB, occurred_at, created_at)
// with an INSERT-only policy and the uniqueness index:
//
//	CREATE UNIQUE INDEX ledger_events_external_ref_key
//	ON ledger_events (tenant_id, COALESCE(account_id, ''), external_reference_id);
//
// account_id is stored as '' for tenant-wide events, matching the service's
// empty-string convention.
type PostgresRepo struct {
	DB *sql.DB
}

func (r *PostgresRepo) FindByExternalRef(ctx context.Context, tenantID, accountID, externalRef string) (Event, bool, error) {
	const q = `
SELECT id, tenant_id, account_id, program_id, event_type, external_reference_id, metadata, occurred_at, created_at
FROM ledger_events
WHERE tenant_id = $1 AND account_id = $2 AND external_reference_id = $3
LIMIT 1
`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, q, tenantID, accountID, externalRef))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, false, nil
		}
		return Event{}, false, err
	}
	return e, true, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, e Event) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO ledger_events (
  id, tenant_id, account_id, program_id, event_type, external_reference_id, metadata, occurred_at, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err = r.DB.ExecContext(ctx, q,
		e.ID,
		e.TenantID,
		e.AccountID,
		e.ProgramID,
		e.EventType,
		e.ExternalReferenceID,
		meta,
		e.OccurredAt,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]Event, error) {
	start := startOfDay(from)
	endExclusive := startOfDay(to).AddDate(0, 0, 1)

	q := `
SELECT id, tenant_id, account_id, program_id, event_type, external_reference_id, metadata, occurred_at, created_at
FROM ledger_events
WHERE tenant_id = $1 AND occurred_at >= $2 AND occurred_at < $3
`
	args := []any{tenantID, start, endExclusive}
	if accountID != "" {
		q += ` AND account_id = $4`
		args = append(args, accountID)
	}
	q += ` ORDER BY occurred_at, id`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (Event, error) {
	var (
		e    Event
		meta []byte
	)
	if err := s.Scan(
		&e.ID,
		&e.TenantID,
		&e.AccountID,
		&e.ProgramID,
		&e.EventType,
		&e.ExternalReferenceID,
		&meta,
		&e.OccurredAt,
		&e.CreatedAt,
	); err != nil {
		return Event{}, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &e.Metadata); err != nil {
			return Event{}, err
		}
	}
	return e, nil
}
