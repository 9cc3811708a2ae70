package rating

import (
	"context"
	"database/sql"
	"time"

	"billing-console/pkg/utils"

	"github.com/shopspring/decimal"
)

// PostgresRepo persists rated transactions.
//
// NOTE: assumes table rated_transactions (id, tenant_id, account_id,
// ledger_event_id UNIQUE, pricing_rule_id, pricing_module_id, event_type,
// amount NUMERIC(18,4), currency, explanation, rated_at) with an
// INSERT-only policy. The unique index on ledger_event_id is the backstop
// against double-rating under concurrent runs.
type PostgresRepo struct {
	DB *sql.DB
}

func (r *PostgresRepo) RatedEventIDs(ctx context.Context, tenantID string, eventIDs []string) (map[string]struct{}, error) {
	if len(eventIDs) == 0 {
		return map[string]struct{}{}, nil
	}
	const q = `
SELECT ledger_event_id
FROM rated_transactions
WHERE tenant_id = $1 AND ledger_event_id = ANY($2)
`
	rows, err := r.DB.QueryContext(ctx, q, tenantID, eventIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func (r *PostgresRepo) InsertBatch(ctx context.Context, txns []RatedTransaction) (int, error) {
	const q = `
INSERT INTO rated_transactions (
  id, tenant_id, account_id, ledger_event_id, pricing_rule_id, pricing_module_id,
  event_type, amount, currency, explanation, rated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
ON CONFLICT (ledger_event_id) DO NOTHING
`
	created := 0
	err := utils.WithTx(ctx, r.DB, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		for _, txn := range txns {
			res, err := tx.ExecContext(ctx, q,
				txn.ID,
				txn.TenantID,
				txn.AccountID,
				txn.LedgerEventID,
				txn.PricingRuleID,
				txn.PricingModuleID,
				txn.EventType,
				txn.Amount.String(),
				txn.Currency,
				txn.Explanation,
				txn.RatedAt,
			)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			created += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (r *PostgresRepo) ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]RatedTransaction, error) {
	start := startOfDay(from)
	endExclusive := startOfDay(to).AddDate(0, 0, 1)

	q := `
SELECT id, tenant_id, account_id, ledger_event_id, pricing_rule_id, pricing_module_id,
       event_type, amount, currency, explanation, rated_at
FROM rated_transactions
WHERE tenant_id = $1 AND rated_at >= $2 AND rated_at < $3
`
	args := []any{tenantID, start, endExclusive}
	if accountID != "" {
		q += ` AND account_id = $4`
		args = append(args, accountID)
	}
	q += ` ORDER BY rated_at, id`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RatedTransaction
	for rows.Next() {
		var (
			txn    RatedTransaction
			amount string
		)
		if err := rows.Scan(
			&txn.ID,
			&txn.TenantID,
			&txn.AccountID,
			&txn.LedgerEventID,
			&txn.PricingRuleID,
			&txn.PricingModuleID,
			&txn.EventType,
			&amount,
			&txn.Currency,
			&txn.Explanation,
			&txn.RatedAt,
		); err != nil {
			return nil, err
		}
		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}
