package reporting

import (
	"context"
	"database/sql"
	"time"

	"billing-console/internal/rating"
	"billing-console/internal/statement"

	"github.com/shopspring/decimal"
)

// PostgresRepo reads reporting data from the billing tables. Read-only:
// reporting never writes.
//
// NOTE: assumes the rated_transactions and billing_statements tables
// described in internal/rating and internal/statement.
type PostgresRepo struct {
	DB *sql.DB
}

func (r *PostgresRepo) ListRatedTransactions(ctx context.Context, tenantID string, from, to time.Time, accountID string) ([]rating.RatedTransaction, error) {
	q := `
SELECT id, tenant_id, account_id, ledger_event_id, pricing_rule_id, pricing_module_id,
       event_type, amount, currency, explanation, rated_at
FROM rated_transactions
WHERE tenant_id = $1 AND rated_at >= $2 AND rated_at < $3
`
	args := []any{tenantID, from, to}
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

	var out []rating.RatedTransaction
	for rows.Next() {
		var (
			txn    rating.RatedTransaction
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

func (r *PostgresRepo) ListStatements(ctx context.Context, tenantID string, from, to time.Time) ([]statement.BillingStatement, error) {
	const q = `
SELECT id, tenant_id, account_id, period_start, period_end, status, total_amount, currency, generated_at
FROM billing_statements
WHERE tenant_id = $1 AND generated_at >= $2 AND generated_at < $3
ORDER BY generated_at, id
`
	rows, err := r.DB.QueryContext(ctx, q, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []statement.BillingStatement
	for rows.Next() {
		var (
			st    statement.BillingStatement
			total string
		)
		if err := rows.Scan(
			&st.ID,
			&st.TenantID,
			&st.AccountID,
			&st.PeriodStart,
			&st.PeriodEnd,
			&st.Status,
			&total,
			&st.Currency,
			&st.GeneratedAt,
		); err != nil {
			return nil, err
		}
		st.TotalAmount, err = decimal.NewFromString(total)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
