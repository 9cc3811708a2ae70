package statement

import (
	"context"
	"database/sql"
	"errors"

	"billing-console/pkg/utils"

	"github.com/shopspring/decimal"
)

// PostgresRepo persists statements and line items.
//
// NOTE: assumes tables:
// - billing_statements (id, tenant_id, account_id, period_start DATE,
//   period_end DATE, status, total_amount NUMERIC(18,4), currency,
//   generated_at)
// - billing_line_items (id, billing_statement_id REFERENCES
//   billing_statements ON DELETE CASCADE, pricing_rule_id,
//   pricing_module_id, event_type, description, quantity, unit_amount
//   NUMERIC(18,4), total_amount NUMERIC(18,4), currency)
type PostgresRepo struct {
	DB *sql.DB
}

func (r *PostgresRepo) Create(ctx context.Context, st BillingStatement, items []BillingLineItem) error {
	return utils.WithTx(ctx, r.DB, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		// Insert with a placeholder total; the real total lands in one
		// update after all line items exist.
		const insertStatement = `
INSERT INTO billing_statements (
  id, tenant_id, account_id, period_start, period_end, status, total_amount, currency, generated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,0,$7,$8
)
`
		if _, err := tx.ExecContext(ctx, insertStatement,
			st.ID,
			st.TenantID,
			st.AccountID,
			st.PeriodStart,
			st.PeriodEnd,
			st.Status,
			st.Currency,
			st.GeneratedAt,
		); err != nil {
			return err
		}

		const insertItem = `
INSERT INTO billing_line_items (
  id, billing_statement_id, pricing_rule_id, pricing_module_id, event_type,
  description, quantity, unit_amount, total_amount, currency
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
		for _, it := range items {
			if _, err := tx.ExecContext(ctx, insertItem,
				it.ID,
				it.BillingStatementID,
				it.PricingRuleID,
				it.PricingModuleID,
				it.EventType,
				it.Description,
				it.Quantity,
				it.UnitAmount.String(),
				it.TotalAmount.String(),
				it.Currency,
			); err != nil {
				return err
			}
		}

		const updateTotal = `
UPDATE billing_statements SET total_amount = $1 WHERE id = $2
`
		_, err := tx.ExecContext(ctx, updateTotal, st.TotalAmount.String(), st.ID)
		return err
	})
}

func (r *PostgresRepo) Get(ctx context.Context, tenantID, id string) (BillingStatement, bool, error) {
	const q = `
SELECT id, tenant_id, account_id, period_start, period_end, status, total_amount, currency, generated_at
FROM billing_statements
WHERE tenant_id = $1 AND id = $2
`
	var (
		st    BillingStatement
		total string
	)
	err := r.DB.QueryRowContext(ctx, q, tenantID, id).Scan(
		&st.ID,
		&st.TenantID,
		&st.AccountID,
		&st.PeriodStart,
		&st.PeriodEnd,
		&st.Status,
		&total,
		&st.Currency,
		&st.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BillingStatement{}, false, nil
		}
		return BillingStatement{}, false, err
	}
	st.TotalAmount, err = decimal.NewFromString(total)
	if err != nil {
		return BillingStatement{}, false, err
	}
	return st, true, nil
}

func (r *PostgresRepo) ListLineItems(ctx context.Context, statementID string) ([]BillingLineItem, error) {
	const q = `
SELECT id, billing_statement_id, pricing_rule_id, pricing_module_id, event_type,
       description, quantity, unit_amount, total_amount, currency
FROM billing_line_items
WHERE billing_statement_id = $1
ORDER BY id
`
	rows, err := r.DB.QueryContext(ctx, q, statementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BillingLineItem
	for rows.Next() {
		var (
			it          BillingLineItem
			unit, total string
		)
		if err := rows.Scan(
			&it.ID,
			&it.BillingStatementID,
			&it.PricingRuleID,
			&it.PricingModuleID,
			&it.EventType,
			&it.Description,
			&it.Quantity,
			&unit,
			&total,
			&it.Currency,
		); err != nil {
			return nil, err
		}
		if it.UnitAmount, err = decimal.NewFromString(unit); err != nil {
			return nil, err
		}
		if it.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, tenantID, id string, from, to Status) error {
	const q = `
UPDATE billing_statements
SET status = $1
WHERE tenant_id = $2 AND id = $3 AND status = $4
`
	res, err := r.DB.ExecContext(ctx, q, to, tenantID, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusConflict
	}
	return nil
}
