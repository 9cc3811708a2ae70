package pricing

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// PostgresRepo reads pricing rules with their module reference resolved.
//
// NOTE: assumes tables:
// - pricing_modules (id, code UNIQUE, name, description, created_at, updated_at)
// - pricing_rules (id, tenant_id, pricing_module_id, rule_type, event_type,
//   amount NUMERIC(18,4), currency, tier_schema, effective_from DATE,
//   effective_to DATE NULL, created_at, updated_at)
type PostgresRepo struct {
	DB *sql.DB
}

func (r *PostgresRepo) ListRules(ctx context.Context, tenantID string) ([]Rule, error) {
	const q = `
SELECT pr.id, pr.tenant_id, pr.pricing_module_id, COALESCE(pm.code, ''),
       pr.rule_type, COALESCE(pr.event_type, ''), pr.amount, pr.currency,
       COALESCE(pr.tier_schema, ''), pr.effective_from, pr.effective_to,
       pr.created_at, pr.updated_at
FROM pricing_rules pr
LEFT JOIN pricing_modules pm ON pm.id = pr.pricing_module_id
WHERE pr.tenant_id = $1
ORDER BY pr.effective_from DESC, pr.id
`
	rows, err := r.DB.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		var (
			rule   Rule
			amount string
			to     sql.NullTime
		)
		if err := rows.Scan(
			&rule.ID,
			&rule.TenantID,
			&rule.PricingModuleID,
			&rule.ModuleCode,
			&rule.RuleType,
			&rule.EventType,
			&amount,
			&rule.Currency,
			&rule.TierSchema,
			&rule.EffectiveFrom,
			&to,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rule.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		if to.Valid {
			t := to.Time.UTC()
			rule.EffectiveTo = &t
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}
