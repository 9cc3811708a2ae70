package statement

import (
	"context"
	"fmt"
	"time"

	"billing-console/internal/auth"
	"billing-console/internal/pricing"
	"billing-console/internal/rating"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the persistence contract for statements and line items.
type Repository interface {
	// Create persists a statement with its line items atomically.
	// Implementations insert the statement with a zero total, insert the
	// items, then apply the final total in a single update before commit:
	// a statement is never visible with some of its items or a stale total.
	Create(ctx context.Context, st BillingStatement, items []BillingLineItem) error

	Get(ctx context.Context, tenantID, id string) (BillingStatement, bool, error)
	ListLineItems(ctx context.Context, statementID string) ([]BillingLineItem, error)

	// UpdateStatus applies from -> to conditionally; ErrStatusConflict when
	// the statement no longer carries the expected status.
	UpdateStatus(ctx context.Context, tenantID, id string, from, to Status) error
}

// Rater runs the rating engine ahead of aggregation.
type Rater interface {
	RateForPeriod(ctx context.Context, tenantID, accountID string, periodStart, periodEnd time.Time) (int, error)
}

// TransactionSource reads rated transactions for aggregation.
type TransactionSource interface {
	ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]rating.RatedTransaction, error)
}

// Auditor records statement activity; best-effort, never blocks generation.
type Auditor interface {
	LogStatementGenerated(ctx context.Context, tenantID, actorUserID, statementID string, total string) error
	LogStatusChanged(ctx context.Context, tenantID, actorUserID, statementID string, from, to string) error
}

const statementCurrency = "USD"

// Generator orchestrates rating for a period, then aggregates rated
// transactions and flat charges into a draft statement.
//
// Contract:
// - Rating always runs first, synchronously: the caller sees every ratable
//   event as of the moment generation started.
// - Transactions group by (pricing_rule_id, event_type); one line item per
//   group. Flat rules matching the period add one line item each.
// - TotalAmount equals the sum of the line items' totals, always.
type Generator struct {
	rater Rater
	rules pricing.Repository
	txns  TransactionSource
	repo  Repository

	auditor Auditor
	clock   func() time.Time
}

func NewGenerator(rater Rater, rules pricing.Repository, txns TransactionSource, repo Repository, auditor Auditor) *Generator {
	return &Generator{
		rater:   rater,
		rules:   rules,
		txns:    txns,
		repo:    repo,
		auditor: auditor,
		clock:   time.Now,
	}
}

// Generate produces a persisted draft statement for the tenant/account and
// period, with its line items.
func (g *Generator) Generate(ctx context.Context, tenantID, accountID string, periodStart, periodEnd time.Time) (BillingStatement, []BillingLineItem, error) {
	if tenantID == "" {
		return BillingStatement{}, nil, rating.ErrInvalidPeriod
	}
	if periodStart.IsZero() || periodEnd.IsZero() || pricing.DateOf(periodEnd).Before(pricing.DateOf(periodStart)) {
		return BillingStatement{}, nil, rating.ErrInvalidPeriod
	}

	// Step 1: rate first so aggregation sees every ratable event.
	if _, err := g.rater.RateForPeriod(ctx, tenantID, accountID, periodStart, periodEnd); err != nil {
		return BillingStatement{}, nil, err
	}

	rules, err := g.rules.ListRules(ctx, tenantID)
	if err != nil {
		return BillingStatement{}, nil, err
	}
	rulesByID := make(map[string]pricing.Rule, len(rules))
	for _, r := range rules {
		rulesByID[r.ID] = r
	}

	txns, err := g.txns.ListForPeriod(ctx, tenantID, accountID, periodStart, periodEnd)
	if err != nil {
		return BillingStatement{}, nil, err
	}

	now := g.clock().UTC()
	st := BillingStatement{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		AccountID:   accountID,
		PeriodStart: pricing.DateOf(periodStart),
		PeriodEnd:   pricing.DateOf(periodEnd),
		Status:      StatusDraft,
		TotalAmount: decimal.Zero,
		Currency:    statementCurrency,
		GeneratedAt: now,
	}

	items := g.usageLineItems(st.ID, txns, rulesByID)
	items = append(items, g.flatLineItems(st.ID, rules, periodStart, periodEnd)...)

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalAmount)
	}
	st.TotalAmount = total

	if err := g.repo.Create(ctx, st, items); err != nil {
		return BillingStatement{}, nil, err
	}

	if g.auditor != nil {
		actor, _ := actorFromContext(ctx)
		_ = g.auditor.LogStatementGenerated(ctx, tenantID, actor, st.ID, total.StringFixed(2))
	}
	return st, items, nil
}

type lineGroup struct {
	ruleID    string
	eventType string
	count     int
	unit      decimal.Decimal
	currency  string
	moduleID  string
}

// usageLineItems groups rated transactions by (pricing_rule_id, event_type).
// Transactions from the same rule but different event types never merge;
// in practice per-event rules pin the event type, so the key collapses to
// the rule.
func (g *Generator) usageLineItems(statementID string, txns []rating.RatedTransaction, rulesByID map[string]pricing.Rule) []BillingLineItem {
	var order []string
	groups := make(map[string]*lineGroup)

	for _, txn := range txns {
		key := txn.PricingRuleID + "\x00" + txn.EventType
		grp, ok := groups[key]
		if !ok {
			grp = &lineGroup{
				ruleID:    txn.PricingRuleID,
				eventType: txn.EventType,
				unit:      txn.Amount,
				currency:  txn.Currency,
				moduleID:  txn.PricingModuleID,
			}
			groups[key] = grp
			order = append(order, key)
		}
		grp.count++
	}

	items := make([]BillingLineItem, 0, len(order))
	for _, key := range order {
		grp := groups[key]

		moduleCode := pricing.UnknownModuleCode
		if rule, ok := rulesByID[grp.ruleID]; ok {
			moduleCode = rule.ResolvedModuleCode()
		}
		eventType := grp.eventType
		if eventType == "" {
			eventType = "Event"
		}

		qty := decimal.NewFromInt(int64(grp.count))
		items = append(items, BillingLineItem{
			ID:                 uuid.NewString(),
			BillingStatementID: statementID,
			PricingRuleID:      grp.ruleID,
			PricingModuleID:    grp.moduleID,
			EventType:          grp.eventType,
			Description:        fmt.Sprintf("%s - %s charges", moduleCode, eventType),
			Quantity:           grp.count,
			UnitAmount:         grp.unit,
			TotalAmount:        grp.unit.Mul(qty),
			Currency:           grp.currency,
		})
	}
	return items
}

func (g *Generator) flatLineItems(statementID string, rules []pricing.Rule, periodStart, periodEnd time.Time) []BillingLineItem {
	flat := pricing.MatchFlat(rules, periodStart, periodEnd)

	items := make([]BillingLineItem, 0, len(flat))
	for _, rule := range flat {
		items = append(items, BillingLineItem{
			ID:                 uuid.NewString(),
			BillingStatementID: statementID,
			PricingRuleID:      rule.ID,
			PricingModuleID:    rule.PricingModuleID,
			Description:        fmt.Sprintf("%s - flat monthly charge", rule.ResolvedModuleCode()),
			Quantity:           1,
			UnitAmount:         rule.Amount,
			TotalAmount:        rule.Amount,
			Currency:           rule.Currency,
		})
	}
	return items
}

// Get returns a statement with its line items.
func (g *Generator) Get(ctx context.Context, tenantID, id string) (BillingStatement, []BillingLineItem, error) {
	st, ok, err := g.repo.Get(ctx, tenantID, id)
	if err != nil {
		return BillingStatement{}, nil, err
	}
	if !ok {
		return BillingStatement{}, nil, ErrNotFound
	}
	items, err := g.repo.ListLineItems(ctx, st.ID)
	if err != nil {
		return BillingStatement{}, nil, err
	}
	return st, items, nil
}

func actorFromContext(ctx context.Context) (string, error) {
	return auth.UserID(ctx)
}
