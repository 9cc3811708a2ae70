package statement

import (
	"context"
	"testing"
	"time"

	"billing-console/internal/ledger"
	"billing-console/internal/pricing"
	"billing-console/internal/rating"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// stubRater satisfies Rater for tests that seed rated transactions directly.
type stubRater struct {
	calls int
}

func (s *stubRater) RateForPeriod(ctx context.Context, tenantID, accountID string, periodStart, periodEnd time.Time) (int, error) {
	s.calls++
	return 0, nil
}

func usdRule(id, moduleCode string, ruleType pricing.RuleType, eventType, amount string, from time.Time) pricing.Rule {
	return pricing.Rule{
		ID:              id,
		TenantID:        "t1",
		PricingModuleID: "m-" + id,
		ModuleCode:      moduleCode,
		RuleType:        ruleType,
		EventType:       eventType,
		Amount:          decimal.RequireFromString(amount),
		Currency:        "USD",
		EffectiveFrom:   from,
	}
}

func seedTxn(repo *rating.MemoryRepo, eventID, ruleID, eventType, amount string, ratedAt time.Time) {
	_, _ = repo.InsertBatch(context.Background(), []rating.RatedTransaction{{
		ID:            "txn-" + eventID,
		TenantID:      "t1",
		LedgerEventID: eventID,
		PricingRuleID: ruleID,
		EventType:     eventType,
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
		RatedAt:       ratedAt,
	}})
}

func TestGenerate_GroupsByRuleAndEventType(t *testing.T) {
	rules := pricing.NewMemoryRepo()
	rules.PutRule(usdRule("r1", "WAREHOUSE_MANAGER", pricing.RuleTypePerEvent, "ShipmentCreated", "2.00", date(2026, time.January, 1)))

	txns := rating.NewMemoryRepo()
	seedTxn(txns, "e1", "r1", "ShipmentCreated", "2.00", date(2026, time.January, 10))
	seedTxn(txns, "e2", "r1", "ShipmentCreated", "2.00", date(2026, time.January, 11))
	seedTxn(txns, "e3", "r1", "ShipmentDelivered", "2.00", date(2026, time.January, 12))

	rater := &stubRater{}
	gen := NewGenerator(rater, rules, txns, NewMemoryRepo(), nil)

	st, items, err := gen.Generate(context.Background(), "t1", "", date(2026, time.January, 1), date(2026, time.January, 31))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rater.calls != 1 {
		t.Fatalf("expected rating to run before aggregation")
	}
	if st.Status != StatusDraft {
		t.Fatalf("expected draft statement, got %s", st.Status)
	}

	// Same rule, different event types never merge.
	if len(items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(items))
	}
	first := items[0]
	if first.Quantity != 2 || !first.UnitAmount.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("unexpected first group: %+v", first)
	}
	if !first.TotalAmount.Equal(decimal.RequireFromString("4.00")) {
		t.Fatalf("expected 4.00 group total, got %s", first.TotalAmount)
	}
	if first.Description != "WAREHOUSE_MANAGER - ShipmentCreated charges" {
		t.Fatalf("unexpected description: %q", first.Description)
	}

	if !st.TotalAmount.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("expected statement total 6.00, got %s", st.TotalAmount)
	}
}

func TestGenerate_FlatRuleChargedOncePerPeriod(t *testing.T) {
	rules := pricing.NewMemoryRepo()
	rules.PutRule(usdRule("f1", "WAREHOUSE_MANAGER", pricing.RuleTypeFlat, "", "10.00", date(2026, time.January, 1)))

	gen := NewGenerator(&stubRater{}, rules, rating.NewMemoryRepo(), NewMemoryRepo(), nil)

	st, items, err := gen.Generate(context.Background(), "t1", "", date(2026, time.January, 1), date(2026, time.January, 31))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 flat line item, got %d", len(items))
	}
	it := items[0]
	if it.Quantity != 1 || !it.UnitAmount.Equal(decimal.RequireFromString("10.00")) || !it.TotalAmount.Equal(it.UnitAmount) {
		t.Fatalf("unexpected flat line item: %+v", it)
	}
	if it.Description != "WAREHOUSE_MANAGER - flat monthly charge" {
		t.Fatalf("unexpected description: %q", it.Description)
	}
	if !st.TotalAmount.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected total 10.00, got %s", st.TotalAmount)
	}

	// A period before the rule's window yields no charge.
	st2, items2, err := gen.Generate(context.Background(), "t1", "", date(2025, time.December, 1), date(2025, time.December, 31))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items2) != 0 || !st2.TotalAmount.IsZero() {
		t.Fatalf("expected empty statement outside window")
	}
}

func TestGenerate_UnknownModuleSentinel(t *testing.T) {
	txns := rating.NewMemoryRepo()
	seedTxn(txns, "e1", "ghost-rule", "ShipmentCreated", "1.00", date(2026, time.January, 10))

	gen := NewGenerator(&stubRater{}, pricing.NewMemoryRepo(), txns, NewMemoryRepo(), nil)

	_, items, err := gen.Generate(context.Background(), "t1", "", date(2026, time.January, 1), date(2026, time.January, 31))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	if items[0].Description != "UNKNOWN_MODULE - ShipmentCreated charges" {
		t.Fatalf("unexpected description: %q", items[0].Description)
	}
}

func TestGenerate_TotalMatchesLineItems(t *testing.T) {
	rules := pricing.NewMemoryRepo()
	rules.PutRule(usdRule("r1", "WAREHOUSE_MANAGER", pricing.RuleTypePerEvent, "ShipmentCreated", "2.50", date(2026, time.January, 1)))
	rules.PutRule(usdRule("f1", "TRACKING", pricing.RuleTypeFlat, "", "9.99", date(2026, time.January, 1)))

	txns := rating.NewMemoryRepo()
	seedTxn(txns, "e1", "r1", "ShipmentCreated", "2.50", date(2026, time.January, 10))
	seedTxn(txns, "e2", "r1", "ShipmentCreated", "2.50", date(2026, time.January, 20))

	repo := NewMemoryRepo()
	gen := NewGenerator(&stubRater{}, rules, txns, repo, nil)

	st, _, err := gen.Generate(context.Background(), "t1", "", date(2026, time.January, 1), date(2026, time.January, 31))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Verify against what was persisted, not just the returned values.
	got, items, err := gen.Get(context.Background(), "t1", st.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.TotalAmount)
	}
	if !got.TotalAmount.Equal(sum) {
		t.Fatalf("statement total %s != line item sum %s", got.TotalAmount, sum)
	}
	if !sum.Equal(decimal.RequireFromString("14.99")) {
		t.Fatalf("expected 14.99, got %s", sum)
	}
}

// TestGenerate_EndToEnd exercises the full pipeline with the real rating
// engine: one per-event rule, one ledger event from yesterday, one
// generated statement for the current month.
func TestGenerate_EndToEnd(t *testing.T) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	yesterday := now.AddDate(0, 0, -1)
	if yesterday.Before(monthStart) {
		// First of the month: stay inside the period.
		yesterday = monthStart
	}

	rules := pricing.NewMemoryRepo()
	rules.PutModule(pricing.Module{ID: "m1", Code: "WAREHOUSE_MANAGER"})
	rules.PutRule(pricing.Rule{
		ID:              "r1",
		TenantID:        "t1",
		PricingModuleID: "m1",
		RuleType:        pricing.RuleTypePerEvent,
		EventType:       "ShipmentCreated",
		Amount:          decimal.RequireFromString("2.00"),
		Currency:        "USD",
		EffectiveFrom:   monthStart,
	})

	events := ledger.NewMemoryRepo()
	if err := events.Insert(context.Background(), ledger.Event{
		ID:                  "e1",
		TenantID:            "t1",
		EventType:           ledger.EventTypeShipmentCreated,
		ExternalReferenceID: "ship-1",
		OccurredAt:          yesterday,
		CreatedAt:           yesterday,
	}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	txns := rating.NewMemoryRepo()
	engine := rating.NewEngine(rules, events, txns)
	gen := NewGenerator(engine, rules, txns, NewMemoryRepo(), nil)

	st, items, err := gen.Generate(context.Background(), "t1", "", monthStart, monthEnd)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected exactly 1 line item, got %d", len(items))
	}
	it := items[0]
	if it.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", it.Quantity)
	}
	if !it.UnitAmount.Equal(decimal.RequireFromString("2.00")) || !it.TotalAmount.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("unexpected amounts: unit=%s total=%s", it.UnitAmount, it.TotalAmount)
	}
	if !st.TotalAmount.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected statement total 2.00, got %s", st.TotalAmount)
	}

	// Generating again rates nothing new; the fresh statement still
	// carries a single quantity-1 line item.
	st2, items2, err := gen.Generate(context.Background(), "t1", "", monthStart, monthEnd)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(items2) != 1 || items2[0].Quantity != 1 {
		t.Fatalf("expected regeneration to see the same single rated transaction")
	}
	if !st2.TotalAmount.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected regenerated total 2.00, got %s", st2.TotalAmount)
	}
}
