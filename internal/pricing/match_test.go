package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func perEventRule(id, eventType string, from time.Time, to *time.Time) Rule {
	return Rule{
		ID:            id,
		TenantID:      "t1",
		RuleType:      RuleTypePerEvent,
		EventType:     eventType,
		Amount:        decimal.RequireFromString("2.00"),
		Currency:      "USD",
		EffectiveFrom: from,
		EffectiveTo:   to,
	}
}

func TestMatchPerEvent_WindowBoundaryInclusive(t *testing.T) {
	to := date(2026, time.January, 15)
	rules := []Rule{perEventRule("r1", "ShipmentCreated", date(2026, time.January, 1), &to)}

	// Any time of day on effective_to is still in-window.
	lastDay := time.Date(2026, time.January, 15, 23, 45, 0, 0, time.UTC)
	if got := MatchPerEvent("ShipmentCreated", lastDay, rules); len(got) != 1 {
		t.Fatalf("expected match on effective_to day, got %d", len(got))
	}

	dayAfter := time.Date(2026, time.January, 16, 0, 0, 1, 0, time.UTC)
	if got := MatchPerEvent("ShipmentCreated", dayAfter, rules); len(got) != 0 {
		t.Fatalf("expected no match after effective_to, got %d", len(got))
	}

	dayBefore := time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC)
	if got := MatchPerEvent("ShipmentCreated", dayBefore, rules); len(got) != 0 {
		t.Fatalf("expected no match before effective_from, got %d", len(got))
	}
}

func TestMatchPerEvent_FiltersTypeAndRuleType(t *testing.T) {
	rules := []Rule{
		perEventRule("r1", "ShipmentCreated", date(2026, time.January, 1), nil),
		perEventRule("r2", "OrderCreated", date(2026, time.January, 1), nil),
		{ID: "r3", RuleType: RuleTypeFlat, EffectiveFrom: date(2026, time.January, 1)},
	}

	got := MatchPerEvent("ShipmentCreated", date(2026, time.January, 10), rules)
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("expected only r1, got %+v", got)
	}
}

func TestMatchPerEvent_TieBreakMostRecentEffectiveFrom(t *testing.T) {
	rules := []Rule{
		perEventRule("b", "ShipmentCreated", date(2026, time.January, 1), nil),
		perEventRule("a", "ShipmentCreated", date(2026, time.February, 1), nil),
		perEventRule("c", "ShipmentCreated", date(2026, time.February, 1), nil),
	}

	got := MatchPerEvent("ShipmentCreated", date(2026, time.March, 1), rules)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	// Most recent effective_from first; rule ID breaks the remaining tie.
	if got[0].ID != "a" || got[1].ID != "c" || got[2].ID != "b" {
		t.Fatalf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestMatchPerEvent_EmptyInput(t *testing.T) {
	if got := MatchPerEvent("ShipmentCreated", date(2026, time.January, 1), nil); len(got) != 0 {
		t.Fatalf("expected empty output")
	}
}

func TestMatchFlat_PeriodIntersection(t *testing.T) {
	open := Rule{
		ID:            "f1",
		RuleType:      RuleTypeFlat,
		EffectiveFrom: date(2026, time.January, 1),
	}

	got := MatchFlat([]Rule{open}, date(2026, time.January, 1), date(2026, time.January, 31))
	if len(got) != 1 {
		t.Fatalf("expected open-ended flat rule included, got %d", len(got))
	}

	got = MatchFlat([]Rule{open}, date(2025, time.December, 1), date(2025, time.December, 31))
	if len(got) != 0 {
		t.Fatalf("expected flat rule excluded before effective_from, got %d", len(got))
	}
}

func TestMatchFlat_ExpiredRuleExcluded(t *testing.T) {
	to := date(2026, time.January, 31)
	expired := Rule{
		ID:            "f2",
		RuleType:      RuleTypeFlat,
		EffectiveFrom: date(2025, time.June, 1),
		EffectiveTo:   &to,
	}

	// effective_to inside the period: still intersects.
	if got := MatchFlat([]Rule{expired}, date(2026, time.January, 15), date(2026, time.February, 15)); len(got) != 1 {
		t.Fatalf("expected intersecting rule included")
	}
	// effective_to before the period: excluded.
	if got := MatchFlat([]Rule{expired}, date(2026, time.February, 1), date(2026, time.February, 28)); len(got) != 0 {
		t.Fatalf("expected expired rule excluded")
	}
}

func TestResolvedModuleCode_Sentinel(t *testing.T) {
	r := Rule{}
	if r.ResolvedModuleCode() != UnknownModuleCode {
		t.Fatalf("expected sentinel for missing module")
	}
	r.ModuleCode = "WAREHOUSE_MANAGER"
	if r.ResolvedModuleCode() != "WAREHOUSE_MANAGER" {
		t.Fatalf("expected module code passthrough")
	}
}
