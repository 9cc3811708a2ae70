package pricing

import (
	"sort"
	"time"
)

// Matching predicates are pure: no I/O, no mutation, empty input yields
// empty output, never an error. All window comparisons are by calendar
// date (UTC), not timestamp: an event occurring at any time on a rule's
// effective_to date is still in-window.

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// InEffect reports whether the rule's effective window contains the given
// date, inclusive on both ends.
func (r Rule) InEffect(date time.Time) bool {
	d := DateOf(date)
	if d.Before(DateOf(r.EffectiveFrom)) {
		return false
	}
	if r.EffectiveTo != nil && d.After(DateOf(*r.EffectiveTo)) {
		return false
	}
	return true
}

// MatchPerEvent returns the per_event rules that apply to a ledger event
// of the given type occurring at occurredAt.
//
// Result order is deterministic: most recent effective_from first, rule ID
// ascending as the final tie-break. The rating engine takes the first
// match, so when windows overlap the most recently effective rule wins.
func MatchPerEvent(eventType string, occurredAt time.Time, rules []Rule) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.RuleType != RuleTypePerEvent {
			continue
		}
		if r.EventType != eventType {
			continue
		}
		if !r.InEffect(occurredAt) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := DateOf(out[i].EffectiveFrom), DateOf(out[j].EffectiveFrom)
		if !fi.Equal(fj) {
			return fi.After(fj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MatchFlat returns the flat rules whose effective window intersects the
// statement period [periodStart, periodEnd] (dates, inclusive).
//
// No dedupe: a flat rule overlapping several statement periods is charged
// once per period, once per generation call.
func MatchFlat(rules []Rule, periodStart, periodEnd time.Time) []Rule {
	start := DateOf(periodStart)
	end := DateOf(periodEnd)

	var out []Rule
	for _, r := range rules {
		if r.RuleType != RuleTypeFlat {
			continue
		}
		if DateOf(r.EffectiveFrom).After(end) {
			continue
		}
		if r.EffectiveTo != nil && DateOf(*r.EffectiveTo).Before(start) {
			continue
		}
		out = append(out, r)
	}
	return out
}
