package rating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-console/internal/ledger"
	"billing-console/internal/pricing"

	"github.com/google/uuid"
)

// Repository is the persistence contract for rated transactions.
type Repository interface {
	// RatedEventIDs returns which of the given ledger event IDs already
	// have a rated transaction.
	RatedEventIDs(ctx context.Context, tenantID string, eventIDs []string) (map[string]struct{}, error)

	// InsertBatch persists the batch atomically and returns the number of
	// rows actually created. A transaction whose ledger_event_id already
	// exists is silently skipped (lost race against a concurrent run);
	// any other failure aborts the whole batch.
	InsertBatch(ctx context.Context, txns []RatedTransaction) (int, error)

	// ListForPeriod returns rated transactions whose rated_at falls on the
	// calendar days [from, to] inclusive. accountID empty returns all for
	// the tenant.
	ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]RatedTransaction, error)
}

// EventSource supplies the ledger events to rate.
type EventSource interface {
	ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]ledger.Event, error)
}

var ErrInvalidPeriod = errors.New("rating: invalid period")

// Engine matches unrated ledger events to pricing rules and records the
// resulting charges.
//
// Contract:
// - At most one rated transaction per ledger event.
// - Idempotent: repeated calls for the same tenant/account/period create
//   nothing new and return 0.
// - Events with no matching rule are skipped silently; they are priced on
//   a later run only if a matching rule appears by then.
// - The whole batch persists atomically or not at all.
type Engine struct {
	rules  pricing.Repository
	events EventSource
	repo   Repository
	clock  func() time.Time
}

func NewEngine(rules pricing.Repository, events EventSource, repo Repository) *Engine {
	return &Engine{rules: rules, events: events, repo: repo, clock: time.Now}
}

// RateForPeriod rates every unrated event for the tenant (optionally
// narrowed to an account) in [periodStart, periodEnd] and returns the
// count of transactions created by this invocation.
func (e *Engine) RateForPeriod(ctx context.Context, tenantID, accountID string, periodStart, periodEnd time.Time) (int, error) {
	if tenantID == "" {
		return 0, ErrInvalidPeriod
	}
	if periodStart.IsZero() || periodEnd.IsZero() || pricing.DateOf(periodEnd).Before(pricing.DateOf(periodStart)) {
		return 0, ErrInvalidPeriod
	}

	// Pricing rules are tenant-wide; never account-scoped.
	rules, err := e.rules.ListRules(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	events, err := e.events.ListForPeriod(ctx, tenantID, accountID, periodStart, periodEnd)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	eventIDs := make([]string, 0, len(events))
	for _, ev := range events {
		eventIDs = append(eventIDs, ev.ID)
	}
	alreadyRated, err := e.repo.RatedEventIDs(ctx, tenantID, eventIDs)
	if err != nil {
		return 0, err
	}

	now := e.clock().UTC()
	var batch []RatedTransaction
	for _, ev := range events {
		if _, ok := alreadyRated[ev.ID]; ok {
			continue
		}
		matches := pricing.MatchPerEvent(string(ev.EventType), ev.OccurredAt, rules)
		if len(matches) == 0 {
			// No rule prices this event; skip without error.
			continue
		}
		rule := matches[0]
		batch = append(batch, RatedTransaction{
			ID:              uuid.NewString(),
			TenantID:        tenantID,
			AccountID:       ev.AccountID,
			LedgerEventID:   ev.ID,
			PricingRuleID:   rule.ID,
			PricingModuleID: rule.PricingModuleID,
			EventType:       string(ev.EventType),
			Amount:          rule.Amount,
			Currency:        rule.Currency,
			Explanation:     explain(rule, ev),
			RatedAt:         now,
		})
	}
	if len(batch) == 0 {
		return 0, nil
	}

	return e.repo.InsertBatch(ctx, batch)
}

// ListForPeriod exposes the rated transactions read used by the statement
// generator and reporting.
func (e *Engine) ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]RatedTransaction, error) {
	if tenantID == "" {
		return nil, ErrInvalidPeriod
	}
	return e.repo.ListForPeriod(ctx, tenantID, accountID, from, to)
}

func explain(rule pricing.Rule, ev ledger.Event) string {
	return fmt.Sprintf("Matched %s rule for module %s: %s %s for event %s",
		rule.RuleType,
		rule.ResolvedModuleCode(),
		rule.Amount.StringFixed(2),
		rule.Currency,
		ev.EventType,
	)
}
