package rating

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo mirrors the Postgres repository's semantics: insert-only,
// duplicate ledger_event_id rows skipped not errored. Useful for tests.
type MemoryRepo struct {
	mu      sync.Mutex
	byEvent map[string]RatedTransaction
	order   []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byEvent: make(map[string]RatedTransaction)}
}

func (r *MemoryRepo) RatedEventIDs(ctx context.Context, tenantID string, eventIDs []string) (map[string]struct{}, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]struct{})
	for _, id := range eventIDs {
		if txn, ok := r.byEvent[id]; ok && txn.TenantID == tenantID {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (r *MemoryRepo) InsertBatch(ctx context.Context, txns []RatedTransaction) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	created := 0
	for _, txn := range txns {
		if _, ok := r.byEvent[txn.LedgerEventID]; ok {
			continue
		}
		r.byEvent[txn.LedgerEventID] = txn
		r.order = append(r.order, txn.LedgerEventID)
		created++
	}
	return created, nil
}

func (r *MemoryRepo) ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]RatedTransaction, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	start := startOfDay(from)
	endExclusive := startOfDay(to).AddDate(0, 0, 1)

	var out []RatedTransaction
	for _, id := range r.order {
		txn := r.byEvent[id]
		if txn.TenantID != tenantID {
			continue
		}
		if accountID != "" && txn.AccountID != accountID {
			continue
		}
		at := txn.RatedAt.UTC()
		if at.Before(start) || !at.Before(endExclusive) {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

// All returns every stored transaction; test helper.
func (r *MemoryRepo) All() []RatedTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RatedTransaction, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byEvent[id])
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
