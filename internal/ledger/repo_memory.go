package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory append-only repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) FindByExternalRef(ctx context.Context, tenantID, accountID, externalRef string) (Event, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.TenantID == tenantID && e.AccountID == accountID && e.ExternalReferenceID == externalRef {
			return e, true, nil
		}
	}
	return Event{}, false, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, e Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *MemoryRepo) ListForPeriod(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]Event, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	start := startOfDay(from)
	endExclusive := startOfDay(to).AddDate(0, 0, 1)

	var out []Event
	for _, e := range r.events {
		if e.TenantID != tenantID {
			continue
		}
		if accountID != "" && e.AccountID != accountID {
			continue
		}
		at := e.OccurredAt.UTC()
		if at.Before(start) || !at.Before(endExclusive) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
