package statement

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests.
type MemoryRepo struct {
	mu         sync.Mutex
	statements map[string]BillingStatement
	items      map[string][]BillingLineItem // by statement id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		statements: make(map[string]BillingStatement),
		items:      make(map[string][]BillingLineItem),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, st BillingStatement, items []BillingLineItem) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements[st.ID] = st
	r.items[st.ID] = append([]BillingLineItem(nil), items...)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, tenantID, id string) (BillingStatement, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.statements[id]
	if !ok || st.TenantID != tenantID {
		return BillingStatement{}, false, nil
	}
	return st, true, nil
}

func (r *MemoryRepo) ListLineItems(ctx context.Context, statementID string) ([]BillingLineItem, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BillingLineItem(nil), r.items[statementID]...), nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, tenantID, id string, from, to Status) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.statements[id]
	if !ok || st.TenantID != tenantID {
		return ErrNotFound
	}
	if st.Status != from {
		return ErrStatusConflict
	}
	st.Status = to
	r.statements[id] = st
	return nil
}
