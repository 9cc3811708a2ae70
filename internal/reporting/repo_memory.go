package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"billing-console/internal/rating"
	"billing-console/internal/statement"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early development.
// It enforces tenant isolation on reads.

type MemoryRepo struct {
	mu sync.Mutex

	Transactions []rating.RatedTransaction
	Statements   []statement.BillingStatement
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListRatedTransactions(ctx context.Context, tenantID string, from, to time.Time, accountID string) ([]rating.RatedTransaction, error) {
	if tenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]rating.RatedTransaction, 0)
	for _, txn := range r.Transactions {
		if txn.TenantID != tenantID {
			continue
		}
		if !txn.RatedAt.IsZero() {
			if txn.RatedAt.Before(from) || !txn.RatedAt.Before(to) {
				continue
			}
		}
		if accountID != "" && txn.AccountID != accountID {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

func (r *MemoryRepo) ListStatements(ctx context.Context, tenantID string, from, to time.Time) ([]statement.BillingStatement, error) {
	if tenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]statement.BillingStatement, 0)
	for _, st := range r.Statements {
		if st.TenantID != tenantID {
			continue
		}
		if !st.GeneratedAt.IsZero() {
			if st.GeneratedAt.Before(from) || !st.GeneratedAt.Before(to) {
				continue
			}
		}
		out = append(out, st)
	}
	return out, nil
}
