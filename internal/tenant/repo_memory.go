package tenant

import (
	"context"
	"sync"
)

// Repository abstracts tenant/account persistence.
// The billing core only ever reads these records; provisioning belongs to
// the admin layer.
type Repository interface {
	GetTenant(ctx context.Context, id string) (Tenant, bool, error)
	GetAccount(ctx context.Context, tenantID, id string) (Account, bool, error)
}

// MemoryRepo is a simple in-memory repository useful for tests and early development.
type MemoryRepo struct {
	mu       sync.Mutex
	tenants  map[string]Tenant
	accounts map[string]Account
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		tenants:  make(map[string]Tenant),
		accounts: make(map[string]Account),
	}
}

func (r *MemoryRepo) PutTenant(t Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[t.ID] = t
}

func (r *MemoryRepo) PutAccount(a Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = a
}

func (r *MemoryRepo) GetTenant(ctx context.Context, id string) (Tenant, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	return t, ok, nil
}

func (r *MemoryRepo) GetAccount(ctx context.Context, tenantID, id string) (Account, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.TenantID != tenantID {
		return Account{}, false, nil
	}
	return a, true, nil
}
