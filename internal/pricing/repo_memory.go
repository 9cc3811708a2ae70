package pricing

import (
	"context"
	"sync"
)

// Repository abstracts pricing persistence.
// Pricing rules are tenant-wide: rating never narrows them to an account.
type Repository interface {
	// ListRules returns every rule for the tenant with ModuleCode resolved
	// where the module reference exists.
	ListRules(ctx context.Context, tenantID string) ([]Rule, error)
}

// MemoryRepo is a simple in-memory repository useful for tests and early development.
type MemoryRepo struct {
	mu      sync.Mutex
	rules   []Rule
	modules map[string]Module // by id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{modules: make(map[string]Module)}
}

func (r *MemoryRepo) PutModule(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[m.ID] = m
}

func (r *MemoryRepo) PutRule(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
}

func (r *MemoryRepo) ListRules(ctx context.Context, tenantID string) ([]Rule, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Rule
	for _, rule := range r.rules {
		if rule.TenantID != tenantID {
			continue
		}
		if rule.ModuleCode == "" {
			if m, ok := r.modules[rule.PricingModuleID]; ok {
				rule.ModuleCode = m.Code
			}
		}
		out = append(out, rule)
	}
	return out, nil
}
