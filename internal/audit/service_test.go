package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresTenantAndType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Entry{Type: EntryTypeRatingRun}); err == nil {
		t.Fatalf("expected error")
	}
	if err := svc.Append(context.Background(), Entry{TenantID: "t1"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_AppendsImmutableEntries(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogStatusChanged(context.Background(), "t1", "u1", "st-1", "draft", "reviewed"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	entries := repo.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry")
	}
	e := entries[0]
	if e.Type != EntryTypeStatusChange {
		t.Fatalf("expected statement_status_changed")
	}
	if e.BillingStatementID != "st-1" {
		t.Fatalf("expected statement id captured")
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be filled")
	}
	if e.Message != "status draft -> reviewed" {
		t.Fatalf("unexpected message: %q", e.Message)
	}
}

func TestService_ListForTenantNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	_ = svc.LogRatingRun(context.Background(), "t1", "u1", 3)
	_ = svc.LogRatingRun(context.Background(), "t2", "u2", 1)
	_ = svc.LogEventIngested(context.Background(), "t1", "u1", "e1", "ShipmentCreated", "ship-1")

	entries, err := svc.ListForTenant(context.Background(), "t1", 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != EntryTypeEventIngested {
		t.Fatalf("expected newest entry first")
	}
}
