package reporting

import (
	"context"
	"testing"
	"time"

	"billing-console/internal/rating"
	"billing-console/internal/statement"

	"github.com/shopspring/decimal"
)

func TestReporting_TenantIsolation(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Transactions = []rating.RatedTransaction{
		{ID: "x1", TenantID: "t1", EventType: "ShipmentCreated", Amount: decimal.RequireFromString("2.00"), Currency: "USD", RatedAt: now},
		{ID: "x2", TenantID: "t2", EventType: "ShipmentCreated", Amount: decimal.RequireFromString("5.00"), Currency: "USD", RatedAt: now},
	}
	svc := NewService(repo)

	out, err := svc.RatedSpend(context.Background(), RatedSpendRequest{TenantID: "t1", Range: TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalTransactions != 1 {
		t.Fatalf("expected 1 transaction, got %d", out.TotalTransactions)
	}
	if !out.TotalAmount.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected total 2.00, got %s", out.TotalAmount)
	}
}

func TestReporting_RatedSpendBreakdown(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Transactions = []rating.RatedTransaction{
		{ID: "x1", TenantID: "t1", EventType: "ShipmentCreated", Amount: decimal.RequireFromString("2.00"), Currency: "USD", RatedAt: now},
		{ID: "x2", TenantID: "t1", EventType: "PickCompleted", Amount: decimal.RequireFromString("0.10"), Currency: "USD", RatedAt: now},
		{ID: "x3", TenantID: "t1", EventType: "ShipmentCreated", Amount: decimal.RequireFromString("2.00"), Currency: "USD", RatedAt: now},
	}
	svc := NewService(repo)

	out, err := svc.RatedSpend(context.Background(), RatedSpendRequest{TenantID: "t1", Range: TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalTransactions != 3 {
		t.Fatalf("expected 3 transactions, got %d", out.TotalTransactions)
	}
	if !out.TotalAmount.Equal(decimal.RequireFromString("4.10")) {
		t.Fatalf("expected total 4.10, got %s", out.TotalAmount)
	}
	if len(out.ByEventType) != 2 {
		t.Fatalf("expected 2 breakdown rows, got %d", len(out.ByEventType))
	}
	first := out.ByEventType[0]
	if first.EventType != "ShipmentCreated" || first.Count != 2 || !first.Amount.Equal(decimal.RequireFromString("4.00")) {
		t.Fatalf("unexpected breakdown row: %+v", first)
	}
}

func TestReporting_StatementSummaryCounts(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Statements = []statement.BillingStatement{
		{ID: "s1", TenantID: "t1", Status: statement.StatusDraft, TotalAmount: decimal.RequireFromString("10.00"), Currency: "USD", GeneratedAt: now},
		{ID: "s2", TenantID: "t1", Status: statement.StatusFinalized, TotalAmount: decimal.RequireFromString("20.00"), Currency: "USD", GeneratedAt: now},
		{ID: "s3", TenantID: "t1", Status: statement.StatusFinalized, TotalAmount: decimal.RequireFromString("5.50"), Currency: "USD", GeneratedAt: now},
		{ID: "s4", TenantID: "t2", Status: statement.StatusReviewed, TotalAmount: decimal.RequireFromString("99.00"), Currency: "USD", GeneratedAt: now},
	}
	svc := NewService(repo)

	out, err := svc.StatementSummary(context.Background(), StatementSummaryRequest{TenantID: "t1", Range: TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalStatements != 3 || out.DraftCount != 1 || out.FinalizedCount != 2 {
		t.Fatalf("unexpected counts: %+v", out)
	}
	if !out.FinalizedAmount.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected finalized amount 25.50, got %s", out.FinalizedAmount)
	}
}

func TestReporting_RejectsInvalidRange(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	now := time.Unix(1700000000, 0).UTC()

	if _, err := svc.RatedSpend(context.Background(), RatedSpendRequest{TenantID: "t1", Range: TimeRange{From: now, To: now}}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.StatementSummary(context.Background(), StatementSummaryRequest{Range: TimeRange{From: now, To: now.Add(time.Hour)}}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
