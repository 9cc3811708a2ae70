package statement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func seedStatement(t *testing.T, repo *MemoryRepo, status Status) BillingStatement {
	t.Helper()
	st := BillingStatement{
		ID:          "st-1",
		TenantID:    "t1",
		PeriodStart: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
		Status:      status,
		TotalAmount: decimal.RequireFromString("2.00"),
		Currency:    "USD",
	}
	if err := repo.Create(context.Background(), st, nil); err != nil {
		t.Fatalf("seed statement: %v", err)
	}
	return st
}

func TestTransition_HappyPath(t *testing.T) {
	repo := NewMemoryRepo()
	seedStatement(t, repo, StatusDraft)
	lc := NewLifecycle(repo, nil)

	st, err := lc.Transition(context.Background(), "t1", "st-1", StatusReviewed)
	if err != nil {
		t.Fatalf("draft -> reviewed: %v", err)
	}
	if st.Status != StatusReviewed {
		t.Fatalf("expected reviewed, got %s", st.Status)
	}

	st, err = lc.Transition(context.Background(), "t1", "st-1", StatusFinalized)
	if err != nil {
		t.Fatalf("reviewed -> finalized: %v", err)
	}
	if st.Status != StatusFinalized {
		t.Fatalf("expected finalized, got %s", st.Status)
	}
}

func TestTransition_SkippingReviewRejected(t *testing.T) {
	repo := NewMemoryRepo()
	seedStatement(t, repo, StatusDraft)
	lc := NewLifecycle(repo, nil)

	_, err := lc.Transition(context.Background(), "t1", "st-1", StatusFinalized)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, ok, err := repo.Get(context.Background(), "t1", "st-1")
	if err != nil || !ok {
		t.Fatalf("get after rejected transition: ok=%v err=%v", ok, err)
	}
	if got.Status != StatusDraft {
		t.Fatalf("rejected transition must not change status, got %s", got.Status)
	}
}

func TestTransition_FinalizedIsTerminal(t *testing.T) {
	repo := NewMemoryRepo()
	seedStatement(t, repo, StatusFinalized)
	lc := NewLifecycle(repo, nil)

	for _, to := range []Status{StatusDraft, StatusReviewed, StatusFinalized} {
		if _, err := lc.Transition(context.Background(), "t1", "st-1", to); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("finalized -> %s: expected ErrInvalidTransition, got %v", to, err)
		}
	}
}

func TestTransition_SameStateRejected(t *testing.T) {
	repo := NewMemoryRepo()
	seedStatement(t, repo, StatusDraft)
	lc := NewLifecycle(repo, nil)

	if _, err := lc.Transition(context.Background(), "t1", "st-1", StatusDraft); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransition_UnknownStatement(t *testing.T) {
	lc := NewLifecycle(NewMemoryRepo(), nil)

	if _, err := lc.Transition(context.Background(), "t1", "missing", StatusReviewed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusReviewed, true},
		{StatusReviewed, StatusFinalized, true},
		{StatusDraft, StatusFinalized, false},
		{StatusReviewed, StatusDraft, false},
		{StatusFinalized, StatusReviewed, false},
		{StatusDraft, StatusDraft, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
