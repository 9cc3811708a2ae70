package reporting

import (
	"context"
	"errors"
	"time"

	"billing-console/internal/rating"
	"billing-console/internal/statement"

	"github.com/shopspring/decimal"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Methods must enforce tenant filtering.
// - Implementations should query immutable sources when possible (rated
//   transactions, statements, audit).

type Repository interface {
	ListRatedTransactions(ctx context.Context, tenantID string, from, to time.Time, accountID string) ([]rating.RatedTransaction, error)
	ListStatements(ctx context.Context, tenantID string, from, to time.Time) ([]statement.BillingStatement, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) RatedSpend(ctx context.Context, req RatedSpendRequest) (RatedSpendSummary, error) {
	if req.TenantID == "" {
		return RatedSpendSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return RatedSpendSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return RatedSpendSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListRatedTransactions(ctx, req.TenantID, req.Range.From, req.Range.To, req.AccountID)
	if err != nil {
		return RatedSpendSummary{}, err
	}

	out := RatedSpendSummary{
		TenantID:    req.TenantID,
		AccountID:   req.AccountID,
		TotalAmount: decimal.Zero,
	}
	index := make(map[string]int)
	for _, txn := range rows {
		out.TotalTransactions++
		out.TotalAmount = out.TotalAmount.Add(txn.Amount)
		if out.Currency == "" {
			out.Currency = txn.Currency
		}

		i, ok := index[txn.EventType]
		if !ok {
			i = len(out.ByEventType)
			index[txn.EventType] = i
			out.ByEventType = append(out.ByEventType, EventTypeSpend{
				EventType: txn.EventType,
				Amount:    decimal.Zero,
			})
		}
		out.ByEventType[i].Count++
		out.ByEventType[i].Amount = out.ByEventType[i].Amount.Add(txn.Amount)
	}
	if out.Currency == "" {
		out.Currency = "USD"
	}
	return out, nil
}

func (s *Service) StatementSummary(ctx context.Context, req StatementSummaryRequest) (StatementSummary, error) {
	if req.TenantID == "" {
		return StatementSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return StatementSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return StatementSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListStatements(ctx, req.TenantID, req.Range.From, req.Range.To)
	if err != nil {
		return StatementSummary{}, err
	}

	out := StatementSummary{TenantID: req.TenantID, FinalizedAmount: decimal.Zero}
	for _, st := range rows {
		out.TotalStatements++
		if out.Currency == "" {
			out.Currency = st.Currency
		}
		switch st.Status {
		case statement.StatusDraft:
			out.DraftCount++
		case statement.StatusReviewed:
			out.ReviewedCount++
		case statement.StatusFinalized:
			out.FinalizedCount++
			out.FinalizedAmount = out.FinalizedAmount.Add(st.TotalAmount)
		}
	}
	if out.Currency == "" {
		out.Currency = "USD"
	}
	return out, nil
}
