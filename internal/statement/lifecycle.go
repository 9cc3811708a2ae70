package statement

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("statement: not found")
	ErrInvalidTransition = errors.New("statement: invalid transition")
	ErrStatusConflict    = errors.New("statement: concurrent status change")
)

// allowedTransitions is the full one-directional state machine. Anything
// absent here, including same-state "transitions", is rejected.
var allowedTransitions = map[Status]Status{
	StatusDraft:    StatusReviewed,
	StatusReviewed: StatusFinalized,
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	return ok && next == to
}

// Lifecycle enforces the statement status state machine. A transition is
// a single attribute update with no side effects beyond the audit record.
type Lifecycle struct {
	repo    Repository
	auditor Auditor
}

func NewLifecycle(repo Repository, auditor Auditor) *Lifecycle {
	return &Lifecycle{repo: repo, auditor: auditor}
}

// Transition moves a statement to the requested status. An illegal request
// returns ErrInvalidTransition and leaves the statement unmodified.
func (l *Lifecycle) Transition(ctx context.Context, tenantID, statementID string, to Status) (BillingStatement, error) {
	if tenantID == "" || statementID == "" {
		return BillingStatement{}, ErrNotFound
	}

	st, ok, err := l.repo.Get(ctx, tenantID, statementID)
	if err != nil {
		return BillingStatement{}, err
	}
	if !ok {
		return BillingStatement{}, ErrNotFound
	}

	if !CanTransition(st.Status, to) {
		return BillingStatement{}, ErrInvalidTransition
	}

	// Conditional update: a concurrent transition loses here rather than
	// silently double-applying.
	if err := l.repo.UpdateStatus(ctx, tenantID, statementID, st.Status, to); err != nil {
		return BillingStatement{}, err
	}

	from := st.Status
	st.Status = to

	if l.auditor != nil {
		actor, _ := actorFromContext(ctx)
		_ = l.auditor.LogStatusChanged(ctx, tenantID, actor, statementID, string(from), string(to))
	}
	return st, nil
}
