package auth

import (
	"context"

	"github.com/taskcur/taskcur/internal/model"
)

// DenyReason says why the guard refused an operation.
type DenyReason string

const (
	// DenyNotAuthenticated means the caller has no identity at all.
	DenyNotAuthenticated DenyReason = "not_authenticated"

	// DenyNotOwner means the caller is authenticated but is not the
	// owner of the target resource.
	DenyNotOwner DenyReason = "not_owner"
)

// Decision is the guard's verdict on one (caller, target) pair.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny refuses with the given reason.
func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// TaskGetter resolves a task so the guard can learn its owner. The
// task ledger satisfies this.
type TaskGetter interface {
	Get(ctx context.Context, id int64) (model.Task, error)
}

// Guard authorizes operations. It holds no session state; every
// decision is a pure function of the caller identity and the target.
type Guard struct {
	tasks TaskGetter
}

// NewGuard creates a Guard that resolves task owners through tasks.
func NewGuard(tasks TaskGetter) *Guard {
	return &Guard{tasks: tasks}
}

// AuthorizeUserAction allows the operation iff the authenticated
// caller is the target user. There is no admin override.
func (g *Guard) AuthorizeUserAction(caller, targetUser string) Decision {
	if caller == "" {
		return Deny(DenyNotAuthenticated)
	}
	if caller != targetUser {
		return Deny(DenyNotOwner)
	}
	return Allow()
}

// AuthorizeTaskAction resolves the task's owner and allows the
// operation iff the caller owns it. An unknown task id propagates the
// store's not-found error, which is distinct from a deny for logging;
// the HTTP layer maps both onto the same non-leaking redirect.
func (g *Guard) AuthorizeTaskAction(ctx context.Context, caller string, taskID int64) (Decision, error) {
	if caller == "" {
		return Deny(DenyNotAuthenticated), nil
	}
	t, err := g.tasks.Get(ctx, taskID)
	if err != nil {
		return Decision{}, err
	}
	if t.Owner != caller {
		return Deny(DenyNotOwner), nil
	}
	return Allow(), nil
}
