package service

import "github.com/saa-academy/portal/internal/core/domain"

// Decision is the outcome of a route guard evaluation.
type Decision int

const (
	// DecisionChecking means the session has not settled yet.
	DecisionChecking Decision = iota
	DecisionAllow
	DecisionDeny
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	default:
		return "checking"
	}
}

// Decide evaluates req against sess. No role is looked at until the session
// has settled.
func Decide(sess domain.Session, req domain.Requirement) Decision {
	if !sess.Settled() {
		return DecisionChecking
	}
	if sess.State != domain.StateAuthenticated || !sess.Identity.Complete() {
		return DecisionDeny
	}
	if !req.Allows(sess.Identity.Role) {
		return DecisionDeny
	}
	return DecisionAllow
}
