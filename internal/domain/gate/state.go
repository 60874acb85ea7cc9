// Package gate models the session gate that guards every authenticated view.
//
// A gate activation starts Pending and moves exactly once to a terminal status.
// What the host renders is a pure function of the current State; the host learns
// how to proceed from the Outcome returned by the resolution step.
package gate

import (
	"fmt"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
)

// Status is the tag of a gate State.
type Status int

const (
	// Pending means session resolution is in flight. It is the initial status.
	Pending Status = iota
	// Authenticated means an identity was resolved; protected content may render.
	Authenticated
	// Unauthenticated means there is no active session; the host must redirect.
	Unauthenticated
	// Failed means the session provider failed. It is never treated as Unauthenticated.
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool { return s != Pending }

// State is an immutable snapshot of a gate activation.
type State struct {
	Status   Status
	Identity *domainauth.Identity // set only when Authenticated
	Err      error                // set only when Failed
}

// PendingState is the initial state of every activation.
func PendingState() State { return State{Status: Pending} }

// Transition computes the state that follows Pending for a resolver result.
// A non-nil err wins over a non-nil identity.
func Transition(identity *domainauth.Identity, err error) State {
	switch {
	case err != nil:
		return State{Status: Failed, Err: err}
	case identity == nil:
		return State{Status: Unauthenticated}
	default:
		id := *identity
		return State{Status: Authenticated, Identity: &id}
	}
}
