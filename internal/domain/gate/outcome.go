package gate

import domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"

// OutcomeKind tells the host what to do once resolution settles.
type OutcomeKind int

const (
	// Proceed renders the protected children with the resolved identity.
	Proceed OutcomeKind = iota
	// Redirect navigates to Route and renders nothing from the gated subtree.
	Redirect
	// Fail renders the error boundary for this subtree.
	Fail
	// Abandoned means the activation was torn down before resolution settled.
	// The host must neither render nor redirect.
	Abandoned
)

func (k OutcomeKind) String() string {
	switch k {
	case Proceed:
		return "proceed"
	case Redirect:
		return "redirect"
	case Fail:
		return "fail"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Outcome is the result of a gate resolution step.
type Outcome struct {
	Kind     OutcomeKind
	Identity domainauth.Identity // valid when Kind == Proceed
	Route    string              // valid when Kind == Redirect
	Err      error               // valid when Kind == Fail
}

// OutcomeFor maps a terminal state to the host instruction. Pending maps to Abandoned.
func OutcomeFor(s State, loginRoute string) Outcome {
	switch s.Status {
	case Authenticated:
		return Outcome{Kind: Proceed, Identity: *s.Identity}
	case Unauthenticated:
		return Outcome{Kind: Redirect, Route: loginRoute}
	case Failed:
		return Outcome{Kind: Fail, Err: s.Err}
	default:
		return Outcome{Kind: Abandoned}
	}
}
