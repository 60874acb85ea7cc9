package shell

import (
	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/domain/gate"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Children renders the protected subtree for a resolved identity.
type Children func(identity domainauth.Identity) g.Node

// Gate renders a gate activation for the page at path. It depends only on the
// state: the placeholder while Pending, the children once Authenticated, nothing
// when Unauthenticated (the host redirects instead) and the error boundary when
// the provider failed.
func Gate(state gate.State, path string, children Children) g.Node {
	switch state.Status {
	case gate.Pending:
		return Placeholder(path)
	case gate.Authenticated:
		return children(*state.Identity)
	case gate.Failed:
		return ErrorBoundary(path)
	default:
		return nil
	}
}

// ErrorBoundary replaces the placeholder when the session provider failed. The
// retry control re-issues the fragment request for the same page.
func ErrorBoundary(path string) g.Node {
	return html.Div(
		html.ID(RootID),
		html.Class("shell shell-error"),
		g.Attr("role", "alert"),
		html.Div(
			html.Class("error-boundary"),
			html.H2(g.Text("We couldn't check your session")),
			html.P(
				html.Class("muted"),
				g.Text("The sign-in service did not respond. Your session may still be valid."),
			),
			html.Button(
				html.Type("button"),
				html.Class("button"),
				g.Attr("hx-get", FragmentURL(path)),
				g.Attr("hx-target", "#"+RootID),
				g.Attr("hx-swap", "outerHTML"),
				g.Text("Try again"),
			),
		),
	)
}

// SignedOut is the public page shown after logout.
func SignedOut(loginURL string) g.Node {
	return html.Div(
		html.Class("signed-out"),
		html.H1(g.Text("You have been signed out")),
		html.P(html.Class("muted"), g.Text("Sign in again to return to your knowledge base.")),
		html.A(html.Href(loginURL), html.Class("button"), g.Text("Sign in")),
	)
}
