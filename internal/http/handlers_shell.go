package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/domain/gate"
	"github.com/piragi/knowledge-shell/internal/domain/nav"
	"github.com/piragi/knowledge-shell/internal/http/ui/shell"
	"github.com/piragi/knowledge-shell/internal/service"
	g "maragu.dev/gomponents"
)

// Gate starts session gate activations.
type Gate interface {
	Activate(credential string) *service.Activation
}

// ShellHandlers serves the application shell: full pages carrying the
// placeholder, the gated fragment that replaces it, and the navigation API.
type ShellHandlers struct {
	Gate        Gate
	Nav         nav.Model
	Credentials CredentialSource
	// LogoutRoute is the sign-out form action. Empty hides the control.
	LogoutRoute string
	Logger      *slog.Logger
}

func (h *ShellHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Page renders the layout for a navigation route. It needs no session: the
// protected region is the placeholder, which fetches the gated fragment on load.
func (h *ShellHandlers) Page(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	trail, ok := h.Nav.Trail(path)
	if !ok {
		notFound(w, r)
		return
	}
	renderNode(w, r, http.StatusOK, shell.Page(shell.PageProps{
		Title: trail[len(trail)-1],
		Body:  shell.Placeholder(path),
	}))
}

// Fragment runs one gate activation for the page named by ?path= and writes the
// result: sidebar and content, a single login redirect, or the error boundary.
// GET /shell/fragment?path=<route>.
func (h *ShellHandlers) Fragment(w http.ResponseWriter, r *http.Request) {
	path := safeRedirectPath(r.URL.Query().Get("path"))
	trail, ok := h.Nav.Trail(path)
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "unknown_route", Err: errUnknownRoute})
		return
	}

	act := h.Gate.Activate(h.Credentials.From(r))
	defer act.Teardown()

	out := act.Resolve(r.Context())
	switch out.Kind {
	case gate.Redirect:
		redirectToLogin(w, r, out.Route, path)
		return
	case gate.Abandoned:
		h.logger().DebugContext(r.Context(), "shell fragment abandoned", "path", path, "error", out.Err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	renderNode(w, r, http.StatusOK, shell.Gate(act.State(), path, h.children(r, path, trail)))
}

func (h *ShellHandlers) children(r *http.Request, path string, trail []string) shell.Children {
	return func(identity domainauth.Identity) g.Node {
		sidebar := service.Compose(h.Nav, identity).WithActivePath(path)
		return shell.Authenticated(
			shell.Sidebar(shell.SidebarProps{
				Sidebar:      sidebar,
				LogoutAction: h.LogoutRoute,
				CSRFToken:    CSRFToken(r),
			}),
			shell.ContentFrame(shell.ContentProps{Path: path, Trail: trail}),
		)
	}
}

type brandResponse struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	URL     string `json:"url"`
}

type navigationResponse struct {
	Version int                    `json:"version"`
	Brand   brandResponse          `json:"brand"`
	Groups  []service.SidebarGroup `json:"groups"`
	User    service.SidebarUser    `json:"user"`
}

// Navigation returns the composed sidebar for the identity RequireIdentity stored.
// GET /api/navigation?path=<optional active route>.
func (h *ShellHandlers) Navigation(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errAuthRequired})
		return
	}
	sidebar := service.Compose(h.Nav, identity)
	if path := r.URL.Query().Get("path"); path != "" {
		sidebar = sidebar.WithActivePath(path)
	}
	WriteJSON(w, http.StatusOK, navigationResponse{
		Version: h.Nav.Version(),
		Brand:   brandResponse{Name: service.BrandName, Tagline: service.BrandTagline, URL: service.BrandTarget},
		Groups:  sidebar.Groups,
		User:    sidebar.User,
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errNotFound})
		return
	}
	renderNode(w, r, http.StatusNotFound, shell.Page(shell.PageProps{
		Title: "Not found",
		Body:  shell.NotFound(r.URL.Path),
	}))
}
