package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/http/ui/shell"
	"github.com/piragi/knowledge-shell/internal/ports"
	"github.com/piragi/knowledge-shell/internal/service"
)

// SignedOutRoute is the public page shown after logout.
const SignedOutRoute = "/auth/signed-out"

// AuthService is the login flow used by the OIDC and dev modes.
type AuthService interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers serves the /auth routes.
type AuthHandlers struct {
	// Svc runs the server-side login flow. It is nil when an external provider
	// (Supabase) owns login; ExternalLoginURL is used instead.
	Svc              AuthService
	Resolver         ports.SessionResolver
	Credentials      CredentialSource
	Cookies          CookieSettings
	LoginRoute       string
	ExternalLoginURL string
	Logger           *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) loginRoute() string {
	if h.LoginRoute == "" {
		return service.DefaultLoginRoute
	}
	return h.LoginRoute
}

func (h *AuthHandlers) sessionCookieName() string {
	if h.Credentials.CookieName == "" {
		return DefaultSessionCookieName
	}
	return h.Credentials.CookieName
}

// Login starts the login flow.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	if h.Svc == nil {
		h.externalLogin(w, r, redirectURI)
		return
	}

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("unable to start login"),
		})
		return
	}

	h.Cookies.set(w, r, oauthStateCookie, result.State, loginFlowMaxAge)
	h.Cookies.set(w, r, oauthNonceCookie, result.Nonce, loginFlowMaxAge)
	h.Cookies.set(w, r, postLoginRedirectCookie, redirectURI, loginFlowMaxAge)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// externalLogin hands the visitor to the provider-hosted login page, passing the
// return path along as redirect_uri.
func (h *AuthHandlers) externalLogin(w http.ResponseWriter, r *http.Request, redirectURI string) {
	if h.ExternalLoginURL == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "login_unavailable",
			Err:     errors.New("login is not configured"),
		})
		return
	}
	u, err := url.Parse(h.ExternalLoginURL)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "invalid external login url", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	q := u.Query()
	q.Set("redirect_uri", redirectURI)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// Callback completes the login flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		http.NotFound(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	switch {
	case code == "":
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_code", Err: errors.New("authorization code is required")})
		return
	case state == "":
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_state", Err: errors.New("state parameter is required")})
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state", Err: errors.New("invalid or missing state parameter")})
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_nonce", Err: errors.New("missing nonce parameter")})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "complete login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     errors.New("unable to complete login"),
		})
		return
	}

	h.Cookies.set(w, r, h.sessionCookieName(), result.Session.ID, time.Until(result.Session.ExpiresAt))
	h.Cookies.clear(w, r, oauthStateCookie)
	h.Cookies.clear(w, r, oauthNonceCookie)

	redirectURI := "/"
	if ck, err := r.Cookie(postLoginRedirectCookie); err == nil {
		redirectURI = safeRedirectPath(ck.Value)
		h.Cookies.clear(w, r, postLoginRedirectCookie)
	}
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout ends the session and sends the visitor to the signed-out page.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	name := h.sessionCookieName()
	if ck, err := r.Cookie(name); err == nil && h.Svc != nil {
		if logoutErr := h.Svc.Logout(r.Context(), ck.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.Cookies.clear(w, r, name)

	redirectURI := r.FormValue("redirect_uri")
	signedOut := url.URL{Path: SignedOutRoute, RawQuery: url.Values{"redirect_uri": {safeRedirectPath(redirectURI)}}.Encode()}
	target := signedOut.String()

	switch {
	case IsHTMX(r):
		SetHXRedirect(w, target)
		w.WriteHeader(http.StatusOK)
	case wantsJSON(r):
		WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "redirect_to": target})
	default:
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// SignedOut renders the public signed-out page.
// GET /auth/signed-out?redirect_uri=<path>.
func (h *AuthHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	login := LoginURL(h.loginRoute(), r.URL.Query().Get("redirect_uri"))
	renderNode(w, r, http.StatusOK, shell.Page(shell.PageProps{
		Title: "Signed out",
		Body:  shell.SignedOut(login),
	}))
}

type statusUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type statusResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *statusUser `json:"user,omitempty"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
}

// Status reports whether the request carries an active session.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	credential := h.Credentials.From(r)
	if credential == "" || h.Resolver == nil {
		WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}

	identity, err := h.Resolver.Resolve(r.Context(), credential)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "session status lookup failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "session_provider_unavailable",
			Err:     errProviderUnavailable,
		})
		return
	}
	if identity == nil {
		h.Cookies.clear(w, r, h.sessionCookieName())
		WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}

	resp := statusResponse{
		Authenticated: true,
		User: &statusUser{
			ID:     identity.UserID,
			Name:   domainauth.DisplayName(*identity),
			Email:  domainauth.EmailOrEmpty(*identity),
			Avatar: domainauth.AvatarOrEmpty(*identity),
		},
	}
	if !identity.ExpiresAt.IsZero() {
		resp.ExpiresAt = &identity.ExpiresAt
	}
	WriteJSON(w, http.StatusOK, resp)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// safeRedirectPath ensures the redirect is a same-origin relative path starting
// with "/". It returns "/" otherwise.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}
