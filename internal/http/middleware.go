package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/piragi/knowledge-shell/internal/domain/gate"
)

// RequestIDHeader carries the per-request id on requests and responses.
const RequestIDHeader = "X-Request-Id"

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Bool("htmx", IsHTMX(r)),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
						panic(err)
					}
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection returns a middleware that detects browser requests vs API requests.
// Downstream handlers use IsBrowserRequest to choose between HTML and JSON responses.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if isBrowser, ok := r.Context().Value(browserRequestKey{}).(bool); ok {
		return isBrowser
	}
	return isBrowserRequest(r)
}

// isBrowserRequest treats /api/ and /static/ as non-browser routes; HTMX requests
// and requests accepting text/html (or sending no Accept header) are browser requests.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/static/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}

// RequireIdentity returns a middleware that runs one gate activation per request
// and stores the resolved identity in the request context.
//
// API callers get 401 JSON when there is no session and 503 JSON when the session
// provider failed; browsers are redirected to the login route instead of 401.
func RequireIdentity(g Gate, creds CredentialSource, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			act := g.Activate(creds.From(r))
			defer act.Teardown()

			out := act.Resolve(r.Context())
			switch out.Kind {
			case gate.Proceed:
				next.ServeHTTP(w, r.WithContext(SetIdentityInContext(r.Context(), out.Identity)))
			case gate.Redirect:
				if IsBrowserRequest(r) {
					redirectToLogin(w, r, out.Route, redirectPathForRequest(r))
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errAuthRequired,
				})
			case gate.Fail:
				logger.ErrorContext(r.Context(), "session provider failed", "path", r.URL.Path, "error", out.Err)
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "session_provider_unavailable",
					Err:     errProviderUnavailable,
				})
			case gate.Abandoned:
				logger.DebugContext(r.Context(), "request abandoned before session resolved", "path", r.URL.Path)
			}
		})
	}
}

// LoginURL returns the login route carrying returnTo as its redirect_uri.
func LoginURL(loginRoute, returnTo string) string {
	returnTo = safeRedirectPath(returnTo)
	sep := "?"
	if strings.Contains(loginRoute, "?") {
		sep = "&"
	}
	return loginRoute + sep + "redirect_uri=" + url.QueryEscape(returnTo)
}

// redirectToLogin sends the visitor to the login route exactly once. HTMX requests
// get an Hx-Redirect header with an empty body so nothing is swapped in; other
// requests get a 303.
func redirectToLogin(w http.ResponseWriter, r *http.Request, loginRoute, returnTo string) {
	target := LoginURL(loginRoute, returnTo)
	if IsHTMX(r) {
		SetHXRedirect(w, target)
		SetHXReswap(w, "none")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// redirectPathForRequest picks the page the visitor was on. HTMX requests carry it
// in Hx-Current-Url (or Referer); full page loads use the request URI.
func redirectPathForRequest(r *http.Request) string {
	if IsHTMX(r) {
		if current := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); current != "" {
			return current
		}
		if referer := safeRedirectFromURL(r.Header.Get("Referer")); referer != "" {
			return referer
		}
	}
	return safeRedirectPath(r.URL.RequestURI())
}

func safeRedirectFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	// Scheme-relative references ("//host/...") are rejected outright.
	if u.Host != "" && !u.IsAbs() {
		return ""
	}
	if u.IsAbs() {
		return safeRedirectPath(u.RequestURI())
	}
	return safeRedirectPath(raw)
}
