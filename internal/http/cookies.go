package httpx

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names used by the login flow.
const (
	DefaultSessionCookieName = "session_id"
	oauthStateCookie         = "oauth_state"
	oauthNonceCookie         = "oauth_nonce"
	postLoginRedirectCookie  = "post_login_redirect"
	loginFlowMaxAge          = 10 * time.Minute
)

// CookieSettings holds the attributes shared by every cookie we set.
type CookieSettings struct {
	Domain string
}

func (c CookieSettings) set(w http.ResponseWriter, r *http.Request, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

// clear expires a cookie with the same attributes it was set with so every
// browser drops it.
func (c CookieSettings) clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || isForwardedHTTPS(r)
}

// isForwardedHTTPS handles comma-separated X-Forwarded-Proto values from proxy chains.
func isForwardedHTTPS(r *http.Request) bool {
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// CredentialSource extracts the session credential from a request: the session
// cookie first, then (when enabled) an Authorization bearer token.
type CredentialSource struct {
	CookieName  string
	AllowBearer bool
}

// From returns the credential carried by r, or "" when there is none.
func (c CredentialSource) From(r *http.Request) string {
	name := c.CookieName
	if name == "" {
		name = DefaultSessionCookieName
	}
	if ck, err := r.Cookie(name); err == nil && ck.Value != "" {
		return ck.Value
	}
	if !c.AllowBearer {
		return ""
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
