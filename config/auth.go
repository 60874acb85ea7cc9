package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
	// AuthModeSupabase resolves Supabase access tokens against the Auth API.
	AuthModeSupabase AuthMode = "supabase"
	// AuthModeSupabaseJWT verifies Supabase access tokens locally with the project JWT secret.
	AuthModeSupabaseJWT AuthMode = "supabase-jwt"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch AuthMode(v) {
	case AuthModeOAuth, AuthModeMock, AuthModeSupabase, AuthModeSupabaseJWT:
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock, supabase, supabase-jwt)", v)
	}
}

// UsesSessionStore reports whether the mode keeps server-side sessions in Redis.
func (a AuthMode) UsesSessionStore() bool {
	return a == AuthModeOAuth || a == AuthModeMock
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing. Empty profile fields
// exercise the display-name fallbacks.
type DevAuthConfig struct {
	UserID          string        `env:"USER_ID"          envDefault:"dev-user"`
	FullName        string        `env:"FULL_NAME"`
	Email           string        `env:"EMAIL"            envDefault:"dev@example.com"`
	AvatarURL       string        `env:"AVATAR_URL"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
}

// SupabaseConfig configures the Supabase session provider.
type SupabaseConfig struct {
	URL     string `env:"URL"`
	AnonKey string `env:"ANON_KEY"`
	// JWTSecret verifies access tokens locally in supabase-jwt mode.
	JWTSecret string `env:"JWT_SECRET"`
	// LoginURL is the provider-hosted login page visitors are sent to.
	LoginURL string `env:"LOGIN_URL"`
	// CookieName holds the access token set by the frontend client.
	CookieName string        `env:"COOKIE_NAME" envDefault:"sb-access-token"`
	Timeout    time.Duration `env:"TIMEOUT"     envDefault:"5s"`
}

// Issuer is the token issuer derived from the project URL, or "" when unset.
func (s SupabaseConfig) Issuer() string {
	if s.URL == "" {
		return ""
	}
	return strings.TrimRight(s.URL, "/") + "/auth/v1"
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// LoginRoute is where the gate sends visitors without a session.
	LoginRoute string `env:"AUTH_LOGIN_ROUTE" envDefault:"/auth/login"`

	// SessionCookieName names the server-side session cookie (oauth and mock modes).
	SessionCookieName string `env:"AUTH_SESSION_COOKIE" envDefault:"session_id"`

	// CookieDomain is the domain for auth cookies. Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Supabase configuration (used when Mode=supabase or supabase-jwt).
	Supabase SupabaseConfig `envPrefix:"SUPABASE_"`
}

// Sanitize trims values and restores defaults that must never be empty.
func (c *AuthConfig) Sanitize() {
	c.LoginRoute = strings.TrimSpace(c.LoginRoute)
	if !strings.HasPrefix(c.LoginRoute, "/") {
		c.LoginRoute = "/auth/login"
	}
	if c.SessionCookieName = strings.TrimSpace(c.SessionCookieName); c.SessionCookieName == "" {
		c.SessionCookieName = "session_id"
	}
	c.CookieDomain = strings.TrimSpace(c.CookieDomain)

	c.Supabase.URL = strings.TrimRight(strings.TrimSpace(c.Supabase.URL), "/")
	c.Supabase.LoginURL = strings.TrimSpace(c.Supabase.LoginURL)
	if c.Supabase.CookieName = strings.TrimSpace(c.Supabase.CookieName); c.Supabase.CookieName == "" {
		c.Supabase.CookieName = "sb-access-token"
	}
	if c.Supabase.Timeout <= 0 {
		c.Supabase.Timeout = 5 * time.Second
	}
	if c.DevAuth.SessionDuration <= 0 {
		c.DevAuth.SessionDuration = 8 * time.Hour
	}
}

// Validate checks that the selected mode has what it needs.
func (c *AuthConfig) Validate() error {
	var missing []string
	switch c.Mode {
	case AuthModeOAuth:
		if c.OAuth.DiscoveryURL == "" {
			missing = append(missing, "OAUTH_DISCOVERY_URL")
		}
		if c.OAuth.ClientID == "" {
			missing = append(missing, "OAUTH_CLIENT_ID")
		}
		if c.OAuth.ClientSecret == "" {
			missing = append(missing, "OAUTH_CLIENT_SECRET")
		}
	case AuthModeMock:
		if c.DevAuth.UserID == "" {
			missing = append(missing, "DEV_AUTH_USER_ID")
		}
	case AuthModeSupabase:
		if c.Supabase.URL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.Supabase.AnonKey == "" {
			missing = append(missing, "SUPABASE_ANON_KEY")
		}
	case AuthModeSupabaseJWT:
		if c.Supabase.JWTSecret == "" {
			missing = append(missing, "SUPABASE_JWT_SECRET")
		}
	default:
		return fmt.Errorf("unsupported auth mode %q", c.Mode)
	}
	if len(missing) > 0 {
		return fmt.Errorf("auth mode %s requires %s", c.Mode, strings.Join(missing, ", "))
	}
	return nil
}
