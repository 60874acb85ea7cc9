package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    AuthMode
		wantErr bool
	}{
		{input: "oauth", want: AuthModeOAuth},
		{input: "MOCK", want: AuthModeMock},
		{input: " supabase ", want: AuthModeSupabase},
		{input: "supabase-jwt", want: AuthModeSupabaseJWT},
		{input: "ldap", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got AuthMode
			err := got.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("UnmarshalText(%q) expected error, got mode %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalText(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("UnmarshalText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("AUTH_LOGIN_ROUTE", "/signin")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("OAUTH_REDIRECT_URL", "https://app.example.com/auth/callback")
	t.Setenv("OAUTH_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("OAUTH_SCOPE", "openid profile email")
	t.Setenv("DEV_AUTH_USER_ID", "dev-user")
	t.Setenv("DEV_AUTH_FULL_NAME", "Dev User")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("SUPABASE_URL", "https://xyz.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode:              AuthModeOAuth,
		LoginRoute:        "/signin",
		SessionCookieName: "session_id",
		OAuth: OAuthConfig{
			ClientID:     "app-client",
			ClientSecret: "super-secret",
			RedirectURL:  "https://app.example.com/auth/callback",
			Scope:        "openid profile email",
			DiscoveryURL: "https://login.example.com/.well-known/openid-configuration",
		},
		DevAuth: DevAuthConfig{
			UserID:          "dev-user",
			FullName:        "Dev User",
			Email:           "dev@example.com",
			SessionDuration: 8 * time.Hour,
		},
		Supabase: SupabaseConfig{
			URL:        "https://xyz.supabase.co",
			AnonKey:    "anon",
			CookieName: "sb-access-token",
			Timeout:    5 * time.Second,
		},
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
	if cfg.Gate.ResolveTimeout != 10*time.Second {
		t.Fatalf("default gate resolve timeout = %v, want 10s", cfg.Gate.ResolveTimeout)
	}
}

func TestAppConfig_ParseRejectsUnknownAuthMode(t *testing.T) {
	t.Setenv("AUTH_MODE", "saml")

	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatal("expected parse error for unknown auth mode")
	}
}

func TestAppConfig_Sanitize(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	cfg := AppConfig{
		Auth: AuthConfig{
			LoginRoute: "https://evil.example/login",
			Supabase:   SupabaseConfig{URL: " https://xyz.supabase.co/ "},
		},
		Nav:  NavConfig{Path: "  nav.yaml "},
		Gate: GateConfig{ResolveTimeout: -time.Second},
		Observability: ObservabilityConfig{
			LogLevel: "LOUD",
		},
	}
	cfg.Sanitize()

	if cfg.Auth.LoginRoute != "/auth/login" {
		t.Errorf("login route = %q, want /auth/login", cfg.Auth.LoginRoute)
	}
	if cfg.Auth.SessionCookieName != "session_id" {
		t.Errorf("session cookie = %q, want session_id", cfg.Auth.SessionCookieName)
	}
	if cfg.Auth.Supabase.URL != "https://xyz.supabase.co" {
		t.Errorf("supabase url = %q", cfg.Auth.Supabase.URL)
	}
	if cfg.Auth.Supabase.Issuer() != "https://xyz.supabase.co/auth/v1" {
		t.Errorf("supabase issuer = %q", cfg.Auth.Supabase.Issuer())
	}
	if cfg.Nav.Path != "nav.yaml" {
		t.Errorf("nav path = %q, want nav.yaml", cfg.Nav.Path)
	}
	if cfg.Gate.ResolveTimeout != 0 {
		t.Errorf("resolve timeout = %v, want 0", cfg.Gate.ResolveTimeout)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("http defaults not applied: %+v", cfg.HTTP)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.Observability.LogLevel)
	}
	if cfg.Observability.Metrics.Namespace != "piragi" {
		t.Errorf("metrics namespace = %q, want piragi", cfg.Observability.Metrics.Namespace)
	}
	if !cfg.IsDev {
		t.Error("NODE_ENV=development should enable dev mode")
	}
}

func TestAppConfig_Validate(t *testing.T) {
	redis := RedisConfig{URI: "localhost:6379"}

	tests := []struct {
		name    string
		cfg     AppConfig
		wantErr string
	}{
		{
			name: "mock with redis",
			cfg:  AppConfig{Auth: AuthConfig{Mode: AuthModeMock, DevAuth: DevAuthConfig{UserID: "dev"}}, Redis: redis},
		},
		{
			name:    "oauth missing client",
			cfg:     AppConfig{Auth: AuthConfig{Mode: AuthModeOAuth, OAuth: OAuthConfig{DiscoveryURL: "https://idp"}}, Redis: redis},
			wantErr: "OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET",
		},
		{
			name:    "mock without redis",
			cfg:     AppConfig{Auth: AuthConfig{Mode: AuthModeMock, DevAuth: DevAuthConfig{UserID: "dev"}}},
			wantErr: "redis is required",
		},
		{
			name: "supabase does not need redis",
			cfg: AppConfig{Auth: AuthConfig{
				Mode:     AuthModeSupabase,
				Supabase: SupabaseConfig{URL: "https://xyz.supabase.co", AnonKey: "anon"},
			}},
		},
		{
			name:    "supabase-jwt without secret",
			cfg:     AppConfig{Auth: AuthConfig{Mode: AuthModeSupabaseJWT}},
			wantErr: "SUPABASE_JWT_SECRET",
		},
		{
			name:    "sentinel without nodes",
			cfg:     AppConfig{Auth: AuthConfig{Mode: AuthModeMock, DevAuth: DevAuthConfig{UserID: "dev"}}, Redis: RedisConfig{UseSentinel: true}},
			wantErr: "REDIS_SENTINEL_NODES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
