package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/piragi/knowledge-shell/config"
	"github.com/piragi/knowledge-shell/internal/adapters/devauth"
	"github.com/piragi/knowledge-shell/internal/adapters/oidc"
	redisadapter "github.com/piragi/knowledge-shell/internal/adapters/redis"
	"github.com/piragi/knowledge-shell/internal/adapters/supabase"
	httpx "github.com/piragi/knowledge-shell/internal/http"
	"github.com/piragi/knowledge-shell/internal/ports"
	"github.com/piragi/knowledge-shell/internal/service"
	"github.com/redis/go-redis/v9"
)

// ErrRedisRequired is returned when a session-store mode is built without Redis.
var ErrRedisRequired = errors.New("auth mode requires a redis client")

// AuthConfig contains configuration for the auth stack.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	KeyPrefix   string
	// HTTPClient is used for OIDC discovery and Supabase calls. Optional.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// AuthStack is the session provider selected by the auth mode.
type AuthStack struct {
	// Resolver answers the gate's session lookups.
	Resolver ports.SessionResolver
	// Service runs the server-side login flow. Nil for Supabase modes.
	Service *service.AuthService
	// Credentials says where requests carry their session credential.
	Credentials httpx.CredentialSource
	// ExternalLoginURL is the provider-hosted login page for Supabase modes.
	ExternalLoginURL string
}

// BuildAuth creates the session provider for the configured auth mode.
func BuildAuth(ctx context.Context, cfg AuthConfig) (*AuthStack, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:          cfg.Auth.DevAuth.UserID,
			FullName:        cfg.Auth.DevAuth.FullName,
			Email:           cfg.Auth.DevAuth.Email,
			AvatarURL:       cfg.Auth.DevAuth.AvatarURL,
			SessionDuration: cfg.Auth.DevAuth.SessionDuration,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		logger.WarnContext(ctx, "dev auth enabled; every login signs in as the configured user",
			"user_id", cfg.Auth.DevAuth.UserID)
		return buildStoreBackedStack(cfg, prov)

	case config.AuthModeOAuth:
		oauth := cfg.Auth.OAuth
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
			HTTPClient:   cfg.HTTPClient,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		return buildStoreBackedStack(cfg, prov)

	case config.AuthModeSupabase:
		resolver, err := supabase.NewResolver(supabase.ResolverConfig{
			URL:     cfg.Auth.Supabase.URL,
			AnonKey: cfg.Auth.Supabase.AnonKey,
			Timeout: cfg.Auth.Supabase.Timeout,
			Client:  cfg.HTTPClient,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("supabase resolver: %w", err)
		}
		return supabaseStack(cfg.Auth, resolver), nil

	case config.AuthModeSupabaseJWT:
		verifier := supabase.NewTokenVerifier(supabase.TokenVerifierConfig{
			Secret: cfg.Auth.Supabase.JWTSecret,
			Issuer: cfg.Auth.Supabase.Issuer(),
			Logger: logger,
		})
		return supabaseStack(cfg.Auth, verifier), nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildStoreBackedStack(cfg AuthConfig, prov ports.AuthProvider) (*AuthStack, error) {
	if cfg.RedisClient == nil {
		return nil, ErrRedisRequired
	}
	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: redisadapter.NewSessionStore(cfg.RedisClient, redisadapter.SessionStoreOptions{Prefix: cfg.KeyPrefix}),
	})
	return &AuthStack{
		Resolver:    svc,
		Service:     svc,
		Credentials: httpx.CredentialSource{CookieName: cfg.Auth.SessionCookieName},
	}, nil
}

func supabaseStack(auth config.AuthConfig, resolver ports.SessionResolver) *AuthStack {
	return &AuthStack{
		Resolver: resolver,
		Credentials: httpx.CredentialSource{
			CookieName:  auth.Supabase.CookieName,
			AllowBearer: true,
		},
		ExternalLoginURL: auth.Supabase.LoginURL,
	}
}

// AuthHandlers builds the /auth handlers for the stack.
func (s *AuthStack) AuthHandlers(auth config.AuthConfig, logger *slog.Logger) *httpx.AuthHandlers {
	h := &httpx.AuthHandlers{
		Resolver:         s.Resolver,
		Credentials:      s.Credentials,
		Cookies:          httpx.CookieSettings{Domain: auth.CookieDomain},
		LoginRoute:       auth.LoginRoute,
		ExternalLoginURL: s.ExternalLoginURL,
		Logger:           logger,
	}
	// A nil *AuthService must stay a nil interface so handlers fall back to external login.
	if s.Service != nil {
		h.Svc = s.Service
	}
	return h
}
