package supabase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/ports"
)

// DefaultAudience is the audience Supabase puts on user access tokens.
const DefaultAudience = "authenticated"

// ErrMissingSecret means the verifier has no signing secret to check against.
var ErrMissingSecret = errors.New("supabase jwt secret is not configured")

// TokenVerifierConfig configures local access-token verification.
type TokenVerifierConfig struct {
	Secret   string
	Issuer   string // checked when set, e.g. https://xyz.supabase.co/auth/v1
	Audience string // default DefaultAudience
	Leeway   time.Duration
	Logger   *slog.Logger
}

var _ ports.SessionResolver = (*TokenVerifier)(nil)

// TokenVerifier checks HS256 Supabase access tokens without a network call.
type TokenVerifier struct {
	secret []byte
	parser *jwt.Parser
	logger *slog.Logger
}

// accessClaims is the payload of a Supabase access token.
type accessClaims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email"`
	UserMetadata userMetadata `json:"user_metadata"`
}

// NewTokenVerifier builds a verifier. An empty secret is kept and reported on
// every Resolve, so a misconfigured deployment fails visibly instead of logging everyone out.
func NewTokenVerifier(cfg TokenVerifierConfig) *TokenVerifier {
	aud := cfg.Audience
	if aud == "" {
		aud = DefaultAudience
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(aud),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
		logger: logger.With("component", "supabase_token_verifier"),
	}
}

// Resolve verifies the token. Invalid, expired or foreign tokens resolve to nil.
func (v *TokenVerifier) Resolve(ctx context.Context, accessToken string) (*domainauth.Identity, error) {
	if len(v.secret) == 0 {
		return nil, ErrMissingSecret
	}
	if accessToken == "" {
		return nil, nil
	}

	var claims accessClaims
	_, err := v.parser.ParseWithClaims(accessToken, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		v.logger.DebugContext(ctx, "rejecting access token", "error", err)
		return nil, nil
	}
	if claims.Subject == "" {
		v.logger.DebugContext(ctx, "rejecting access token without subject")
		return nil, nil
	}

	id := userResponse{ID: claims.Subject, Email: claims.Email, UserMetadata: claims.UserMetadata}.identity()
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return &id, nil
}
