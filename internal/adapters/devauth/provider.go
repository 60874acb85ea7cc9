// Package devauth provides a config-driven AuthProvider for local development.
package devauth

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/ports"
)

const (
	defaultSessionDuration = 8 * time.Hour
	defaultCallbackPath    = "/auth/callback"
)

// Config controls the dev auth provider. Only UserID is required; leaving the
// profile fields empty exercises the display-name fallbacks.
type Config struct {
	UserID          string
	FullName        string
	Email           string
	AvatarURL       string
	SessionDuration time.Duration // default 8h when zero
	CallbackPath    string        // default /auth/callback
}

var _ ports.AuthProvider = (*Provider)(nil)

// Provider skips the IdP round-trip: Begin points straight at our own callback
// and Exchange returns the configured identity.
type Provider struct {
	identity     domainauth.Identity
	duration     time.Duration
	callbackPath string
	now          func() time.Time
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	dur := cfg.SessionDuration
	if dur <= 0 {
		dur = defaultSessionDuration
	}
	callback := cfg.CallbackPath
	if callback == "" {
		callback = defaultCallbackPath
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID:    cfg.UserID,
			FullName:  domainauth.StringPtr(cfg.FullName),
			Email:     domainauth.StringPtr(cfg.Email),
			AvatarURL: domainauth.StringPtr(cfg.AvatarURL),
		},
		duration:     dur,
		callbackPath: callback,
		now:          time.Now,
	}, nil
}

// Begin returns a local callback URL with a fresh state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state := uuid.NewString()
	nonce := uuid.NewString()
	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.callbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange ignores code, state and nonce (the handler validates them) and returns
// the dev identity with a fresh expiry.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	id := p.identity
	id.ExpiresAt = p.now().Add(p.duration)
	return id, nil
}
