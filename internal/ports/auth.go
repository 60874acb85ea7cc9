package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore implementations when no live session exists.
var ErrSessionNotFound = errors.New("session not found")

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionResolver answers "who is the current user" for an opaque credential
// (a session id or a provider access token taken from the request).
//
// A nil identity with a nil error means there is no active session; that is an
// expected result, not a failure. A non-nil error is a provider or transport
// failure and must never be reported as "no session".
type SessionResolver interface {
	Resolve(ctx context.Context, credential string) (*domainauth.Identity, error)
}

// SessionResolverFunc adapts a function to SessionResolver.
type SessionResolverFunc func(ctx context.Context, credential string) (*domainauth.Identity, error)

// Resolve calls f.
func (f SessionResolverFunc) Resolve(ctx context.Context, credential string) (*domainauth.Identity, error) {
	return f(ctx, credential)
}
