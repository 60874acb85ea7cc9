package httpx

import (
	"context"
	"net/http"
	"testing"
	"time"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/domain/nav"
	"github.com/piragi/knowledge-shell/internal/ports"
	"github.com/piragi/knowledge-shell/internal/service"
	"github.com/stretchr/testify/require"
)

// mockAuthService is a test double for the login flow.
type mockAuthService struct {
	beginLoginFunc    func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	completeLoginFunc func(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	logoutFunc        func(ctx context.Context, sessionID string) error
	loggedOut         []string
}

func (m *mockAuthService) BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if m.beginLoginFunc != nil {
		return m.beginLoginFunc(ctx, redirectURL)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.example.com/auth?state=test-state",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (m *mockAuthService) CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
	if m.completeLoginFunc != nil {
		return m.completeLoginFunc(ctx, input)
	}
	return &service.CompleteLoginResult{
		Session: domainauth.Session{
			ID:        "test-session-id",
			UserID:    "test-user",
			Email:     domainauth.StringPtr("test@example.com"),
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	m.loggedOut = append(m.loggedOut, sessionID)
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

func bobIdentity() *domainauth.Identity {
	return &domainauth.Identity{UserID: "u-bob", Email: domainauth.StringPtr("bob@co.io")}
}

// staticResolver resolves the "valid" credential to bob and anything else to no session.
func staticResolver() ports.SessionResolverFunc {
	return func(_ context.Context, credential string) (*domainauth.Identity, error) {
		if credential == "valid" {
			return bobIdentity(), nil
		}
		return nil, nil
	}
}

func newTestGate(t *testing.T, resolver ports.SessionResolver) *service.AuthGate {
	t.Helper()
	g, err := service.NewAuthGate(service.AuthGateOptions{Resolver: resolver, LoginRoute: "/auth/login"})
	require.NoError(t, err)
	return g
}

func defaultNav(t *testing.T) nav.Model {
	t.Helper()
	m, err := nav.Default()
	require.NoError(t, err)
	return m
}

func withSession(r *http.Request, value string) *http.Request {
	r.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: value})
	return r
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
