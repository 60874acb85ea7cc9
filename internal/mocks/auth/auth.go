package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider    = (*MockAuthProvider)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.SessionResolver = (*PendingResolver)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// DefaultIdentity is the identity returned by a MockAuthProvider without overrides.
func DefaultIdentity() domainauth.Identity {
	return domainauth.Identity{
		UserID:   "mock-user-1",
		FullName: domainauth.StringPtr("Mock User"),
		Email:    domainauth.StringPtr("mock.user@example.com"),
	}
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	user := DefaultIdentity()
	user.ExpiresAt = time.Now().Add(time.Hour)
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: user,
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	return authURL, fmt.Sprintf("%s-%d", statePrefix, n), fmt.Sprintf("%s-%d", noncePrefix, n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Fresh expiration on every exchange
	user := m.DefaultUser
	if user.UserID == "" {
		user = DefaultIdentity()
	}
	user.ExpiresAt = time.Now().Add(time.Hour)

	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PendingResolver blocks every Resolve call until Settle is called or the
// caller's context ends. It counts calls so tests can assert single resolution.
type PendingResolver struct {
	mu       sync.Mutex
	calls    int
	started  chan struct{}
	settled  chan struct{}
	once     sync.Once
	identity *domainauth.Identity
	err      error
}

// NewPendingResolver returns a resolver that never settles on its own.
func NewPendingResolver() *PendingResolver {
	return &PendingResolver{
		started: make(chan struct{}, 16),
		settled: make(chan struct{}),
	}
}

func (p *PendingResolver) Resolve(ctx context.Context, _ string) (*domainauth.Identity, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	select {
	case p.started <- struct{}{}:
	default:
	}

	select {
	case <-p.settled:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.identity, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Started is signalled each time Resolve begins.
func (p *PendingResolver) Started() <-chan struct{} { return p.started }

// Settle releases all current and future Resolve calls with the given result.
func (p *PendingResolver) Settle(identity *domainauth.Identity, err error) {
	p.once.Do(func() {
		p.mu.Lock()
		p.identity = identity
		p.err = err
		p.mu.Unlock()
		close(p.settled)
	})
}

// Calls returns how many times Resolve was invoked.
func (p *PendingResolver) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
