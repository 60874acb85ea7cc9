package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockAuthProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()

	input := ports.BeginInput{RedirectURL: "http://localhost:8080/callback"}
	authURL, state, nonce, err := provider.Begin(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	// Second call should increment counters
	_, state2, nonce2, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "state-2", state2)
	assert.Equal(t, "nonce-2", nonce2)
}

func TestMockAuthProvider_Exchange_FreshExpiry(t *testing.T) {
	provider := &MockAuthProvider{}

	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c"})

	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", id.UserID)
	assert.True(t, id.ExpiresAt.After(time.Now()))
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.Error(t, store.Save(ctx, domainauth.Session{}))
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s1", UserID: "u1"}))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestPendingResolver(t *testing.T) {
	t.Run("settles", func(t *testing.T) {
		r := NewPendingResolver()
		done := make(chan error, 1)
		go func() {
			_, err := r.Resolve(context.Background(), "cred")
			done <- err
		}()
		<-r.Started()
		boom := errors.New("boom")
		r.Settle(nil, boom)
		require.ErrorIs(t, <-done, boom)
		assert.Equal(t, 1, r.Calls())
	})

	t.Run("honours cancellation", func(t *testing.T) {
		r := NewPendingResolver()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Resolve(ctx, "cred")
		require.ErrorIs(t, err, context.Canceled)
	})
}
