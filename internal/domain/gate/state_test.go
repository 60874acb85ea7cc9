package gate

import (
	"errors"
	"testing"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	id := &domainauth.Identity{UserID: "u-1"}
	boom := errors.New("provider down")

	s := Transition(id, nil)
	assert.Equal(t, Authenticated, s.Status)
	require.NotNil(t, s.Identity)
	assert.Equal(t, "u-1", s.Identity.UserID)
	assert.NotSame(t, id, s.Identity)

	s = Transition(nil, nil)
	assert.Equal(t, Unauthenticated, s.Status)
	assert.Nil(t, s.Identity)

	s = Transition(id, boom)
	assert.Equal(t, Failed, s.Status)
	assert.Nil(t, s.Identity)
	assert.ErrorIs(t, s.Err, boom)
}

func TestStatus(t *testing.T) {
	assert.False(t, Pending.Terminal())
	assert.True(t, Authenticated.Terminal())
	assert.True(t, Unauthenticated.Terminal())
	assert.True(t, Failed.Terminal())
	assert.Equal(t, "pending", PendingState().Status.String())
	assert.Equal(t, "status(9)", Status(9).String())
}

func TestOutcomeFor(t *testing.T) {
	boom := errors.New("boom")

	o := OutcomeFor(Transition(&domainauth.Identity{UserID: "u"}, nil), "/auth/login")
	assert.Equal(t, Proceed, o.Kind)
	assert.Equal(t, "u", o.Identity.UserID)

	o = OutcomeFor(Transition(nil, nil), "/auth/login")
	assert.Equal(t, Redirect, o.Kind)
	assert.Equal(t, "/auth/login", o.Route)

	o = OutcomeFor(Transition(nil, boom), "/auth/login")
	assert.Equal(t, Fail, o.Kind)
	assert.ErrorIs(t, o.Err, boom)

	o = OutcomeFor(PendingState(), "/auth/login")
	assert.Equal(t, Abandoned, o.Kind)
	assert.Equal(t, "abandoned", o.Kind.String())
}
