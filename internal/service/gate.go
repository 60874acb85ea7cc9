package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/domain/gate"
	"github.com/piragi/knowledge-shell/internal/observability/metrics"
	"github.com/piragi/knowledge-shell/internal/ports"
)

// DefaultLoginRoute is where unauthenticated visitors are sent.
const DefaultLoginRoute = "/auth/login"

// ErrActivationAbandoned is reported when an activation ends before its session resolved.
var ErrActivationAbandoned = errors.New("gate activation abandoned")

// AuthGateOptions groups dependencies for AuthGate.
type AuthGateOptions struct {
	Resolver   ports.SessionResolver // required
	LoginRoute string
	// ResolveTimeout bounds a single resolution. Zero means no bound beyond teardown.
	ResolveTimeout time.Duration
	Metrics        metrics.Sink
	Logger         *slog.Logger
}

// AuthGate creates gate activations that share one resolver and login route.
type AuthGate struct {
	resolver   ports.SessionResolver
	loginRoute string
	timeout    time.Duration
	metrics    metrics.Sink
	logger     *slog.Logger
}

// NewAuthGate constructs an AuthGate.
func NewAuthGate(opts AuthGateOptions) (*AuthGate, error) {
	if opts.Resolver == nil {
		return nil, errors.New("session resolver is required")
	}
	loginRoute := opts.LoginRoute
	if loginRoute == "" {
		loginRoute = DefaultLoginRoute
	}
	sink := opts.Metrics
	if sink == nil {
		sink = metrics.NopSink{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGate{
		resolver:   opts.Resolver,
		loginRoute: loginRoute,
		timeout:    opts.ResolveTimeout,
		metrics:    sink,
		logger:     logger.With("component", "auth_gate"),
	}, nil
}

// LoginRoute returns the route used for Redirect outcomes.
func (g *AuthGate) LoginRoute() string { return g.loginRoute }

// Activate starts a new activation in the Pending state. Resolution begins on the
// first call to Resolve.
func (g *AuthGate) Activate(credential string) *Activation {
	return &Activation{
		gate:       g,
		credential: credential,
		state:      gate.PendingState(),
		settled:    make(chan struct{}),
		torndown:   make(chan struct{}),
		cancel:     func() {},
	}
}

// Activation is a single gate instance. It owns its state; transitions happen at
// most once and never after Teardown.
type Activation struct {
	gate       *AuthGate
	credential string

	mu       sync.Mutex
	state    gate.State
	started  bool
	torn     bool
	cancel   context.CancelFunc
	settled  chan struct{}
	torndown chan struct{}
	startsAt time.Time
}

// State returns a snapshot of the current state.
func (a *Activation) State() gate.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Resolve waits for the session to resolve and returns what the host must do.
// The resolver is invoked at most once per activation; repeat calls return the
// first outcome. If ctx ends or the activation is torn down first, the outcome is
// Abandoned and the state stays Pending.
func (a *Activation) Resolve(ctx context.Context) gate.Outcome {
	a.mu.Lock()
	if a.torn {
		a.mu.Unlock()
		return gate.Outcome{Kind: gate.Abandoned, Err: ErrActivationAbandoned}
	}
	if a.state.Status.Terminal() {
		out := gate.OutcomeFor(a.state, a.gate.loginRoute)
		a.mu.Unlock()
		return out
	}
	if !a.started {
		a.start(ctx)
	}
	a.mu.Unlock()

	select {
	case <-a.settled:
		return gate.OutcomeFor(a.State(), a.gate.loginRoute)
	case <-a.torndown:
		a.gate.logger.DebugContext(ctx, "gate activation torn down before settling")
		a.gate.metrics.RecordGate(metrics.GateMetric{Outcome: metrics.OutcomeAbandoned})
		return gate.Outcome{Kind: gate.Abandoned, Err: ErrActivationAbandoned}
	case <-ctx.Done():
		a.gate.logger.DebugContext(ctx, "gate activation abandoned", "error", ctx.Err())
		a.gate.metrics.RecordGate(metrics.GateMetric{Outcome: metrics.OutcomeAbandoned})
		return gate.Outcome{Kind: gate.Abandoned, Err: errors.Join(ErrActivationAbandoned, ctx.Err())}
	}
}

// start launches the resolver. Caller holds a.mu.
func (a *Activation) start(ctx context.Context) {
	a.started = true
	a.startsAt = time.Now()

	// The resolver outlives a single waiter; only Teardown or the timeout stop it.
	base := context.WithoutCancel(ctx)
	var (
		rctx   context.Context
		cancel context.CancelFunc
	)
	if a.gate.timeout > 0 {
		rctx, cancel = context.WithTimeout(base, a.gate.timeout)
	} else {
		rctx, cancel = context.WithCancel(base)
	}
	a.cancel = cancel

	go func() {
		defer cancel()
		identity, err := a.gate.resolver.Resolve(rctx, a.credential)
		a.settle(rctx, identity, err)
	}()
}

func (a *Activation) settle(ctx context.Context, identity *domainauth.Identity, err error) {
	a.mu.Lock()
	if a.torn {
		a.mu.Unlock()
		a.gate.logger.DebugContext(ctx, "dropping late session resolution")
		return
	}
	a.state = gate.Transition(identity, err)
	next := a.state
	elapsed := time.Since(a.startsAt)
	a.mu.Unlock()
	defer close(a.settled)

	out := gate.OutcomeFor(next, a.gate.loginRoute)
	a.gate.metrics.RecordGate(metrics.GateMetric{
		Outcome:  out.Kind.String(),
		Duration: elapsed,
		Err:      out.Err,
	})

	switch next.Status {
	case gate.Failed:
		a.gate.logger.ErrorContext(ctx, "session resolution failed", "error", next.Err, "duration", elapsed)
	case gate.Unauthenticated:
		a.gate.logger.DebugContext(ctx, "no active session", "duration", elapsed)
	default:
		a.gate.logger.DebugContext(ctx, "session resolved", "user_id", next.Identity.UserID, "duration", elapsed)
	}
}

// Teardown ends the activation. A resolution still in flight is cancelled and its
// result is discarded. Safe to call more than once.
func (a *Activation) Teardown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.torn {
		return
	}
	a.torn = true
	close(a.torndown)
	a.cancel()
}
