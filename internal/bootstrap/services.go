package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/piragi/knowledge-shell/config"
	"github.com/piragi/knowledge-shell/internal/domain/nav"
	httpx "github.com/piragi/knowledge-shell/internal/http"
	"github.com/piragi/knowledge-shell/internal/observability/metrics"
	"github.com/piragi/knowledge-shell/internal/service"
	"github.com/redis/go-redis/v9"
)

// ServiceDeps contains the infrastructure the services are built from.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	// HTTPClient is passed to outbound auth providers. Optional.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Auth    *AuthStack
	Gate    *service.AuthGate
	Nav     nav.Model
	Metrics *metrics.Prometheus // nil when metrics are disabled
}

// NewServices builds the navigation model, auth stack, metrics and gate.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	model, err := nav.LoadOrDefault(cfg.Nav.Path)
	if err != nil {
		return nil, fmt.Errorf("load navigation: %w", err)
	}

	stack, err := BuildAuth(ctx, AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		KeyPrefix:   cfg.Redis.KeyPrefix,
		HTTPClient:  deps.HTTPClient,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth: %w", err)
	}

	var (
		prom *metrics.Prometheus
		sink metrics.Sink = metrics.NopSink{}
	)
	if cfg.Observability.Metrics.Enabled {
		prom = metrics.NewPrometheus(metrics.PrometheusConfig{
			Namespace:      cfg.Observability.Metrics.Namespace,
			IncludeRuntime: cfg.Observability.Metrics.IncludeRuntime,
		})
		sink = prom
	}

	gate, err := service.NewAuthGate(service.AuthGateOptions{
		Resolver:       stack.Resolver,
		LoginRoute:     cfg.Auth.LoginRoute,
		ResolveTimeout: cfg.Gate.ResolveTimeout,
		Metrics:        sink,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth gate: %w", err)
	}

	return &ServiceContainer{Auth: stack, Gate: gate, Nav: model, Metrics: prom}, nil
}

// RouterServices assembles what the HTTP router needs from the container.
func (s *ServiceContainer) RouterServices(
	cfg *config.AppConfig,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
) httpx.RouterServices {
	rs := httpx.RouterServices{
		Gate:        s.Gate,
		Nav:         s.Nav,
		Auth:        s.Auth.AuthHandlers(cfg.Auth, logger),
		Credentials: s.Auth.Credentials,
		CSRF:        httpx.CSRFConfig{CookieDomain: cfg.Auth.CookieDomain},
		IsDev:       cfg.IsDev,
		Logger:      logger,
	}
	if s.Metrics != nil {
		rs.Metrics = s.Metrics.Handler()
	}
	if redisClient != nil {
		rs.Readiness = map[string]httpx.ReadinessCheck{"redis": RedisReadiness(redisClient)}
	}
	return rs
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    *ServiceContainer
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and blocks until a shutdown
// signal is received or the server fails.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is incomplete")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler := httpx.NewRouter(cfg.Services.RouterServices(cfg.Config, cfg.RedisClient, logger))
	server := NewHTTPServer(cfg.Config.HTTP, handler)

	errCh := make(chan error, 1)
	StartHTTPServer(logger, server, errCh)

	return waitForShutdown(ctx, shutdownConfig{
		errCh:   errCh,
		server:  server,
		timeout: cfg.Config.HTTP.ShutdownTimeout,
		logger:  logger,
	})
}

type shutdownConfig struct {
	errCh   <-chan error
	server  *http.Server
	timeout time.Duration
	logger  *slog.Logger
}

// waitForShutdown waits for a shutdown signal, context cancellation or server error.
func waitForShutdown(ctx context.Context, cfg shutdownConfig) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		cfg.logger.Info("shutting down services...")
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(ctx),
			Server:  cfg.server,
			Timeout: cfg.timeout,
			Logger:  cfg.logger,
		})
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		return err
	}
}
