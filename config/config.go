package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication and session provider configuration
//   - database.go: Redis configuration
//   - http.go: HTTP server configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (static files served from disk).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Session storage
	Redis RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Navigation model source
	Nav NavConfig

	// Auth gate tuning
	Gate GateConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// NavConfig points at an optional navigation YAML file. The embedded default is
// used when Path is empty.
type NavConfig struct {
	Path string `env:"NAV_CONFIG_PATH"`
}

// GateConfig controls session resolution inside the auth gate.
type GateConfig struct {
	// ResolveTimeout bounds one resolution. A resolver that exceeds it settles the
	// gate as Failed. Zero disables the bound.
	ResolveTimeout time.Duration `env:"GATE_RESOLVE_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()

	c.Nav.Path = strings.TrimSpace(c.Nav.Path)
	if c.Gate.ResolveTimeout < 0 {
		c.Gate.ResolveTimeout = 0
	}

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// Validate reports configuration that cannot start the server.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.Mode.UsesSessionStore() {
		if err := c.Redis.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
