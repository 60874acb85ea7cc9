package config

import (
	"errors"
	"strings"
)

// ErrNoSessionStore is returned when a store-backed mode has no Redis address.
var ErrNoSessionStore = errors.New("redis is required for server-side sessions")

// RedisConfig contains Redis configuration for the session store.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
	// KeyPrefix namespaces session keys.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"session:"`
}

// Validate checks that the selected topology has an address to dial.
func (r *RedisConfig) Validate() error {
	switch {
	case r.UseCluster:
		if len(r.ClusterNodes) == 0 && strings.TrimSpace(r.URI) == "" {
			return errors.New("redis cluster requires REDIS_CLUSTER_NODES or REDIS_URI")
		}
	case r.UseSentinel:
		if len(r.SentinelNodes) == 0 {
			return errors.New("redis sentinel requires REDIS_SENTINEL_NODES")
		}
	default:
		if strings.TrimSpace(r.URI) == "" {
			return ErrNoSessionStore
		}
	}
	return nil
}
