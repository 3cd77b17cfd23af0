package config

import (
	"fmt"
	"strings"
	"time"
)

// CacheBackend selects the query cache store.
type CacheBackend string

const (
	// CacheBackendMemory keeps entries in a process-local LRU.
	CacheBackendMemory CacheBackend = "memory"
	// CacheBackendRedis shares entries across replicas through Redis.
	CacheBackendRedis CacheBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for CacheBackend.
func (b *CacheBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*b = CacheBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid CacheBackend: %q (valid options: memory, redis)", v)
	}
}

// CacheConfig controls the query cache that sits in front of identity fetches.
type CacheConfig struct {
	Backend CacheBackend `env:"BACKEND" envDefault:"memory"`

	// StaleTime is how long a cached result counts as fresh. Zero means every
	// access revalidates against the API server.
	StaleTime time.Duration `env:"STALE_TIME" envDefault:"0s"`

	// EntryTTL bounds how long an entry is retained at all (fresh or stale).
	EntryTTL time.Duration `env:"ENTRY_TTL" envDefault:"5m"`

	// Capacity is the memory backend LRU size.
	Capacity int `env:"CAPACITY" envDefault:"1024"`

	// KeyPrefix namespaces redis keys.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"console:query:"`
}

// Sanitize clamps values to usable ranges.
func (c *CacheConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = CacheBackendMemory
	}
	if c.StaleTime < 0 {
		c.StaleTime = 0
	}
	if c.EntryTTL <= 0 {
		c.EntryTTL = 5 * time.Minute
	}
	if c.EntryTTL < c.StaleTime {
		c.EntryTTL = c.StaleTime
	}
	if c.Capacity <= 0 {
		c.Capacity = 1024
	}
	if strings.TrimSpace(c.KeyPrefix) == "" {
		c.KeyPrefix = "console:query:"
	}
}

// Validate is a hook for future backend-specific checks.
func (c *CacheConfig) Validate() error {
	switch c.Backend {
	case CacheBackendMemory, CacheBackendRedis:
		return nil
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

// RedisConfig contains Redis connection configuration for the redis cache backend.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
