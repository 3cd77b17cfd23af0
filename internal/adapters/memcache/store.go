// Package memcache provides a process-local query store backed by an expirable LRU.
package memcache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is an in-memory QueryStore. Entries expire after the TTL given at
// construction; the per-call ttl passed to Set is capped by it.
// Concurrency: methods are safe for concurrent use.
type Store struct {
	lru *expirable.LRU[string, []byte]
}

// Config groups constructor options.
type Config struct {
	Capacity int
	TTL      time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Capacity: 1024, TTL: 5 * time.Minute}
}

// NewStore creates a Store.
func NewStore(cfg Config) *Store {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1024
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

// Get returns the value for key if present and not expired.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, errors.New("key cannot be empty")
	}
	v, ok := s.lru.Get(key)
	return v, ok, nil
}

// Set inserts or replaces key. A non-positive ttl keeps the store default.
func (s *Store) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	s.lru.Add(key, value)
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	s.lru.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (s *Store) Len() int { return s.lru.Len() }
