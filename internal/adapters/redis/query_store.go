// Package redis provides Redis-backed adapters for the console.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces cached query results.
const DefaultKeyPrefix = "console:query:"

// QueryStore keeps serialized query results in Redis so every console
// replica shares the same cache.
type QueryStore struct {
	client redis.UniversalClient
	prefix string
}

// NewQueryStore creates a store using DefaultKeyPrefix.
func NewQueryStore(client redis.UniversalClient) *QueryStore {
	return NewQueryStoreWithPrefix(client, DefaultKeyPrefix)
}

// NewQueryStoreWithPrefix creates a store with a custom key prefix.
func NewQueryStoreWithPrefix(client redis.UniversalClient, prefix string) *QueryStore {
	return &QueryStore{client: client, prefix: prefix}
}

func (s *QueryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set stores value under key. Cached identity must always expire, so a
// non-positive ttl is rejected.
func (s *QueryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("query key cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("query ttl must be positive")
	}

	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *QueryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
