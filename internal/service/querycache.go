package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/singleflight"

	"github.com/partnerdesk/console/internal/observability/metrics"
	"github.com/partnerdesk/console/internal/ports"
)

// StalePolicy declares how long a cached query result may be served without
// revalidation. A zero StaleTime means every read goes to the source.
type StalePolicy struct {
	StaleTime time.Duration
	// EntryTTL bounds how long a stored entry survives in the store.
	EntryTTL time.Duration
}

// Fresh reports whether an entry stored at cachedAt may still be served at now.
func (p StalePolicy) Fresh(cachedAt, now time.Time) bool {
	if p.StaleTime <= 0 {
		return false
	}
	return now.Sub(cachedAt) < p.StaleTime
}

func (p StalePolicy) entryTTL() time.Duration {
	if p.EntryTTL < p.StaleTime {
		return p.StaleTime
	}
	return p.EntryTTL
}

// QueryCacheOptions groups dependencies for QueryCache.
type QueryCacheOptions struct {
	Store   ports.QueryStore // Optional: nil disables storage, dedupe still applies
	Policy  StalePolicy
	Metrics *metrics.Metrics // Optional
}

// QueryCache runs keyed queries with a declared staleness policy. Concurrent
// calls for the same key share one fetch.
type QueryCache struct {
	store   ports.QueryStore
	policy  StalePolicy
	metrics *metrics.Metrics
	group   singleflight.Group
	now     func() time.Time
}

// NewQueryCache constructs a QueryCache.
func NewQueryCache(opts QueryCacheOptions) *QueryCache {
	return &QueryCache{
		store:   opts.Store,
		policy:  opts.Policy,
		metrics: opts.Metrics,
		now:     time.Now,
	}
}

// Policy returns the cache's staleness policy.
func (c *QueryCache) Policy() StalePolicy { return c.policy }

// FetchFunc loads a fresh value from the source of truth.
type FetchFunc func(ctx context.Context) ([]byte, error)

type cachedEntry struct {
	CachedAt time.Time `json:"at"`
	Value    []byte    `json:"v"`
}

// Key derives the storage key for query scoped to scope. The scope is hashed so
// secrets such as session tokens never appear in the store.
func Key(query, scope string) string {
	sum := blake3.Sum256([]byte(scope))
	return query + ":" + hex.EncodeToString(sum[:])
}

// Fetch returns the value for (query, scope). Fresh stored entries are served
// directly; otherwise fetch runs once for all concurrent callers. Errors are
// never stored.
func (c *QueryCache) Fetch(ctx context.Context, query, scope string, fetch FetchFunc) ([]byte, error) {
	key := Key(query, scope)

	if v, ok := c.lookup(ctx, key); ok {
		c.metrics.ObserveCache(query, metrics.CacheHit)
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.save(ctx, key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			// The leader's request went away; retry on our own context.
			if res.Shared && isContextErr(res.Err) && ctx.Err() == nil {
				return c.fetchDirect(ctx, query, key, fetch)
			}
			c.metrics.ObserveCache(query, metrics.CacheError)
			return nil, res.Err
		}
		if res.Shared {
			c.metrics.ObserveCache(query, metrics.CacheShared)
		} else {
			c.metrics.ObserveCache(query, metrics.CacheMiss)
		}
		v, _ := res.Val.([]byte)
		return v, nil
	}
}

func (c *QueryCache) fetchDirect(ctx context.Context, query, key string, fetch FetchFunc) ([]byte, error) {
	v, err := fetch(ctx)
	if err != nil {
		c.metrics.ObserveCache(query, metrics.CacheError)
		return nil, err
	}
	c.save(ctx, key, v)
	c.metrics.ObserveCache(query, metrics.CacheMiss)
	return v, nil
}

// Invalidate drops any stored entry for (query, scope).
func (c *QueryCache) Invalidate(ctx context.Context, query, scope string) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Delete(ctx, Key(query, scope)); err != nil {
		return fmt.Errorf("invalidate %s: %w", query, err)
	}
	return nil
}

func (c *QueryCache) lookup(ctx context.Context, key string) ([]byte, bool) {
	if c.store == nil || c.policy.StaleTime <= 0 {
		return nil, false
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "query cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var e cachedEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	if !c.policy.Fresh(e.CachedAt, c.now()) {
		return nil, false
	}
	return e.Value, true
}

func (c *QueryCache) save(ctx context.Context, key string, v []byte) {
	if c.store == nil || c.policy.StaleTime <= 0 {
		return
	}
	raw, err := json.Marshal(cachedEntry{CachedAt: c.now(), Value: v})
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, raw, c.policy.entryTTL()); err != nil {
		slog.WarnContext(ctx, "query cache write failed", "error", err)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
