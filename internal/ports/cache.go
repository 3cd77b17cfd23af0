package ports

import (
	"context"
	"time"
)

// QueryStore is the storage tier behind the query cache.
// Get reports found=false for missing or expired keys.
type QueryStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
