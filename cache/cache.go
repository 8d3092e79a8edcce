// Package cache holds short-lived keyed state such as one-time codes.
package cache

import (
	"context"
	"time"
)

// Store is a key-value store whose entries expire after a TTL.
type Store interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get reports ok=false for missing or expired keys.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Delete(ctx context.Context, key string) error
}
