// Package cache provides the small key-value cache used to avoid
// repeating identical model calls. Redis backs it in deployments; the
// in-memory implementation serves tests and single-process setups.
package cache

import (
	"context"
	"time"
)

// Cache is a read-through string cache. A miss is reported through the
// boolean, never as an error; cache failures must not break the caller.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
