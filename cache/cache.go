// Package cache stores rendered pages as opaque blobs keyed by request
// URI. Expiry is time-based only; writes to the underlying data never
// invalidate an entry. Clear exists for administrative and test use.
package cache

import (
	"context"
	"time"
)

// Store is the page-cache boundary. Implementations must treat values
// as opaque bytes and drop entries once their TTL elapses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Clear(ctx context.Context, key string)
}
