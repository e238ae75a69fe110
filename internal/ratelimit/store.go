package ratelimit

import (
	"context"
	"time"
)

// Store counts requests per key over a sliding window.
type Store interface {
	// Record adds a request for key and returns how many requests fall inside
	// the window ending now, the new one included. Entries older than the
	// window are pruned.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
