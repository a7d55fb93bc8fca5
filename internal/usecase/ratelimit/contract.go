package ratelimit

import (
	"context"
	"time"
)

// Counter records hits in a fixed window and returns the running count.
type Counter interface {
	Hit(ctx context.Context, client string, windowStart time.Time, window time.Duration) (int64, error)
}
