package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// store is the consumer interface for window counters (ISP).
type store interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store implements fixed-window hit counting on top of DB (INCRBY + EXPIRE NX).
type Store struct {
	store  store
	prefix string
}

// New creates a window counter store. Keys are namespaced with prefix.
func New(s store, prefix string) *Store {
	return &Store{store: s, prefix: prefix}
}

// Hit records one request for client in the window starting at windowStart
// and returns the number of hits in that window so far.
func (s *Store) Hit(ctx context.Context, client string, windowStart time.Time, window time.Duration) (int64, error) {
	key := s.key(client, windowStart)

	n, err := s.store.IncrBy(ctx, key, 1)
	if err != nil {
		return 0, fmt.Errorf("ratelimit INCRBY %s: %w", key, err)
	}

	// Keep the key a little past its window so late hits still land on it.
	if err := s.store.Expire(ctx, key, 2*window, true); err != nil {
		return 0, fmt.Errorf("ratelimit EXPIRE %s: %w", key, err)
	}

	return n, nil
}

// key follows the pattern {prefix}ratelimit:{client}:{window_unix}.
func (s *Store) key(client string, windowStart time.Time) string {
	return fmt.Sprintf("%sratelimit:%s:%d", s.prefix, client, windowStart.Unix())
}
