package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/domain"
	"github.com/kailas-cloud/pdfocr/internal/metrics"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Service is a fixed-window per-client request limiter.
// Counter failures fail open: the request is allowed and the error logged.
type Service struct {
	counter Counter
	limit   int
	window  time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// New creates a limiter allowing limit requests per window per client.
func New(counter Counter, limit int, window time.Duration, logger *zap.Logger) *Service {
	return &Service{
		counter: counter,
		limit:   limit,
		window:  window,
		now:     time.Now,
		logger:  logger,
	}
}

// Allow records a request from client. Returns an error wrapping
// domain.ErrRateLimited when the client is over its budget for the window.
func (s *Service) Allow(ctx context.Context, client string) (Decision, error) {
	now := s.now().UTC()
	start := now.Truncate(s.window)
	d := Decision{Limit: s.limit, Remaining: s.limit, Reset: start.Add(s.window)}

	n, err := s.counter.Hit(ctx, client, start, s.window)
	if err != nil {
		s.logger.Warn("Rate limit counter unavailable, allowing request",
			zap.String("client", client),
			zap.Error(err),
		)
		return d, nil
	}

	remaining := s.limit - int(n)
	if remaining < 0 {
		remaining = 0
	}
	d.Remaining = remaining

	if int(n) > s.limit {
		metrics.RateLimitedTotal.Inc()
		return d, fmt.Errorf("client %s: %d requests in %s: %w", client, n, s.window, domain.ErrRateLimited)
	}
	return d, nil
}
