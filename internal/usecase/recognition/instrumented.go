package recognition

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/domain"
	"github.com/kailas-cloud/pdfocr/internal/metrics"
)

// InstrumentedRecognizer wraps a Recognizer with metrics and logging.
type InstrumentedRecognizer struct {
	inner  domain.Recognizer
	engine string
	logger *zap.Logger
}

// NewInstrumentedRecognizer wraps a recognizer with observability.
func NewInstrumentedRecognizer(inner domain.Recognizer, engine string, logger *zap.Logger) *InstrumentedRecognizer {
	return &InstrumentedRecognizer{
		inner:  inner,
		engine: engine,
		logger: logger,
	}
}

// Recognize delegates to the inner recognizer and records the outcome.
func (r *InstrumentedRecognizer) Recognize(ctx context.Context, img domain.RasterImage) ([]string, error) {
	start := time.Now()

	fragments, err := r.inner.Recognize(ctx, img)

	duration := time.Since(start)
	metrics.PageStageDuration.WithLabelValues("recognize").Observe(duration.Seconds())

	if err != nil {
		metrics.RecognitionRequestsTotal.WithLabelValues(r.engine, "error").Inc()
		r.logger.Error("Recognition request failed",
			zap.String("engine", r.engine),
			zap.Duration("duration", duration),
			zap.Int("width", img.Width),
			zap.Int("height", img.Height),
			zap.Error(err),
		)
		return nil, fmt.Errorf("recognize (%s): %w", r.engine, err)
	}

	metrics.RecognitionRequestsTotal.WithLabelValues(r.engine, "success").Inc()
	r.logger.Debug("Recognition request completed",
		zap.String("engine", r.engine),
		zap.Duration("duration", duration),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Int("fragments", len(fragments)),
	)

	return fragments, nil
}

// HealthCheck delegates to the inner recognizer when it supports health checks.
func (r *InstrumentedRecognizer) HealthCheck(ctx context.Context) error {
	if hc, ok := r.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s health check: %w", r.engine, err)
		}
	}
	return nil
}
