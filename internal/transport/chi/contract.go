package chi

import (
	"context"

	"github.com/kailas-cloud/pdfocr/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/pdfocr/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/pdfocr/internal/usecase/ratelimit"
)

// Extractor runs the document pipeline for a remote document.
type Extractor interface {
	ExtractURL(ctx context.Context, url string) (extraction.Result, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Limiter decides whether a client may issue another request.
type Limiter interface {
	Allow(ctx context.Context, client string) (ratelimituc.Decision, error)
}
