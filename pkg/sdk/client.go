package pdfocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/domain"
	"github.com/kailas-cloud/pdfocr/internal/ocr/tesseract"
	"github.com/kailas-cloud/pdfocr/internal/pdf/fitz"
	"github.com/kailas-cloud/pdfocr/internal/pdf/pdfcpu"
	"github.com/kailas-cloud/pdfocr/internal/transport/fetch"
	"github.com/kailas-cloud/pdfocr/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/pdfocr/internal/usecase/health"
)

// Internal interfaces for substitution in tests.
type extractionUseCase interface {
	Extract(ctx context.Context, data []byte) (extraction.Result, error)
	ExtractURL(ctx context.Context, url string) (extraction.Result, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the pdfocr SDK entry point. It is safe for concurrent use;
// the bundled Tesseract engine serializes recognition calls internally.
type Client struct {
	svc       extractionUseCase
	healthSvc healthUseCase
	closers   []func() error
	obs       *observer
}

// New creates a Client. One of WithTesseract or WithRecognizer is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	rec, closers, err := createRecognizer(cfg)
	if err != nil {
		return nil, err
	}

	return wireClient(cfg, rec, closers, obs), nil
}

// recognizer is the engine handle shared by extraction and health checks.
type recognizer interface {
	domain.Recognizer
	domain.HealthChecker
}

func createRecognizer(cfg *clientConfig) (recognizer, []func() error, error) {
	switch {
	case cfg.recognizer != nil:
		return &recognizerAdapter{inner: cfg.recognizer}, nil, nil
	case cfg.tesseract:
		t, err := tesseract.New(tesseract.Config{Languages: cfg.languages})
		if err != nil {
			return nil, nil, fmt.Errorf("pdfocr: load tesseract: %w", err)
		}
		return t, []func() error{t.Close}, nil
	default:
		return nil, nil, errors.New("pdfocr: recognizer required (use WithTesseract or WithRecognizer)")
	}
}

func wireClient(cfg *clientConfig, rec recognizer, closers []func() error, obs *observer) *Client {
	downloader := fetch.NewDownloader(fetch.Config{
		UserAgent:  cfg.userAgent,
		MaxRetries: cfg.maxRetries,
	})
	if cfg.httpClient != nil {
		downloader = downloader.WithHTTPClient(cfg.httpClient)
	}

	policy := extraction.PolicyDegrade
	if cfg.failOnRecognition {
		policy = extraction.PolicyFail
	}

	// The SDK reports through slog via the observer; the pipeline itself stays quiet.
	svc := extraction.New(fitz.NewDecoder(), rec, zap.NewNop()).
		WithFetcher(downloader).
		WithMaxPages(cfg.maxPages).
		WithPolicy(policy).
		WithPageTimeout(cfg.pageTimeout)
	if cfg.validateStructure {
		svc = svc.WithInspector(pdfcpu.NewInspector())
	}

	return &Client{
		svc:       svc,
		healthSvc: healthuc.New(nil, rec),
		closers:   closers,
		obs:       obs,
	}
}

// Extract extracts the text of an in-memory PDF.
func (c *Client) Extract(ctx context.Context, pdf []byte) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("extract", start, len(res.Pages), err) }()

	r, err := c.svc.Extract(ctx, pdf)
	if err != nil {
		return Result{}, fmt.Errorf("extract: %w", err)
	}
	return toResult(r), nil
}

// ExtractURL downloads a PDF over HTTP(S) and extracts its text.
func (c *Client) ExtractURL(ctx context.Context, url string) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("extract_url", start, len(res.Pages), err) }()

	r, err := c.svc.ExtractURL(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("extract url: %w", err)
	}
	return toResult(r), nil
}

// Health checks the OCR engine.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// Close releases the OCR engine. Safe to call more than once.
func (c *Client) Close() error {
	var errs []error
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func toResult(r extraction.Result) Result {
	return Result{
		Text:          r.Text,
		Pages:         resultFromDomain(r.Pages),
		DegradedPages: r.DegradedPages,
	}
}
