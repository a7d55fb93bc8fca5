// Package fetch retrieves source documents over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/domain"
	"github.com/kailas-cloud/pdfocr/internal/metrics"
)

// DefaultUserAgent is a browser-like identification header; some hosts refuse bare clients.
const DefaultUserAgent = "Mozilla/5.0"

// Config holds downloader settings.
type Config struct {
	Timeout        time.Duration
	MaxBytes       int64
	UserAgent      string
	MaxRetries     int
	InitialBackoff time.Duration
	Logger         *zap.Logger
}

// Downloader fetches document bytes with bounded retry.
type Downloader struct {
	client         *http.Client
	userAgent      string
	maxBytes       int64
	maxRetries     int
	initialBackoff time.Duration
	logger         *zap.Logger
}

// NewDownloader creates a Downloader. Zero values fall back to defaults.
func NewDownloader(cfg Config) *Downloader {
	d := &Downloader{
		client:         &http.Client{Timeout: cfg.Timeout},
		userAgent:      cfg.UserAgent,
		maxBytes:       cfg.MaxBytes,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		logger:         cfg.Logger,
	}
	if d.client.Timeout <= 0 {
		d.client.Timeout = 30 * time.Second
	}
	if d.userAgent == "" {
		d.userAgent = DefaultUserAgent
	}
	if d.maxBytes <= 0 {
		d.maxBytes = 50 << 20
	}
	if d.maxRetries < 0 {
		d.maxRetries = 0
	}
	if d.initialBackoff <= 0 {
		d.initialBackoff = 200 * time.Millisecond
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// WithHTTPClient replaces the underlying client (its Timeout is kept as set by the caller).
func (d *Downloader) WithHTTPClient(c *http.Client) *Downloader {
	if c != nil {
		d.client = c
	}
	return d
}

// Fetch downloads rawURL. Every failure is a *domain.DownloadError.
// Transport errors, 429 and 5xx are retried; other statuses are final.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &domain.DownloadError{URL: rawURL, Err: errors.New("url must be absolute http(s)")}
	}

	var body []byte
	op := func() error {
		b, err := d.get(ctx, u.String())
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.initialBackoff
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(d.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		metrics.FetchRetriesTotal.Inc()
		d.logger.Warn("Download failed, retrying",
			zap.String("url", rawURL),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		var de *domain.DownloadError
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, &domain.DownloadError{URL: rawURL, Err: err}
	}

	metrics.FetchBytesTotal.Add(float64(len(body)))
	return body, nil
}

// get performs one attempt. Non-retryable failures are wrapped in backoff.Permanent.
func (d *Downloader) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(&domain.DownloadError{URL: rawURL, Err: err})
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		de := &domain.DownloadError{URL: rawURL, Err: err}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(de)
		}
		return nil, de
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		de := &domain.DownloadError{URL: rawURL, StatusCode: resp.StatusCode}
		if retryableStatus(resp.StatusCode) {
			return nil, de
		}
		return nil, backoff.Permanent(de)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, &domain.DownloadError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > d.maxBytes {
		return nil, backoff.Permanent(&domain.DownloadError{
			URL: rawURL,
			Err: fmt.Errorf("document exceeds %d bytes", d.maxBytes),
		})
	}
	return data, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
