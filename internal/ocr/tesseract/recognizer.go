// Package tesseract adapts the Tesseract OCR engine (gosseract) to domain.Recognizer.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/domain"
)

// Compile-time checks.
var (
	_ domain.Recognizer    = (*Recognizer)(nil)
	_ domain.HealthChecker = (*Recognizer)(nil)
)

var errClosed = errors.New("tesseract: recognizer closed")

// engine is the subset of *gosseract.Client used here.
type engine interface {
	SetImageFromBytes(data []byte) error
	GetBoundingBoxes(level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, error)
	Close() error
}

// Recognizer wraps one process-wide Tesseract client.
// The client holds mutable per-image state, so calls are serialized.
type Recognizer struct {
	mu     sync.Mutex
	client engine
	closed bool
	logger *zap.Logger
}

// Config holds engine settings.
type Config struct {
	// Languages defaults to domain.OCRLanguage.
	Languages []string
	Logger    *zap.Logger
}

// New initializes the engine once. The language set is fixed for the
// lifetime of the Recognizer.
func New(cfg Config) (*Recognizer, error) {
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{domain.OCRLanguage}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(langs...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language %v: %w", langs, err)
	}

	r, err := newRecognizer(client, logger)
	if err != nil {
		return nil, fmt.Errorf("load tesseract %v: %w", langs, err)
	}

	logger.Info("Tesseract engine initialized",
		zap.String("version", gosseract.Version()),
		zap.Strings("languages", langs),
	)

	return r, nil
}

// newRecognizer wraps client and runs one recognition on a blank image.
// gosseract loads the language model lazily on first use, so the warm-up
// surfaces a missing or broken model here instead of on the first page.
func newRecognizer(client engine, logger *zap.Logger) (*Recognizer, error) {
	r := &Recognizer{client: client, logger: logger}

	r.mu.Lock()
	err := r.warmUpLocked()
	r.mu.Unlock()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return r, nil
}

// blankPNG is a small white image used for warm-up and health checks.
var blankPNG = sync.OnceValue(func() []byte {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
})

func (r *Recognizer) warmUpLocked() error {
	_, err := r.recognizeLocked(blankPNG())
	return err
}

// Recognize implements domain.Recognizer. Fragments are text lines in engine order;
// blank lines are dropped.
func (r *Recognizer) Recognize(ctx context.Context, img domain.RasterImage) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	if img.Empty() {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errClosed
	}

	return r.recognizeLocked(img.PNG)
}

func (r *Recognizer) recognizeLocked(data []byte) ([]string, error) {
	if err := r.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("text lines: %w", err)
	}

	fragments := make([]string, 0, len(boxes))
	for _, b := range boxes {
		line := strings.TrimSpace(b.Word)
		if line == "" {
			continue
		}
		fragments = append(fragments, line)
	}
	return fragments, nil
}

// HealthCheck implements domain.HealthChecker by recognizing a blank image.
func (r *Recognizer) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.client == nil {
		return errClosed
	}
	if err := r.warmUpLocked(); err != nil {
		return fmt.Errorf("tesseract health check: %w", err)
	}
	return nil
}

// Close releases the engine. Safe to call more than once.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close tesseract: %w", err)
	}
	return nil
}
