package pdfocr

import (
	"context"

	"github.com/kailas-cloud/pdfocr/internal/domain"
	"github.com/kailas-cloud/pdfocr/internal/domain/pagetext"
)

// Image is a rendered page handed to a Recognizer.
type Image struct {
	PNG    []byte
	Width  int
	Height int
	DPI    float64
}

// Recognizer turns a page image into text fragments in reading order.
// An image without text yields an empty slice and no error.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) ([]string, error)
}

// Page is the extracted text of one page.
type Page struct {
	Number   int    // 1-based
	Embedded string // embedded text layer, empty when blank
	OCR      string // recognized lines joined by newlines, empty when blank
	Degraded bool   // recognition or rendering failed; only Embedded is set
}

// String renders the page block as it appears in Result.Text.
func (p Page) String() string {
	return pagetext.PageText{
		Number:   p.Number,
		Embedded: p.Embedded,
		OCR:      p.OCR,
		Degraded: p.Degraded,
	}.String()
}

// Result is the extracted text of a document.
type Result struct {
	Text          string
	Pages         []Page
	DegradedPages []int
}

// HealthStatus represents the aggregated engine health.
type HealthStatus struct {
	Status string            // "ok", "error"
	Checks map[string]string // component → "ok"/"error"
}

// recognizerAdapter wraps a public Recognizer to satisfy domain.Recognizer.
type recognizerAdapter struct {
	inner Recognizer
}

func (a *recognizerAdapter) Recognize(ctx context.Context, img domain.RasterImage) ([]string, error) {
	return a.inner.Recognize(ctx, Image{
		PNG:    img.PNG,
		Width:  img.Width,
		Height: img.Height,
		DPI:    img.DPI,
	})
}

// HealthCheck forwards to the inner recognizer when it exposes one.
func (a *recognizerAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func resultFromDomain(pages []pagetext.PageText) []Page {
	out := make([]Page, len(pages))
	for i, p := range pages {
		out[i] = Page{
			Number:   p.Number,
			Embedded: p.Embedded,
			OCR:      p.OCR,
			Degraded: p.Degraded,
		}
	}
	return out
}
