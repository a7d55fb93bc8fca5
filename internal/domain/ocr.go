package domain

import "context"

// RasterImage is a transient PNG-encoded pixel buffer of one page.
type RasterImage struct {
	PNG    []byte
	Width  int
	Height int
	DPI    float64
}

// Empty reports whether the image carries no pixels.
func (r RasterImage) Empty() bool { return len(r.PNG) == 0 }

// Recognizer is the OCR engine contract: image in, ordered text fragments out.
// Fragments are in engine order and are treated as reading order.
type Recognizer interface {
	Recognize(ctx context.Context, img RasterImage) ([]string, error)
}

// HealthChecker verifies OCR engine availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
