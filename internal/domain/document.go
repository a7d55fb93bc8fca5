package domain

import "context"

// Decoder turns raw bytes into a Document.
// Implementations return an error wrapping ErrDecode for unparseable input.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (Document, error)
}

// Document is a decoded PDF owned by a single request.
// Close releases native resources; the Document must not be used afterwards.
type Document interface {
	PageCount() int
	Page(index int) (Page, error)
	Close() error
}

// Page is a zero-based page view of its parent Document.
type Page interface {
	Index() int
	// EmbeddedText returns the stored text layer. Empty is a valid result.
	EmbeddedText(ctx context.Context) (string, error)
	// Render rasterizes the page at the given scale over the 72-dpi native space.
	Render(ctx context.Context, scale float64) (RasterImage, error)
}

// Number returns the 1-based page number used in labels.
func Number(p Page) int { return p.Index() + 1 }
