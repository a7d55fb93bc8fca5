// Package fitz decodes and renders PDF documents with MuPDF via go-fitz.
package fitz

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png" // DecodeConfig on rendered pages
	"sync"

	gofitz "github.com/gen2brain/go-fitz"

	"github.com/kailas-cloud/pdfocr/internal/domain"
)

// Compile-time checks.
var (
	_ domain.Decoder  = (*Decoder)(nil)
	_ domain.Document = (*Document)(nil)
	_ domain.Page     = (*Page)(nil)
)

// Decoder opens PDF bytes in memory.
type Decoder struct{}

// NewDecoder creates a MuPDF-backed decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode implements domain.Decoder.
func (d *Decoder) Decode(ctx context.Context, data []byte) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input: %w", domain.ErrDecode)
	}

	doc, err := gofitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %v: %w", err, domain.ErrDecode)
	}

	n := doc.NumPage()
	if n <= 0 {
		_ = doc.Close()
		return nil, fmt.Errorf("document has no pages: %w", domain.ErrDecode)
	}

	return &Document{doc: doc, pages: n}, nil
}

// Document wraps a go-fitz document. Pages share its handle.
type Document struct {
	mu     sync.Mutex
	doc    *gofitz.Document
	pages  int
	closed bool
}

// PageCount implements domain.Document.
func (d *Document) PageCount() int { return d.pages }

// Page implements domain.Document.
func (d *Document) Page(index int) (domain.Page, error) {
	if index < 0 || index >= d.pages {
		return nil, fmt.Errorf("page index %d out of range [0,%d): %w", index, d.pages, domain.ErrRender)
	}
	return &Page{parent: d, index: index}, nil
}

// Close implements domain.Document. Safe to call more than once.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.doc.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}

// withDoc runs fn against the open handle.
func (d *Document) withDoc(fn func(doc *gofitz.Document) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("document closed: %w", domain.ErrRender)
	}
	return fn(d.doc)
}

// Page is a view over one page of a Document.
type Page struct {
	parent *Document
	index  int
}

// Index implements domain.Page.
func (p *Page) Index() int { return p.index }

// EmbeddedText implements domain.Page. Pages without a text layer yield "".
func (p *Page) EmbeddedText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("embedded text: %w", err)
	}

	var text string
	err := p.parent.withDoc(func(doc *gofitz.Document) error {
		t, err := doc.Text(p.index)
		if err != nil {
			return fmt.Errorf("text page %d: %v: %w", p.index, err, domain.ErrRender)
		}
		text = t
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// Render implements domain.Page. The caller owns the returned buffer.
func (p *Page) Render(ctx context.Context, scale float64) (domain.RasterImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.RasterImage{}, fmt.Errorf("render: %w", err)
	}
	if scale <= 0 {
		return domain.RasterImage{}, fmt.Errorf("invalid scale %f: %w", scale, domain.ErrRender)
	}

	dpi := scale * domain.NativeDPI

	var png []byte
	err := p.parent.withDoc(func(doc *gofitz.Document) error {
		b, err := doc.ImagePNG(p.index, dpi)
		if err != nil {
			return fmt.Errorf("rasterize page %d: %v: %w", p.index, err, domain.ErrRender)
		}
		png = b
		return nil
	})
	if err != nil {
		return domain.RasterImage{}, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return domain.RasterImage{}, fmt.Errorf("inspect raster page %d: %v: %w", p.index, err, domain.ErrRender)
	}

	return domain.RasterImage{
		PNG:    png,
		Width:  cfg.Width,
		Height: cfg.Height,
		DPI:    dpi,
	}, nil
}
