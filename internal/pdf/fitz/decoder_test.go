package fitz

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/pdfocr/internal/domain"
	"github.com/kailas-cloud/pdfocr/internal/pdf/pdftest"
)

func TestDecode_Empty(t *testing.T) {
	_, err := NewDecoder().Decode(context.Background(), nil)
	if !errors.Is(err, domain.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, err := NewDecoder().Decode(context.Background(), []byte("this is not a pdf at all"))
	if !errors.Is(err, domain.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDecode_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDecoder().Decode(ctx, []byte("%PDF-1.4"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDocument_PageOutOfRange(t *testing.T) {
	d := &Document{pages: 2}

	for _, idx := range []int{-1, 2, 10} {
		if _, err := d.Page(idx); !errors.Is(err, domain.ErrRender) {
			t.Errorf("Page(%d): expected ErrRender, got %v", idx, err)
		}
	}
}

func TestPage_RenderRejectsBadScale(t *testing.T) {
	p := &Page{parent: &Document{pages: 1}}

	if _, err := p.Render(context.Background(), 0); !errors.Is(err, domain.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestPage_ClosedDocument(t *testing.T) {
	d := &Document{pages: 1, closed: true}
	p := &Page{parent: d}

	if _, err := p.EmbeddedText(context.Background()); !errors.Is(err, domain.ErrRender) {
		t.Fatalf("expected ErrRender on closed document, got %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestDecode_TextLayerAndRender(t *testing.T) {
	doc, err := NewDecoder().Decode(context.Background(), pdftest.Build("Intro"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defer func() { _ = doc.Close() }()

	if doc.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", doc.PageCount())
	}

	page, err := doc.Page(0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Index() != 0 {
		t.Errorf("Index = %d, want 0", page.Index())
	}

	text, err := page.EmbeddedText(context.Background())
	if err != nil {
		t.Fatalf("embedded text: %v", err)
	}
	if !strings.Contains(text, "Intro") {
		t.Errorf("embedded text = %q, want it to contain Intro", text)
	}

	img, err := page.Render(context.Background(), domain.RenderScale)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if math.Abs(img.DPI-domain.RenderDPI) > 1e-9 {
		t.Errorf("DPI = %f, want %f", img.DPI, domain.RenderDPI)
	}
	if img.Width != 2550 || img.Height != 3300 {
		t.Errorf("raster = %dx%d, want 2550x3300", img.Width, img.Height)
	}

	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	if err != nil {
		t.Fatalf("raster is not a PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != img.Width || b.Dy() != img.Height {
		t.Errorf("PNG bounds %v disagree with %dx%d", b, img.Width, img.Height)
	}
}

func TestDecode_MultiPageOrder(t *testing.T) {
	doc, err := NewDecoder().Decode(context.Background(), pdftest.Build("first", "", "third"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defer func() { _ = doc.Close() }()

	if doc.PageCount() != 3 {
		t.Fatalf("PageCount = %d, want 3", doc.PageCount())
	}

	want := []string{"first", "", "third"}
	for i, w := range want {
		page, err := doc.Page(i)
		if err != nil {
			t.Fatal(err)
		}
		text, err := page.EmbeddedText(context.Background())
		if err != nil {
			t.Fatalf("page %d: %v", i, err)
		}
		if got := strings.TrimSpace(text); got != w {
			t.Errorf("page %d text = %q, want %q", i, got, w)
		}
	}
}

func TestPage_RenderAfterClose(t *testing.T) {
	doc, err := NewDecoder().Decode(context.Background(), pdftest.Build("Intro"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	page, err := doc.Page(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := page.Render(context.Background(), domain.RenderScale); !errors.Is(err, domain.ErrRender) {
		t.Errorf("expected ErrRender after close, got %v", err)
	}
}
