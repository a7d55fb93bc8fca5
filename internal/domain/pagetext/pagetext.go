// Package pagetext composes per-page text blocks and the document-level aggregate.
//
// Merge policy: embedded text first, OCR text second, both verbatim.
// No deduplication is performed. A page with a real text layer over a scanned
// background will show its content twice; consumers should expect this.
package pagetext

import (
	"fmt"
	"strings"
)

// labelFormat is the page boundary marker, numbered from 1.
const labelFormat = "\n--- PAGE %d ---\n"

// PageText is the merge result for one page.
type PageText struct {
	Number   int
	Embedded string
	OCR      string
	// Degraded is set when recognition failed and only embedded text was kept.
	Degraded bool
}

// Merge combines a page's embedded text and OCR fragments.
// Fragments are joined with newlines in the order given.
func Merge(number int, embedded string, fragments []string) PageText {
	pt := PageText{Number: number}
	if strings.TrimSpace(embedded) != "" {
		pt.Embedded = embedded
	}
	if joined := strings.Join(fragments, "\n"); strings.TrimSpace(joined) != "" {
		pt.OCR = joined
	}
	return pt
}

// HasEmbedded reports whether the page contributes an embedded block.
func (p PageText) HasEmbedded() bool { return p.Embedded != "" }

// HasOCR reports whether the page contributes an OCR block.
func (p PageText) HasOCR() bool { return p.OCR != "" }

// Empty reports whether the page contributes only its label.
func (p PageText) Empty() bool { return !p.HasEmbedded() && !p.HasOCR() }

// String renders the labeled block.
func (p PageText) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, labelFormat, p.Number)
	if p.HasEmbedded() {
		b.WriteString(p.Embedded)
		b.WriteByte('\n')
	}
	if p.HasOCR() {
		b.WriteString(p.OCR)
		b.WriteByte('\n')
	}
	return b.String()
}

// Label returns the boundary marker for a 1-based page number.
func Label(number int) string {
	return fmt.Sprintf(labelFormat, number)
}

// Join renders pages in the given order, separated by a newline.
func Join(pages []PageText) string {
	blocks := make([]string, len(pages))
	for i, p := range pages {
		blocks[i] = p.String()
	}
	return strings.Join(blocks, "\n")
}
