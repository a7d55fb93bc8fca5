package pdftest

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"testing"
)

func TestBuild_XrefOffsets(t *testing.T) {
	data := Build("Intro (draft)", "")

	if !bytes.HasPrefix(data, []byte("%PDF-1.4\n")) {
		t.Fatal("missing header")
	}

	m := regexp.MustCompile(`startxref\n(\d+)\n%%EOF\n$`).FindSubmatch(data)
	if m == nil {
		t.Fatal("missing startxref trailer")
	}
	xref, _ := strconv.Atoi(string(m[1]))
	if !bytes.HasPrefix(data[xref:], []byte("xref\n0 8\n")) {
		t.Fatalf("startxref %d does not point at the xref table", xref)
	}

	entries := regexp.MustCompile(`(\d{10}) 00000 n \n`).FindAllSubmatch(data[xref:], -1)
	if len(entries) != 7 {
		t.Fatalf("xref entries = %d, want 7", len(entries))
	}
	for i, e := range entries {
		off, _ := strconv.Atoi(string(e[1]))
		want := fmt.Sprintf("%d 0 obj\n", i+1)
		if !bytes.HasPrefix(data[off:], []byte(want)) {
			t.Errorf("object %d offset %d points at %q", i+1, off, data[off:off+len(want)])
		}
	}

	if !bytes.Contains(data, []byte(`(Intro \(draft\)) Tj`)) {
		t.Error("text not escaped in content stream")
	}
}
