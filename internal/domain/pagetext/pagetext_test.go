package pagetext

import (
	"strings"
	"testing"
)

func TestMerge_EmbeddedOnly(t *testing.T) {
	pt := Merge(1, "Intro", nil)

	if !pt.HasEmbedded() || pt.HasOCR() {
		t.Fatalf("unexpected blocks: %+v", pt)
	}
	want := "\n--- PAGE 1 ---\nIntro\n"
	if got := pt.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMerge_OCROnly(t *testing.T) {
	pt := Merge(2, "", []string{"HELLO", "WORLD"})

	want := "\n--- PAGE 2 ---\nHELLO\nWORLD\n"
	if got := pt.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMerge_BothKeepsOrderAndDuplicates(t *testing.T) {
	pt := Merge(3, "Conclusion", []string{"Conclusion"})

	want := "\n--- PAGE 3 ---\nConclusion\nConclusion\n"
	if got := pt.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMerge_EmbeddedKeptUntrimmed(t *testing.T) {
	pt := Merge(1, "  padded text \n", nil)

	if pt.Embedded != "  padded text \n" {
		t.Errorf("embedded text changed: %q", pt.Embedded)
	}
	if !strings.Contains(pt.String(), "  padded text \n\n") {
		t.Errorf("rendered block lost whitespace: %q", pt.String())
	}
}

func TestMerge_BlankInputsGiveLabelOnly(t *testing.T) {
	tests := []struct {
		name      string
		embedded  string
		fragments []string
	}{
		{"nothing", "", nil},
		{"whitespace embedded", " \n\t", nil},
		{"blank fragments", "", []string{"", "  "}},
		{"both blank", "\n", []string{"\n"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pt := Merge(4, tc.embedded, tc.fragments)
			if !pt.Empty() {
				t.Fatalf("expected empty page, got %+v", pt)
			}
			if got := pt.String(); got != Label(4) {
				t.Errorf("String() = %q, want %q", got, Label(4))
			}
		})
	}
}

func TestJoin_PreservesOrder(t *testing.T) {
	pages := []PageText{
		Merge(1, "Intro", nil),
		Merge(2, "", nil),
		Merge(3, "Conclusion", []string{"Conclusion"}),
	}

	got := Join(pages)
	want := "\n--- PAGE 1 ---\nIntro\n" +
		"\n" +
		"\n--- PAGE 2 ---\n" +
		"\n" +
		"\n--- PAGE 3 ---\nConclusion\nConclusion\n"
	if got != want {
		t.Errorf("Join() =\n%q\nwant\n%q", got, want)
	}

	i1 := strings.Index(got, "PAGE 1")
	i2 := strings.Index(got, "PAGE 2")
	i3 := strings.Index(got, "PAGE 3")
	if !(i1 < i2 && i2 < i3) {
		t.Errorf("labels out of order: %d %d %d", i1, i2, i3)
	}
}

func TestJoin_Empty(t *testing.T) {
	if got := Join(nil); got != "" {
		t.Errorf("Join(nil) = %q, want empty", got)
	}
}
