package structurer

import (
	"errors"
	"strings"
	"testing"

	"github.com/hmercer/tapread/internal/model"
)

// fakeSource lets tests drive Extract with hand-built pages.
type fakeSource struct {
	pages []RawPage
	err   error
}

func (f *fakeSource) Pages() ([]RawPage, error) {
	return f.pages, f.err
}

func geomRun(text string, x, y, w, h, size float64, bold bool) RawRun {
	return RawRun{
		Text:        text,
		Bounds:      model.NewBoundingBox(x, y, w, h),
		Font:        model.FontDescriptor{Size: size, Weight: model.WeightRegular, Bold: bold},
		HasGeometry: true,
	}
}

func TestExtract_GeometryPathClassifiesByFontSize(t *testing.T) {
	src := &fakeSource{pages: []RawPage{{
		Width:  600,
		Height: 800,
		Runs: []RawRun{
			geomRun("Chapter One", 50, 40, 300, 30, 24, false),
			geomRun("A quieter heading", 50, 90, 280, 20, 15, false),
			geomRun("Body text line one for the page.", 50, 130, 500, 14, 12, false),
			geomRun("Body text line two continues on.", 50, 150, 500, 14, 12, false),
			geomRun("Body text line three wraps up here.", 50, 170, 500, 14, 12, false),
		},
	}}}

	doc, err := Extract(src, Options{Seed: "doc-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}

	els := doc.Pages[0].Elements
	if len(els) != 5 {
		t.Fatalf("expected 5 elements, got %d", len(els))
	}
	if els[0].Kind != model.KindTitle {
		t.Errorf("expected first element Title, got %s", els[0].Kind)
	}
	if els[1].Kind != model.KindSubtitle {
		t.Errorf("expected second element Subtitle, got %s", els[1].Kind)
	}
	for i := 2; i < 5; i++ {
		if els[i].Kind != model.KindParagraph {
			t.Errorf("element %d: expected Paragraph, got %s", i, els[i].Kind)
		}
	}

	// Original geometry is preserved verbatim.
	if els[0].Bounds.X != 50 || els[0].Bounds.Y != 40 || els[0].Bounds.Width != 300 {
		t.Errorf("title bounds not preserved: %+v", els[0].Bounds)
	}
	for _, el := range els {
		if el.Bounds.IsDegenerate() {
			t.Errorf("element %q has degenerate bounds", el.Content)
		}
	}
}

func TestExtract_BoldRunPromotedAtLowerRatio(t *testing.T) {
	src := &fakeSource{pages: []RawPage{{
		Width: 600, Height: 800,
		Runs: []RawRun{
			geomRun("Bold Heading", 50, 40, 200, 22, 16, true), // 1.33x body, bold
			geomRun("Body one for dominant size counting.", 50, 80, 500, 14, 12, false),
			geomRun("Body two for dominant size counting.", 50, 100, 500, 14, 12, false),
		},
	}}}

	doc, err := Extract(src, Options{Seed: "doc-bold"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind := doc.Pages[0].Elements[0].Kind; kind != model.KindTitle {
		t.Errorf("expected bold oversized run to classify as Title, got %s", kind)
	}
}

func TestExtract_BulletAndQuoteRuns(t *testing.T) {
	src := &fakeSource{pages: []RawPage{{
		Width: 600, Height: 800,
		Runs: []RawRun{
			geomRun("Plain paragraph text here to set the body size.", 50, 40, 500, 14, 12, false),
			geomRun("• first bullet item", 70, 70, 300, 14, 12, false),
			geomRun("2. second numbered item", 70, 90, 300, 14, 12, false),
			geomRun("“All the world's a stage”", 50, 120, 300, 14, 12, false),
		},
	}}}

	doc, err := Extract(src, Options{Seed: "doc-kinds"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	els := doc.Pages[0].Elements
	if els[1].Kind != model.KindList || els[2].Kind != model.KindList {
		t.Errorf("expected bullet runs to classify as List, got %s / %s", els[1].Kind, els[2].Kind)
	}
	if els[3].Kind != model.KindQuote {
		t.Errorf("expected quoted run to classify as Quote, got %s", els[3].Kind)
	}
}

func TestExtract_ZeroPagesReturnsExtractionError(t *testing.T) {
	_, err := Extract(&fakeSource{}, Options{})
	if err == nil {
		t.Fatal("expected error for zero pages")
	}
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *ExtractionError, got %T", err)
	}
}

func TestExtract_PageNumbersContiguousFromOne(t *testing.T) {
	src := &fakeSource{pages: []RawPage{
		{Width: 600, Height: 800, Runs: []RawRun{geomRun("page one text", 0, 0, 100, 14, 12, false)}},
		{Width: 600, Height: 800, Runs: []RawRun{{Text: "   "}}}, // Empty page is dropped.
		{Width: 600, Height: 800, Runs: []RawRun{geomRun("page two text", 0, 0, 100, 14, 12, false)}},
	}}

	doc, err := Extract(src, Options{Seed: "doc-pages"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	for i, p := range doc.Pages {
		if p.Number != i+1 {
			t.Errorf("page %d: expected number %d, got %d", i, i+1, p.Number)
		}
	}
	if doc.Metadata.TotalPages != 2 {
		t.Errorf("expected metadata total pages 2, got %d", doc.Metadata.TotalPages)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	build := func() *model.StructuredText {
		src := &fakeSource{pages: []RawPage{{
			Width: 600, Height: 800,
			Runs: []RawRun{
				geomRun("Stable Title", 50, 40, 300, 30, 24, false),
				geomRun("Stable body content on the page.", 50, 90, 500, 14, 12, false),
			},
		}}}
		doc, err := Extract(src, Options{Seed: "doc-idem"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return doc
	}

	a, b := build(), build()
	if len(a.Pages) != len(b.Pages) || a.ElementCount() != b.ElementCount() {
		t.Fatal("structure differs between runs")
	}
	for pi := range a.Pages {
		for ei := range a.Pages[pi].Elements {
			ea, eb := a.Pages[pi].Elements[ei], b.Pages[pi].Elements[ei]
			if ea.ID != eb.ID || ea.Kind != eb.Kind || ea.Bounds != eb.Bounds || ea.Content != eb.Content {
				t.Errorf("element %d/%d differs between runs: %+v vs %+v", pi, ei, ea, eb)
			}
		}
	}
}

func TestExtractFlat_TitleThenParagraph(t *testing.T) {
	doc, err := ExtractFlat("Title\n\nBody line one. Body line two.", Options{Seed: "flat-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	els := doc.Pages[0].Elements
	if len(els) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(els))
	}
	if els[0].Kind != model.KindTitle {
		t.Errorf("expected first element Title, got %s", els[0].Kind)
	}
	if els[1].Kind != model.KindParagraph {
		t.Errorf("expected second element Paragraph, got %s", els[1].Kind)
	}
	for _, el := range els {
		if el.Bounds.IsDegenerate() {
			t.Errorf("element %q has degenerate synthesized bounds", el.Content)
		}
	}
}

func TestExtractFlat_EmptyInputIsExtractionError(t *testing.T) {
	_, err := ExtractFlat("   \n\n  ", Options{})
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestExtractFlat_BandPagination(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("Paragraph content number something.\n\n")
	}

	doc, err := ExtractFlat(sb.String(), Options{Seed: "flat-pag", BandsPerPage: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("expected 3 pages with 10 bands each, got %d", len(doc.Pages))
	}
	for i, p := range doc.Pages {
		if p.Number != i+1 {
			t.Errorf("page %d: expected number %d, got %d", i, i+1, p.Number)
		}
		if len(p.Elements) != 10 {
			t.Errorf("page %d: expected 10 elements, got %d", i, len(p.Elements))
		}
	}
}

func TestDominantBodySize_WeightedByTextLength(t *testing.T) {
	runs := []RawRun{
		{Text: "Big", Font: model.FontDescriptor{Size: 24}},
		{Text: strings.Repeat("body ", 50), Font: model.FontDescriptor{Size: 12}},
		{Text: strings.Repeat("more body ", 30), Font: model.FontDescriptor{Size: 12}},
	}
	if got := dominantBodySize(runs); got != 12 {
		t.Errorf("expected dominant size 12, got %v", got)
	}
}

func TestForFile_Dispatch(t *testing.T) {
	for _, name := range []string{"a.txt", "b.md", "c.html", "d.pdf", "e.docx"} {
		if !IsSupportedExtension(name) {
			t.Errorf("expected %s to be supported", name)
		}
		if _, err := ForFile(strings.NewReader(""), name, Options{}); err != nil {
			t.Errorf("ForFile(%s): unexpected error: %v", name, err)
		}
	}
	if IsSupportedExtension("f.epub") {
		t.Error("expected .epub to be unsupported")
	}
	if _, err := ForFile(strings.NewReader(""), "f.epub", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
