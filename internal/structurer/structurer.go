// Package structurer turns raw paginated documents into the structured,
// geometry-annotated model consumed by the renderer and the token resolver.
package structurer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hmercer/tapread/internal/model"
)

// RawRun is a single text run reported by a document source. Geometry and
// font data are present only when the source can supply them.
type RawRun struct {
	Text        string
	Bounds      model.BoundingBox
	Font        model.FontDescriptor
	HasGeometry bool

	// Kind hint from markup-aware sources (HTML tags, DOCX styles, Markdown
	// nodes). Geometry sources leave HasHint false and rely on font heuristics.
	KindHint  model.ElementKind
	HintLevel int
	HasHint   bool
}

// RawPage is one page of raw runs in reading order.
type RawPage struct {
	Width  float64
	Height float64
	Runs   []RawRun
}

// Source is a paginated document handle.
type Source interface {
	Pages() ([]RawPage, error)
}

// Options controls a structuring pass.
type Options struct {
	// Seed identifies the document; element IDs are derived from it so that
	// rebuilding the same document yields identical IDs.
	Seed     string
	Language string

	// Band geometry synthesized for sources without real geometry.
	BandHeight   float64
	BandsPerPage int
	PageWidth    float64
	PageHeight   float64

	// LowMemory skips geometry merging and degrades to the flat path where
	// the source allows it. Toggled by the memory governor.
	LowMemory bool
}

// DefaultOptions returns the options used when a caller passes the zero value.
func DefaultOptions() Options {
	return Options{
		Language:     "en",
		BandHeight:   28,
		BandsPerPage: 24,
		PageWidth:    612,
		PageHeight:   792,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Language == "" {
		o.Language = d.Language
	}
	if o.BandHeight <= 0 {
		o.BandHeight = d.BandHeight
	}
	if o.BandsPerPage <= 0 {
		o.BandsPerPage = d.BandsPerPage
	}
	if o.PageWidth <= 0 {
		o.PageWidth = d.PageWidth
	}
	if o.PageHeight <= 0 {
		o.PageHeight = d.PageHeight
	}
	return o
}

// ExtractionError reports that a document could not be opened or yielded no
// usable pages. It is non-fatal: callers degrade to the flat-text path before
// surfacing a content-unavailable state.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return "extraction failed: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SupportedExtensions lists the file extensions this engine can handle.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate source for a filename.
func ForFile(r io.Reader, filename string, opts Options) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return NewTextSource(r)
	case ".md", ".markdown":
		return NewMarkdownSource(r)
	case ".html", ".htm":
		return NewHTMLSource(r)
	case ".pdf":
		return NewPDFSource(r, opts.LowMemory)
	case ".docx":
		return NewDOCXSource(r)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extract runs a full structuring pass over a source. It is a pure function
// of the source contents and options: no shared state is touched, and running
// it twice yields structurally identical output.
func Extract(src Source, opts Options) (*model.StructuredText, error) {
	opts = opts.withDefaults()

	rawPages, err := src.Pages()
	if err != nil {
		return nil, &ExtractionError{Reason: "cannot read document", Err: err}
	}

	rawPages = dropEmptyPages(rawPages)
	if len(rawPages) == 0 {
		return nil, &ExtractionError{Reason: "document yields zero pages"}
	}

	var pages []model.StructuredPage
	if hasAnyGeometry(rawPages) {
		pages = structureGeometryPages(rawPages, opts)
	} else {
		pages = paginateBands(flattenRuns(rawPages), opts)
	}

	doc := &model.StructuredText{Pages: pages}
	doc.Metadata = model.TextMetadata{
		TotalPages:  len(pages),
		ExtractedAt: time.Now().UTC(),
		Source:      opts.Seed,
		Language:    opts.Language,
		WordCount:   doc.WordCount(),
	}
	return doc, nil
}

// structureGeometryPages handles sources that report real run geometry. The
// original bounding rectangles are preserved verbatim: they are the anchor
// both the resolver and the renderer rely on.
func structureGeometryPages(rawPages []RawPage, opts Options) []model.StructuredPage {
	pages := make([]model.StructuredPage, 0, len(rawPages))
	for i, rp := range rawPages {
		number := i + 1 // Contiguous regardless of source numbering.

		width, height := rp.Width, rp.Height
		if width <= 0 {
			width = opts.PageWidth
		}
		if height <= 0 {
			height = opts.PageHeight
		}

		body := dominantBodySize(rp.Runs)
		page := model.StructuredPage{
			Number: number,
			Bounds: model.NewBoundingBox(0, 0, width, height),
		}

		var lastBottom float64
		for j, run := range rp.Runs {
			text := strings.TrimSpace(run.Text)
			if text == "" {
				continue
			}

			kind, level := classifyRun(run, body, width)

			bounds := run.Bounds
			if !run.HasGeometry || bounds.IsDegenerate() {
				// Stray run without usable geometry on a geometry page:
				// stack it below the last placed element.
				bounds = model.NewBoundingBox(0, lastBottom, width, opts.BandHeight)
			}
			lastBottom = bounds.Bottom()

			font := run.Font
			if font.Size <= 0 {
				font = model.DefaultFont()
			}

			page.Elements = append(page.Elements, model.TextElement{
				ID:      elementID(opts.Seed, number, j),
				Content: text,
				Kind:    kind,
				Bounds:  bounds,
				Font:    font,
				Level:   level,
			})
		}
		pages = append(pages, page)
	}
	return pages
}

// paginateBands synthesizes geometry for geometry-less runs by stacking
// fixed-height bands in document order, starting a new page every
// BandsPerPage bands. The rest of the pipeline needs no special-casing.
func paginateBands(runs []RawRun, opts Options) []model.StructuredPage {
	var pages []model.StructuredPage
	page := model.StructuredPage{Number: 1}
	band := 0

	flush := func() {
		if len(page.Elements) == 0 {
			return
		}
		height := float64(len(page.Elements)) * opts.BandHeight
		if height < opts.PageHeight {
			height = opts.PageHeight
		}
		page.Bounds = model.NewBoundingBox(0, 0, opts.PageWidth, height)
		pages = append(pages, page)
		page = model.StructuredPage{Number: page.Number + 1}
		band = 0
	}

	ordinal := 0
	for _, run := range runs {
		text := strings.TrimSpace(run.Text)
		if text == "" {
			continue
		}
		if band >= opts.BandsPerPage {
			flush()
		}

		kind, level := classifyRun(run, 0, opts.PageWidth)
		// With no markup hints at all, the very first run is the title.
		if !run.HasHint && ordinal == 0 {
			kind, level = model.KindTitle, 1
		}

		font := run.Font
		if font.Size <= 0 {
			font = model.DefaultFont()
		}

		page.Elements = append(page.Elements, model.TextElement{
			ID:      elementID(opts.Seed, page.Number, len(page.Elements)),
			Content: text,
			Kind:    kind,
			Bounds:  model.NewBoundingBox(0, float64(band)*opts.BandHeight, opts.PageWidth, opts.BandHeight),
			Font:    font,
			Level:   level,
		})
		band++
		ordinal++
	}
	flush()
	return pages
}

func hasAnyGeometry(pages []RawPage) bool {
	for _, p := range pages {
		for _, r := range p.Runs {
			if r.HasGeometry {
				return true
			}
		}
	}
	return false
}

func flattenRuns(pages []RawPage) []RawRun {
	var runs []RawRun
	for _, p := range pages {
		runs = append(runs, p.Runs...)
	}
	return runs
}

func dropEmptyPages(pages []RawPage) []RawPage {
	kept := pages[:0:0]
	for _, p := range pages {
		for _, r := range p.Runs {
			if strings.TrimSpace(r.Text) != "" {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}

// elementID derives a stable UUID from the document seed and the element's
// position, so rebuilding an evicted document reproduces the same IDs.
func elementID(seed string, page, ordinal int) string {
	name := fmt.Sprintf("%s/%d/%d", seed, page, ordinal)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
