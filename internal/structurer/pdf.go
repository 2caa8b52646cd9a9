package structurer

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/hmercer/tapread/internal/model"
)

// Y tolerance for grouping positioned text chunks into one line.
const pdfRowTolerance = 3.0

// Gap beyond this fraction of the font size inserts a word break when
// merging adjacent chunks on a line.
const pdfWordGapFraction = 0.3

// PDFSource reads a PDF and reports per-line runs with real geometry.
// This is the geometry-available structuring path.
type PDFSource struct {
	r         io.Reader
	lowMemory bool
}

// NewPDFSource wraps a PDF byte stream. In low-memory mode geometry merging
// is skipped and pages degrade to flat text runs.
func NewPDFSource(r io.Reader, lowMemory bool) (*PDFSource, error) {
	return &PDFSource{r: r, lowMemory: lowMemory}, nil
}

func (s *PDFSource) Pages() ([]RawPage, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "tapread-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, s.r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	var pages []RawPage
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		width, height := pdfPageSize(page)

		if s.lowMemory {
			text, err := page.GetPlainText(nil)
			if err != nil || strings.TrimSpace(text) == "" {
				continue
			}
			pages = append(pages, RawPage{
				Width:  width,
				Height: height,
				Runs:   flatParagraphRuns(text),
			})
			continue
		}

		runs := lineRuns(page.Content().Text, height)
		if len(runs) == 0 {
			continue
		}
		pages = append(pages, RawPage{Width: width, Height: height, Runs: runs})
	}
	return pages, nil
}

// lineRuns merges positioned text chunks into per-line runs. PDF geometry is
// bottom-up; the output is converted to the model's top-down coordinates.
func lineRuns(texts []pdflib.Text, pageHeight float64) []RawRun {
	var chunks []pdflib.Text
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		chunks = append(chunks, t)
	}
	if len(chunks) == 0 {
		return nil
	}

	// Group into rows by Y, then order rows top-down and chunks left-to-right.
	sort.SliceStable(chunks, func(i, j int) bool {
		if math.Abs(chunks[i].Y-chunks[j].Y) > pdfRowTolerance {
			return chunks[i].Y > chunks[j].Y // Higher Y = higher on page.
		}
		return chunks[i].X < chunks[j].X
	})

	var runs []RawRun
	var line []pdflib.Text
	flush := func() {
		if len(line) == 0 {
			return
		}
		runs = append(runs, mergeLine(line, pageHeight))
		line = nil
	}

	for _, c := range chunks {
		if len(line) > 0 && math.Abs(c.Y-line[0].Y) > pdfRowTolerance {
			flush()
		}
		line = append(line, c)
	}
	flush()
	return runs
}

func mergeLine(line []pdflib.Text, pageHeight float64) RawRun {
	var sb strings.Builder
	minX := line[0].X
	maxRight := line[0].X + line[0].W
	fontSize := line[0].FontSize
	fontName := line[0].Font
	baseY := line[0].Y

	var prevRight float64
	for i, c := range line {
		if i > 0 {
			gap := c.X - prevRight
			if gap > c.FontSize*pdfWordGapFraction && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(c.S)
		prevRight = c.X + c.W

		if c.X < minX {
			minX = c.X
		}
		if c.X+c.W > maxRight {
			maxRight = c.X + c.W
		}
		if c.FontSize > fontSize {
			fontSize = c.FontSize
			fontName = c.Font
		}
	}

	if fontSize <= 0 {
		fontSize = model.DefaultFont().Size
	}
	lineHeight := fontSize * 1.25

	weight := model.WeightFromName(fontName)
	return RawRun{
		Text: sb.String(),
		Bounds: model.NewBoundingBox(
			minX,
			pageHeight-baseY-fontSize, // Top-down Y of the line's top edge.
			maxRight-minX,
			lineHeight,
		),
		Font: model.FontDescriptor{
			Size:   fontSize,
			Weight: weight,
			Italic: strings.Contains(strings.ToLower(fontName), "italic") || strings.Contains(strings.ToLower(fontName), "oblique"),
			Bold:   weight >= model.WeightBold,
		},
		HasGeometry: true,
	}
}

// flatParagraphRuns splits plain page text into geometry-less paragraph runs.
func flatParagraphRuns(text string) []RawRun {
	var runs []RawRun
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para != "" {
			runs = append(runs, RawRun{Text: para})
		}
	}
	if len(runs) == 0 {
		runs = append(runs, RawRun{Text: strings.TrimSpace(text)})
	}
	return runs
}

// pdfPageSize reads the page MediaBox, following the parent chain when the
// attribute is inherited. Defaults to US Letter when absent.
func pdfPageSize(page pdflib.Page) (width, height float64) {
	width, height = 612, 792

	v := page.V
	for depth := 0; depth < 8 && !v.IsNull(); depth++ {
		mb := v.Key("MediaBox")
		if !mb.IsNull() && mb.Len() == 4 {
			w := mb.Index(2).Float64() - mb.Index(0).Float64()
			h := mb.Index(3).Float64() - mb.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return width, height
}
