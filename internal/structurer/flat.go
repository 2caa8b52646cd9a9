package structurer

import (
	"bufio"
	"io"
	"strings"

	"github.com/hmercer/tapread/internal/model"
)

// TextSource reads plain text with no geometry. Paragraphs are split on
// blank-line boundaries.
type TextSource struct {
	paragraphs []string
}

// NewTextSource reads all of r and splits it into paragraphs.
func NewTextSource(r io.Reader) (*TextSource, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &TextSource{paragraphs: paragraphs}, nil
}

func (s *TextSource) Pages() ([]RawPage, error) {
	runs := make([]RawRun, 0, len(s.paragraphs))
	for _, p := range s.paragraphs {
		runs = append(runs, RawRun{Text: p})
	}
	return []RawPage{{Runs: runs}}, nil
}

// ExtractFlat structures a flat string with no geometry at all. This is the
// degradation target when a paged source cannot be opened: the first
// paragraph becomes the title, the rest become paragraphs, and geometry is
// synthesized as stacked bands.
func ExtractFlat(text string, opts Options) (*model.StructuredText, error) {
	src, err := NewTextSource(strings.NewReader(text))
	if err != nil {
		return nil, &ExtractionError{Reason: "cannot read text", Err: err}
	}
	return Extract(src, opts)
}
