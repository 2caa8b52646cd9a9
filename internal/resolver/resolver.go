// Package resolver maps a tap point inside a text element to the word the
// user intended to select. Layout is approximated from per-character widths;
// exact glyph metrics are not available outside the rendering layer.
package resolver

import (
	"strings"
	"unicode"

	"github.com/hmercer/tapread/internal/model"
)

// Glyph width is approximated as this fraction of the font size, with a
// floor so tiny fonts still produce usable ranges.
const (
	glyphWidthFactor = 0.5
	minGlyphWidth    = 3.0
	interWordGap     = 0.25 // Fraction of the glyph width between words.
)

// ResolveWord returns the word at point p in el's local coordinate space.
// The second return is false when no word can be attributed to the point.
func ResolveWord(el *model.TextElement, p model.Point) (string, bool) {
	if el == nil {
		return "", false
	}
	candidates := strings.Fields(el.Content)
	if len(candidates) == 0 {
		return "", false
	}

	if !el.Bounds.Contains(p) {
		return "", false
	}

	// Single-candidate fast path: no geometry math needed.
	if len(candidates) == 1 {
		return finish(candidates[0])
	}

	glyph := el.Font.Size * glyphWidthFactor
	if glyph < minGlyphWidth {
		glyph = minGlyphWidth
	}
	gap := glyph * interWordGap

	// The content may wrap inside the element; fold the tap's X onto the
	// running offset line by line.
	lineWidth := el.Bounds.Width
	totalWidth := runningWidth(candidates, glyph, gap)
	x := p.X - el.Bounds.X
	if totalWidth > lineWidth && lineWidth > 0 {
		lines := int(totalWidth/lineWidth) + 1
		lineHeight := el.Bounds.Height / float64(lines)
		if lineHeight > 0 {
			line := int((p.Y - el.Bounds.Y) / lineHeight)
			if line >= lines {
				line = lines - 1
			}
			x += float64(line) * lineWidth
		}
	}

	// Walk candidates left to right; the first range containing the point
	// wins, which keeps tie-breaking deterministic.
	offset := 0.0
	for _, cand := range candidates {
		width := float64(len([]rune(cand))) * glyph
		if x >= offset && x <= offset+width {
			return finish(cand)
		}
		offset += width + gap
	}

	// Rounding at line wraps can leave the point between ranges. Fall back
	// to the first lookup-worthy candidate.
	for _, cand := range candidates {
		cleaned := CleanToken(cand)
		if IsLookupCandidate(cleaned, el.Kind) {
			return cleaned, true
		}
	}
	return "", false
}

func finish(token string) (string, bool) {
	cleaned := CleanToken(token)
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

func runningWidth(candidates []string, glyph, gap float64) float64 {
	w := 0.0
	for i, c := range candidates {
		if i > 0 {
			w += gap
		}
		w += float64(len([]rune(c))) * glyph
	}
	return w
}

// CleanToken strips leading and trailing punctuation from a candidate,
// leaving the bare word.
func CleanToken(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
