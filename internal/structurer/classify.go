package structurer

import (
	"regexp"
	"strings"

	"github.com/hmercer/tapread/internal/model"
)

// Font-size ratios over the dominant body size that promote a run to a
// heading. Bold runs are promoted at a lower threshold.
const (
	titleRatio     = 1.6
	boldTitleRatio = 1.3
	subtitleRatio  = 1.25
)

// Indent past this fraction of the page width marks a run as a quote.
const quoteIndentFraction = 0.15

var bulletPattern = regexp.MustCompile(`^\s*([\x{2022}\x{25E6}\x{25AA}\-\*\x{2013}]|\d{1,3}[.)])\s+`)

// dominantBodySize estimates the body text size of a page as the font size
// carrying the most characters. Returns 0 when no run reports a size.
func dominantBodySize(runs []RawRun) float64 {
	weights := make(map[float64]int)
	for _, r := range runs {
		if r.Font.Size <= 0 {
			continue
		}
		// Quantize to half points so tiny metric jitter maps to one bucket.
		size := float64(int(r.Font.Size*2+0.5)) / 2
		weights[size] += len(r.Text)
	}

	var best float64
	var bestWeight int
	for size, w := range weights {
		if w > bestWeight || (w == bestWeight && size < best) {
			best = size
			bestWeight = w
		}
	}
	return best
}

// classifyRun assigns an ElementKind to a raw run. Markup hints win outright;
// otherwise the decision is a heuristic over font size relative to the page's
// dominant body size, bullet markers, quoting, and indentation.
func classifyRun(run RawRun, bodySize, pageWidth float64) (model.ElementKind, int) {
	if run.HasHint {
		return run.KindHint, run.HintLevel
	}

	text := strings.TrimSpace(run.Text)

	if bulletPattern.MatchString(text) {
		return model.KindList, 0
	}
	if isQuoted(text) {
		return model.KindQuote, 0
	}

	if bodySize > 0 && run.Font.Size > 0 {
		ratio := run.Font.Size / bodySize
		switch {
		case ratio >= titleRatio, run.Font.Bold && ratio >= boldTitleRatio:
			return model.KindTitle, 1
		case ratio >= subtitleRatio:
			return model.KindSubtitle, 2
		}
	}

	if run.HasGeometry && pageWidth > 0 && run.Bounds.X >= pageWidth*quoteIndentFraction {
		return model.KindQuote, 0
	}

	return model.KindParagraph, 0
}

func isQuoted(text string) bool {
	if len(text) < 2 {
		return false
	}
	runes := []rune(text)
	first, last := runes[0], runes[len(runes)-1]
	opens := first == '"' || first == '“' || first == '«'
	closes := last == '"' || last == '”' || last == '»'
	return opens && closes
}
