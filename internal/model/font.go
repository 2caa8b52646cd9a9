package model

import (
	"encoding/json"
	"strings"
)

// FontWeight is one of the nine standard weight levels.
type FontWeight int

const (
	WeightUltraLight FontWeight = iota
	WeightThin
	WeightLight
	WeightRegular
	WeightMedium
	WeightSemibold
	WeightBold
	WeightHeavy
	WeightBlack
)

func (w FontWeight) String() string {
	switch w {
	case WeightUltraLight:
		return "ultralight"
	case WeightThin:
		return "thin"
	case WeightLight:
		return "light"
	case WeightRegular:
		return "regular"
	case WeightMedium:
		return "medium"
	case WeightSemibold:
		return "semibold"
	case WeightBold:
		return "bold"
	case WeightHeavy:
		return "heavy"
	case WeightBlack:
		return "black"
	default:
		return "regular"
	}
}

// MarshalJSON emits the string form so payloads read "weight": "bold" rather
// than a bare int.
func (w FontWeight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

func (w *FontWeight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*w = WeightFromName(s)
	return nil
}

// FontDescriptor captures the font attributes of a text run. Immutable once
// constructed.
type FontDescriptor struct {
	Size   float64    `json:"size"`
	Weight FontWeight `json:"weight"`
	Italic bool       `json:"italic"`
	Bold   bool       `json:"bold"`
}

// DefaultFont is the descriptor assigned to runs whose source supplies no
// font information (the flat-text fallback path).
func DefaultFont() FontDescriptor {
	return FontDescriptor{Size: 12, Weight: WeightRegular}
}

// WeightFromName maps a font name fragment to a weight level. PDF font names
// embed the weight as a suffix (e.g. "Helvetica-Bold", "Times-BoldItalic").
func WeightFromName(name string) FontWeight {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "black"):
		return WeightBlack
	case strings.Contains(lower, "heavy"):
		return WeightHeavy
	case strings.Contains(lower, "semibold"), strings.Contains(lower, "demibold"):
		return WeightSemibold
	case strings.Contains(lower, "bold"):
		return WeightBold
	case strings.Contains(lower, "medium"):
		return WeightMedium
	case strings.Contains(lower, "ultralight"), strings.Contains(lower, "extralight"):
		return WeightUltraLight
	case strings.Contains(lower, "thin"):
		return WeightThin
	case strings.Contains(lower, "light"):
		return WeightLight
	default:
		return WeightRegular
	}
}
