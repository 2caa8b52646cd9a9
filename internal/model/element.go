package model

import "encoding/json"

// ElementKind is the semantic type of a text run.
type ElementKind int

const (
	KindParagraph ElementKind = iota
	KindTitle
	KindSubtitle
	KindQuote
	KindList
	KindOther
)

func (k ElementKind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindSubtitle:
		return "subtitle"
	case KindParagraph:
		return "paragraph"
	case KindQuote:
		return "quote"
	case KindList:
		return "list"
	default:
		return "other"
	}
}

// MarshalJSON emits the string form so payloads read "kind": "title" rather
// than a bare int.
func (k ElementKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ElementKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = KindFromString(s)
	return nil
}

// KindFromString maps a kind name back to its value. Unknown names map to
// KindOther.
func KindFromString(s string) ElementKind {
	switch s {
	case "title":
		return KindTitle
	case "subtitle":
		return KindSubtitle
	case "paragraph":
		return KindParagraph
	case "quote":
		return KindQuote
	case "list":
		return KindList
	default:
		return KindOther
	}
}

// IsLookupTarget reports whether taps on elements of this kind are eligible
// for word lookup. Titles and subtitles never are.
func (k ElementKind) IsLookupTarget() bool {
	return k != KindTitle && k != KindSubtitle
}

// RenderHint tells the rendering collaborator how to emphasize an element.
// It is derived data only; the core never dispatches on it.
type RenderHint struct {
	SizeScale float64 `json:"size_scale"` // Multiplier over the body size.
	Bold      bool    `json:"bold"`
	Italic    bool    `json:"italic"`
	Indent    bool    `json:"indent"`
}

var renderHints = map[ElementKind]RenderHint{
	KindTitle:     {SizeScale: 1.6, Bold: true},
	KindSubtitle:  {SizeScale: 1.3, Bold: true},
	KindParagraph: {SizeScale: 1.0},
	KindQuote:     {SizeScale: 1.0, Italic: true, Indent: true},
	KindList:      {SizeScale: 1.0, Indent: true},
	KindOther:     {SizeScale: 1.0},
}

// HintFor returns the rendering hint for a kind.
func HintFor(k ElementKind) RenderHint {
	if h, ok := renderHints[k]; ok {
		return h
	}
	return renderHints[KindOther]
}

// TextElement is a single typed, geometry-annotated text run. Created once
// per structuring pass and immutable thereafter; owned by its parent page.
type TextElement struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Kind    ElementKind    `json:"kind"`
	Bounds  BoundingBox    `json:"bounds"`
	Font    FontDescriptor `json:"font"`
	Level   int            `json:"level,omitempty"` // Heading depth, 0 when unknown.
}
