package model

import (
	"encoding/json"
	"testing"
)

func TestNewBoundingBox_ClampsNegativeDimensions(t *testing.T) {
	b := NewBoundingBox(10, 20, -5, -1)
	if b.Width != 0 || b.Height != 0 {
		t.Errorf("expected clamped dimensions, got %v x %v", b.Width, b.Height)
	}
	if !b.IsDegenerate() {
		t.Error("expected zero-area box to be degenerate")
	}
}

func TestBoundingBox_Contains(t *testing.T) {
	b := NewBoundingBox(10, 10, 100, 20)

	inside := []Point{{10, 10}, {110, 30}, {60, 20}}
	for _, p := range inside {
		if !b.Contains(p) {
			t.Errorf("expected %v to be inside %v", p, b)
		}
	}

	outside := []Point{{9, 10}, {111, 10}, {60, 31}, {60, 9}}
	for _, p := range outside {
		if b.Contains(p) {
			t.Errorf("expected %v to be outside %v", p, b)
		}
	}
}

func TestElementKind_IsLookupTarget(t *testing.T) {
	if KindTitle.IsLookupTarget() || KindSubtitle.IsLookupTarget() {
		t.Error("titles and subtitles must never be lookup targets")
	}
	for _, k := range []ElementKind{KindParagraph, KindQuote, KindList, KindOther} {
		if !k.IsLookupTarget() {
			t.Errorf("expected %s to be a lookup target", k)
		}
	}
}

func TestHintFor_CoversAllKinds(t *testing.T) {
	kinds := []ElementKind{KindTitle, KindSubtitle, KindParagraph, KindQuote, KindList, KindOther}
	for _, k := range kinds {
		h := HintFor(k)
		if h.SizeScale <= 0 {
			t.Errorf("kind %s: expected positive size scale, got %v", k, h.SizeScale)
		}
	}
	if !HintFor(KindTitle).Bold {
		t.Error("expected title hint to be bold")
	}
}

func TestWeightFromName(t *testing.T) {
	cases := map[string]FontWeight{
		"Helvetica-Bold":       WeightBold,
		"Times-BoldItalic":     WeightBold,
		"Roboto-Black":         WeightBlack,
		"OpenSans-SemiBold":    WeightSemibold,
		"Lato-Light":           WeightLight,
		"Helvetica":            WeightRegular,
		"NotoSans-ExtraLight":  WeightUltraLight,
	}
	for name, want := range cases {
		if got := WeightFromName(name); got != want {
			t.Errorf("%s: expected %s, got %s", name, want, got)
		}
	}
}

func TestElementJSONUsesStringForms(t *testing.T) {
	el := TextElement{
		ID:      "a",
		Content: "Chapter One",
		Kind:    KindTitle,
		Font:    FontDescriptor{Size: 18, Weight: WeightBold},
	}
	data, err := json.Marshal(el)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["kind"] != "title" {
		t.Errorf(`expected kind "title", got %v`, out["kind"])
	}
	font := out["font"].(map[string]any)
	if font["weight"] != "bold" {
		t.Errorf(`expected weight "bold", got %v`, font["weight"])
	}

	var back TextElement
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if back.Kind != KindTitle || back.Font.Weight != WeightBold {
		t.Errorf("round trip lost enums: kind=%s weight=%s", back.Kind, back.Font.Weight)
	}
}

func TestStructuredText_ElementByIDAndCounts(t *testing.T) {
	doc := &StructuredText{
		Pages: []StructuredPage{
			{
				Number: 1,
				Elements: []TextElement{
					{ID: "a", Content: "First Title", Kind: KindTitle},
					{ID: "b", Content: "one two three", Kind: KindParagraph},
				},
			},
			{
				Number: 2,
				Elements: []TextElement{
					{ID: "c", Content: "four five", Kind: KindParagraph},
				},
			},
		},
	}

	el, ok := doc.ElementByID("b")
	if !ok || el.Content != "one two three" {
		t.Fatalf("expected element b, got %v (ok=%v)", el, ok)
	}
	if _, ok := doc.ElementByID("missing"); ok {
		t.Error("expected miss for unknown id")
	}
	if n := doc.ElementCount(); n != 3 {
		t.Errorf("expected 3 elements, got %d", n)
	}
	if n := doc.WordCount(); n != 7 {
		t.Errorf("expected 7 words, got %d", n)
	}
}
