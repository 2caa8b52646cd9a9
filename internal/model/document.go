package model

import (
	"strings"
	"sync"
	"time"
)

// StructuredPage holds the typed elements of one page in reading order.
// Page numbers are 1-based and contiguous within a document.
type StructuredPage struct {
	Number   int           `json:"number"`
	Elements []TextElement `json:"elements"`
	Bounds   BoundingBox   `json:"bounds"`
}

// TextMetadata is derived document-level data, recomputable from the pages
// and never mutated after creation.
type TextMetadata struct {
	TotalPages  int       `json:"total_pages"`
	ExtractedAt time.Time `json:"extracted_at"`
	Source      string    `json:"source,omitempty"`
	Language    string    `json:"language"`
	WordCount   int       `json:"word_count"`
}

// StructuredText is the root aggregate of a structured document. It owns all
// pages and elements (tree ownership, no back-references) and is immutable
// once built. It must be reconstructible on demand: consumers never assume
// it is the only copy of the document.
type StructuredText struct {
	Pages    []StructuredPage `json:"pages"`
	Metadata TextMetadata     `json:"metadata"`

	indexOnce sync.Once
	byID      map[string]*TextElement
}

// ElementByID returns the element with the given ID. The index is built once
// on first use; StructuredText is immutable so it never needs invalidation.
// Safe for concurrent readers.
func (t *StructuredText) ElementByID(id string) (*TextElement, bool) {
	t.indexOnce.Do(func() {
		t.byID = make(map[string]*TextElement)
		for pi := range t.Pages {
			for ei := range t.Pages[pi].Elements {
				el := &t.Pages[pi].Elements[ei]
				t.byID[el.ID] = el
			}
		}
	})
	el, ok := t.byID[id]
	return el, ok
}

// ElementCount returns the total number of elements across all pages.
func (t *StructuredText) ElementCount() int {
	n := 0
	for i := range t.Pages {
		n += len(t.Pages[i].Elements)
	}
	return n
}

// WordCount counts whitespace-delimited tokens across all elements.
func (t *StructuredText) WordCount() int {
	n := 0
	for pi := range t.Pages {
		for ei := range t.Pages[pi].Elements {
			n += len(strings.Fields(t.Pages[pi].Elements[ei].Content))
		}
	}
	return n
}
