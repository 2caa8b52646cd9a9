// Package lookup defines the boundary to the external definition and
// translation provider, plus the retry and latency-tracking machinery
// around it.
package lookup

import "context"

// Result is the payload shown in a tooltip. It is opaque to the cache.
type Result struct {
	Word        string `json:"word"`
	Definition  string `json:"definition,omitempty"`
	Translation string `json:"translation,omitempty"`
	Phonetic    string `json:"phonetic,omitempty"`
	Found       bool   `json:"found"`
}

// NotFound builds the explicit "no definition found" payload. Failed lookups
// always surface something; a tap is never silently dropped.
func NotFound(word string) *Result {
	return &Result{Word: word, Found: false}
}

// EstimateSize approximates the result's in-memory footprint for cache
// accounting.
func (r *Result) EstimateSize() int {
	if r == nil {
		return 0
	}
	return len(r.Word) + len(r.Definition) + len(r.Translation) + len(r.Phonetic) + 64
}

// Provider is the injected lookup boundary. Implementations must honor
// context cancellation; both calls may block on network I/O and may fail.
type Provider interface {
	// Define resolves a single word to a dictionary entry.
	Define(ctx context.Context, word string) (*Result, error)

	// Translate translates a sentence or paragraph.
	Translate(ctx context.Context, text string) (*Result, error)
}
