// Package docstore holds structured documents in memory, keyed by document
// ID. The raw source bytes are always retained; the structured model is
// droppable under memory pressure and rebuilt on demand, which is safe
// because extraction is deterministic for a given source and seed.
package docstore

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hmercer/tapread/internal/cache"
	"github.com/hmercer/tapread/internal/model"
	"github.com/hmercer/tapread/internal/structurer"
)

// Meta describes a stored document without its content.
type Meta struct {
	ID          string    `json:"doc_id"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	Pages       int       `json:"pages"`
	Words       int       `json:"words"`
	Flat        bool      `json:"flat"`
	CreatedAt   time.Time `json:"created_at"`
}

type entry struct {
	meta       Meta
	raw        []byte
	opts       structurer.Options
	text       *model.StructuredText
	lastAccess time.Time
}

// Store is a thread-safe in-memory document registry.
type Store struct {
	mu   sync.Mutex
	docs map[string]*entry
	log  *slog.Logger

	// shedAge is how long a model may sit unread before a warning-level
	// pressure event is allowed to drop it.
	shedAge time.Duration
}

// NewStore builds an empty store.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		docs:    make(map[string]*entry),
		log:     log,
		shedAge: time.Minute,
	}
}

// Put registers a structured document together with the raw bytes it was
// extracted from. flat marks documents that went through the plain-text
// fallback, so rebuilds take the same path.
func (s *Store) Put(id, filename string, raw []byte, text *model.StructuredText, opts structurer.Options, flat bool) Meta {
	meta := Meta{
		ID:          id,
		Filename:    filename,
		ContentHash: ContentHashHex(raw),
		Pages:       text.Metadata.TotalPages,
		Words:       text.WordCount(),
		Flat:        flat,
		CreatedAt:   time.Now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = &entry{
		meta:       meta,
		raw:        raw,
		opts:       opts,
		text:       text,
		lastAccess: time.Now(),
	}
	return meta
}

// Get returns the structured document, rebuilding it from the raw bytes if
// a pressure event dropped the model.
func (s *Store) Get(id string) (*model.StructuredText, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %q not found", id)
	}
	e.lastAccess = time.Now()
	if e.text != nil {
		return e.text, nil
	}

	text, err := s.rebuild(e)
	if err != nil {
		return nil, fmt.Errorf("rebuild %q: %w", id, err)
	}
	e.text = text
	s.log.Info("rebuilt structured document", "doc_id", id, "pages", text.Metadata.TotalPages)
	return text, nil
}

// Meta returns the stored document's metadata.
func (s *Store) Meta(id string) (Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.docs[id]
	if !ok {
		return Meta{}, fmt.Errorf("document %q not found", id)
	}
	return e.meta, nil
}

// FindByHash returns the ID of a stored document with the given content
// hash, for upload deduplication.
func (s *Store) FindByHash(hash string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.docs {
		if e.meta.ContentHash == hash {
			return id, true
		}
	}
	return "", false
}

// Delete removes a document.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

// List returns metadata for every stored document.
func (s *Store) List() []Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Meta, 0, len(s.docs))
	for _, e := range s.docs {
		out = append(out, e.meta)
	}
	return out
}

// Len reports the number of stored documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// ModelCount reports how many documents currently hold a structured model.
func (s *Store) ModelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.docs {
		if e.text != nil {
			n++
		}
	}
	return n
}

// OnMemoryPressure drops structured models while keeping raw bytes. A
// warning sheds models that have not been read recently; a critical event
// sheds every model. Dropped models are rebuilt lazily on the next Get.
func (s *Store) OnMemoryPressure(level cache.PressureLevel) {
	if level == cache.PressureNormal {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.shedAge)
	dropped := 0
	for _, e := range s.docs {
		if e.text == nil {
			continue
		}
		if level == cache.PressureCritical || e.lastAccess.Before(cutoff) {
			e.text = nil
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Info("dropped structured models under pressure", "level", level.String(), "dropped", dropped)
	}
}

func (s *Store) rebuild(e *entry) (*model.StructuredText, error) {
	if e.meta.Flat {
		return structurer.ExtractFlat(string(e.raw), e.opts)
	}
	src, err := structurer.ForFile(bytes.NewReader(e.raw), e.meta.Filename, e.opts)
	if err != nil {
		return nil, err
	}
	return structurer.Extract(src, e.opts)
}
