package docstore

import (
	"testing"
	"time"

	"github.com/hmercer/tapread/internal/cache"
	"github.com/hmercer/tapread/internal/structurer"
)

const sampleText = "Chapter One\n\nThe quick brown fox jumps over the lazy dog.\n\nAnother paragraph follows here."

func putSample(t *testing.T, s *Store, id string) {
	t.Helper()
	opts := structurer.DefaultOptions()
	opts.Seed = id
	text, err := structurer.ExtractFlat(sampleText, opts)
	if err != nil {
		t.Fatalf("ExtractFlat: %v", err)
	}
	s.Put(id, "sample.txt", []byte(sampleText), text, opts, true)
}

func TestPutGetRoundtrip(t *testing.T) {
	s := NewStore(nil)
	putSample(t, s, "doc-1")

	text, err := s.Get("doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if text.ElementCount() != 3 {
		t.Fatalf("got %d elements, want 3", text.ElementCount())
	}
	meta, err := s.Meta("doc-1")
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if meta.Filename != "sample.txt" || meta.Pages != 1 || !meta.Flat {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestGetUnknown(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.Get("missing"); err == nil {
		t.Fatal("expected error for unknown document")
	}
}

func TestCriticalPressureDropsModelAndRebuildIsIdentical(t *testing.T) {
	s := NewStore(nil)
	putSample(t, s, "doc-1")

	before, err := s.Get("doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	s.OnMemoryPressure(cache.PressureCritical)
	if s.ModelCount() != 0 {
		t.Fatalf("critical pressure left %d models", s.ModelCount())
	}
	if s.Len() != 1 {
		t.Fatalf("raw bytes must survive pressure, len=%d", s.Len())
	}

	after, err := s.Get("doc-1")
	if err != nil {
		t.Fatalf("Get after pressure: %v", err)
	}
	if after.ElementCount() != before.ElementCount() {
		t.Fatalf("rebuild changed element count: %d vs %d", after.ElementCount(), before.ElementCount())
	}
	for p := range before.Pages {
		for i := range before.Pages[p].Elements {
			b := before.Pages[p].Elements[i]
			a := after.Pages[p].Elements[i]
			if a.ID != b.ID || a.Kind != b.Kind || a.Content != b.Content {
				t.Fatalf("rebuild diverged at page %d element %d: %+v vs %+v", p, i, a, b)
			}
		}
	}
}

func TestWarningSpareRecentlyReadModels(t *testing.T) {
	s := NewStore(nil)
	s.shedAge = time.Hour
	putSample(t, s, "doc-1")
	putSample(t, s, "doc-2")

	if _, err := s.Get("doc-1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	s.OnMemoryPressure(cache.PressureWarning)
	if s.ModelCount() != 2 {
		t.Fatalf("warning dropped recently read models, %d left", s.ModelCount())
	}

	// Age both entries past the shed threshold.
	s.mu.Lock()
	for _, e := range s.docs {
		e.lastAccess = time.Now().Add(-2 * time.Hour)
	}
	s.mu.Unlock()

	s.OnMemoryPressure(cache.PressureWarning)
	if s.ModelCount() != 0 {
		t.Fatalf("warning should shed stale models, %d left", s.ModelCount())
	}
}

func TestFindByHashDedup(t *testing.T) {
	s := NewStore(nil)
	putSample(t, s, "doc-1")

	id, ok := s.FindByHash(ContentHashHex([]byte(sampleText)))
	if !ok || id != "doc-1" {
		t.Fatalf("FindByHash got %q %v", id, ok)
	}
	if _, ok := s.FindByHash("deadbeef"); ok {
		t.Fatal("unexpected hash match")
	}
}

func TestDelete(t *testing.T) {
	s := NewStore(nil)
	putSample(t, s, "doc-1")
	s.Delete("doc-1")
	if s.Len() != 0 {
		t.Fatalf("len=%d after delete", s.Len())
	}
}
