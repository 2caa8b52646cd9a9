package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/hmercer/tapread/internal/docstore"
	"github.com/hmercer/tapread/internal/structurer"
)

func newTestWorker() (*Worker, *docstore.Store) {
	store := docstore.NewStore(nil)
	return NewWorker(store, nil, discardLogger(), structurer.DefaultOptions()), store
}

func newJob(id, filename string, data []byte) *Job {
	j := &Job{
		ID:        "job-" + id,
		DocID:     id,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	j.SetFileData(data)
	return j
}

func TestWorkerStructuresMarkdown(t *testing.T) {
	w, store := newTestWorker()
	job := newJob("doc-md", "notes.md", []byte("# A Heading\n\nSome body text for the reader.\n"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("got status %q (%v), want completed", snap.Status, snap.Errors)
	}
	if snap.Pages == 0 || snap.Words == 0 {
		t.Fatalf("counts not recorded: %+v", snap)
	}
	text, err := store.Get("doc-md")
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	if text.ElementCount() != 2 {
		t.Fatalf("got %d elements, want heading plus paragraph", text.ElementCount())
	}
}

func TestWorkerFallsBackOnUnsupportedExtension(t *testing.T) {
	w, store := newTestWorker()
	job := newJob("doc-log", "trace.log", []byte("first line of output\n\nsecond block of output\n"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFallback {
		t.Fatalf("got status %q, want completed_fallback", snap.Status)
	}
	if _, err := store.Get("doc-log"); err != nil {
		t.Fatalf("fallback document not stored: %v", err)
	}
}

func TestWorkerFailsOnBinaryGarbage(t *testing.T) {
	w, _ := newTestWorker()
	job := newJob("doc-bin", "image.xyz", []byte{0xff, 0xfe, 0x00, 0x81, 0x92})

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("got status %q, want failed", snap.Status)
	}
	if len(snap.Errors) == 0 {
		t.Fatal("expected a recorded error")
	}
}

func TestWorkerDeduplicatesByContentHash(t *testing.T) {
	w, store := newTestWorker()
	data := []byte("# Same Doc\n\nIdentical bytes both times.\n")

	w.Process(context.Background(), newJob("doc-a", "same.md", data))
	second := newJob("doc-b", "same.md", data)
	w.Process(context.Background(), second)

	snap := second.Snapshot()
	if snap.Status != StatusCompleted || snap.Phase != "dedup" {
		t.Fatalf("got %q/%q, want completed/dedup", snap.Status, snap.Phase)
	}
	if snap.DocID != "doc-a" {
		t.Fatalf("dedup should point at the existing doc, got %q", snap.DocID)
	}
	if store.Len() != 1 {
		t.Fatalf("store has %d documents, want 1", store.Len())
	}
}

func TestJobSnapshotSafeDuringDedup(t *testing.T) {
	w, _ := newTestWorker()
	data := []byte("# Same Doc\n\nIdentical bytes both times.\n")
	w.Process(context.Background(), newJob("doc-a", "same.md", data))

	job := newJob("doc-b", "same.md", data)
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Status polling races the dedup rewrite of DocID.
		for i := 0; i < 200; i++ {
			job.Snapshot()
		}
	}()
	w.Process(context.Background(), job)
	<-done

	if snap := job.Snapshot(); snap.DocID != "doc-a" {
		t.Fatalf("dedup should point at the existing doc, got %q", snap.DocID)
	}
}

func TestOrchestratorQueueFull(t *testing.T) {
	store := docstore.NewStore(nil)
	o := NewOrchestrator(testConfig(1, 1), store, nil, discardLogger())
	// Workers never started, so the single queue slot fills up.
	if err := o.Submit(newJob("q-1", "a.txt", []byte("x"))); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	job := newJob("q-2", "b.txt", []byte("y"))
	if err := o.Submit(job); err == nil {
		t.Fatal("expected queue full error")
	}
	if job.Snapshot().Status != StatusFailed {
		t.Fatalf("rejected job status %q, want failed", job.Snapshot().Status)
	}
}

func TestOrchestratorProcessesSubmittedJob(t *testing.T) {
	store := docstore.NewStore(nil)
	o := NewOrchestrator(testConfig(2, 16), store, nil, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := newJob("run-1", "notes.md", []byte("# Title\n\nBody text.\n"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if s := o.GetJob(job.ID).Snapshot(); s.Status == StatusCompleted {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job never completed: %+v", o.GetJob(job.ID).Snapshot())
}
