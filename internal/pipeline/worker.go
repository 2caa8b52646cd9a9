package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/hmercer/tapread/internal/cache"
	"github.com/hmercer/tapread/internal/docstore"
	"github.com/hmercer/tapread/internal/model"
	"github.com/hmercer/tapread/internal/structurer"
)

// Worker structures a single document job.
type Worker struct {
	store    *docstore.Store
	governor *cache.Governor
	log      *slog.Logger
	opts     structurer.Options
}

func NewWorker(store *docstore.Store, governor *cache.Governor, log *slog.Logger, opts structurer.Options) *Worker {
	return &Worker{
		store:    store,
		governor: governor,
		log:      log,
		opts:     opts,
	}
}

// Process runs the structuring pipeline for a job: extract through the
// format-specific source, falling back to plain-text pagination when the
// source cannot be structured.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)
	if ctx.Err() != nil {
		job.AddError(ctx.Err().Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}

	job.SetStatus(StatusStructuring, "structuring")
	data := job.FileData()

	opts := w.opts
	opts.Seed = job.DocID
	opts.Language = job.Language
	if w.governor != nil && w.governor.LowMemory() {
		// Skip expensive geometry work while the process is under pressure.
		opts.LowMemory = true
	}

	// Dedup check before doing any work.
	if id, ok := w.store.FindByHash(docstore.ContentHashHex(data)); ok {
		log.Info("duplicate document", "existing_doc_id", id)
		job.SetDocID(id)
		if meta, err := w.store.Meta(id); err == nil {
			job.SetCounts(meta.Pages, meta.Words)
		}
		job.SetStatus(StatusCompleted, "dedup")
		return
	}

	text, flat, err := w.structure(data, job.Filename, opts)
	if err != nil {
		log.Error("structuring failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "structuring")
		return
	}

	w.store.Put(job.DocID, job.Filename, data, text, opts, flat)
	job.SetCounts(text.Metadata.TotalPages, text.WordCount())
	log.Info("structured document", "pages", text.Metadata.TotalPages, "words", text.WordCount(), "fallback", flat)

	if flat {
		job.SetStatus(StatusFallback, "done")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

// structure runs the format-specific extractor, then the plain-text
// fallback when structuring fails on readable input.
func (w *Worker) structure(data []byte, filename string, opts structurer.Options) (text *model.StructuredText, flat bool, err error) {
	src, err := structurer.ForFile(bytes.NewReader(data), filename, opts)
	if err == nil {
		t, exErr := structurer.Extract(src, opts)
		if exErr == nil {
			return t, false, nil
		}
		var xe *structurer.ExtractionError
		if !errors.As(exErr, &xe) {
			return nil, false, exErr
		}
		w.log.Warn("structured extraction failed, using fallback", "filename", filename, "reason", xe.Reason)
	}

	if !utf8.Valid(data) {
		return nil, false, fmt.Errorf("unsupported file %q: not valid text", filename)
	}
	t, fbErr := structurer.ExtractFlat(string(data), opts)
	if fbErr != nil {
		return nil, false, fmt.Errorf("fallback extraction: %w", fbErr)
	}
	return t, true, nil
}
