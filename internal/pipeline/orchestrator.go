// Package pipeline runs document structuring jobs on a bounded worker pool.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hmercer/tapread/internal/cache"
	"github.com/hmercer/tapread/internal/config"
	"github.com/hmercer/tapread/internal/docstore"
	"github.com/hmercer/tapread/internal/structurer"
)

// Orchestrator manages the document structuring pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	store    *docstore.Store
	governor *cache.Governor
	log      *slog.Logger
	cfg      config.Config
	opts     structurer.Options

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers. The
// governor may be nil; when present, workers consult its low-memory mode
// before each job.
func NewOrchestrator(cfg config.Config, store *docstore.Store, governor *cache.Governor, log *slog.Logger) *Orchestrator {
	opts := structurer.DefaultOptions()
	opts.BandHeight = cfg.BandHeight
	opts.BandsPerPage = cfg.BandsPerPage
	opts.Language = cfg.Language
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		store:    store,
		governor: governor,
		log:      log,
		cfg:      cfg,
		opts:     opts,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.store, o.governor, o.log, o.opts)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Options returns the structuring options workers run with.
func (o *Orchestrator) Options() structurer.Options {
	return o.opts
}
