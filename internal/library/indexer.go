package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/lawref/internal/catalog"
	"github.com/dgallion1/lawref/internal/config"
	"golang.org/x/sync/errgroup"
)

// ErrQueueFull is returned by Submit when no worker can take the job.
var ErrQueueFull = errors.New("index queue is full")

// Indexer runs index jobs: each job lists laws from the catalog and opens
// every one of them through the Library, warming the parse cache.
type Indexer struct {
	jobs    *JobStore
	queue   chan *Job
	lib     *Library
	catalog catalog.Store
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIndexer(cfg config.Config, lib *Library, store catalog.Store, log *slog.Logger) *Indexer {
	return &Indexer{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		lib:     lib,
		catalog: store,
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines.
func (ix *Indexer) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	ix.cancel = cancel

	for range ix.cfg.WorkerCount {
		ix.wg.Add(1)
		go func() {
			defer ix.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-ix.queue:
					if !ok {
						return
					}
					ix.Process(workerCtx, job)
				}
			}
		}()
	}

	ix.wg.Add(1)
	go func() {
		defer ix.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				ix.jobs.Cleanup()
			}
		}
	}()
}

// Stop cancels running jobs and waits for the workers to exit.
func (ix *Indexer) Stop() {
	if ix.cancel != nil {
		ix.cancel()
	}
	close(ix.queue)
	ix.wg.Wait()
}

// Submit queues a job for processing.
func (ix *Indexer) Submit(job *Job) error {
	ix.jobs.Put(job)
	select {
	case ix.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, ix.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (ix *Indexer) GetJob(id string) *Job {
	return ix.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (ix *Indexer) QueueDepth() int {
	return len(ix.queue)
}

// Process runs one index job to completion.
func (ix *Indexer) Process(ctx context.Context, job *Job) {
	log := ix.log.With("job_id", job.ID)

	job.SetStatus(StatusListing, "listing")
	laws, err := ix.listLaws(ctx, job.Categories)
	if err != nil {
		log.Error("listing failed", "error", err)
		job.AddError(fmt.Sprintf("list: %s", err))
		job.SetStatus(StatusFailed, "listing")
		return
	}
	job.SetTotalLaws(len(laws))
	log.Info("listed laws", "laws", len(laws))

	job.SetStatus(StatusParsing, "parsing")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.MaxConcurrentParse)

	for _, law := range laws {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			doc, cached, err := ix.lib.open(gctx, law.Path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn("law failed", "path", law.Path, "error", err)
				job.AddError(fmt.Sprintf("%s: %s", law.Path, err))
				return nil
			}
			job.AddParsed(doc.WordCount, cached)
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		// The loop stops scheduling once the context is done, so Wait can
		// succeed without every law having been attempted.
		err = ctx.Err()
	}
	if err != nil {
		log.Error("index cancelled", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}

	failed := job.ErrorCount()
	switch {
	case failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case failed < len(laws):
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "parsing")
	}
	log.Info("index complete", "laws", len(laws), "errors", failed)
}

// listLaws gathers the laws of the given categories, or of every category
// when none are named. A law listed twice is opened once.
func (ix *Indexer) listLaws(ctx context.Context, categories []string) ([]catalog.Law, error) {
	if len(categories) == 0 {
		cats, err := ix.catalog.Categories(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range cats {
			categories = append(categories, c.ID)
		}
	}

	seen := make(map[string]bool)
	var out []catalog.Law
	for _, id := range categories {
		laws, err := ix.catalog.AllLaws(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		for _, l := range laws {
			if seen[l.Path] {
				continue
			}
			seen[l.Path] = true
			out = append(out, l)
		}
	}
	return out, nil
}
