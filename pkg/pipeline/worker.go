// pkg/pipeline/worker.go

package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Job represents a unit of work to be processed
type Job interface {
	Process(ctx context.Context) error
	ID() string
}

// WorkerPool manages a pool of workers for processing jobs
type WorkerPool struct {
	numWorkers int
	jobs       chan Job
	results    chan error
	wg         sync.WaitGroup
	logger     zerolog.Logger
}

// NewWorkerPool creates a new worker pool. queueSize bounds both pending
// jobs and undelivered results.
func NewWorkerPool(numWorkers int, queueSize int, logger zerolog.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, queueSize),
		results:    make(chan error, queueSize),
		logger:     logger,
	}
}

// Start initializes the worker pool and begins processing jobs
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit adds a new job to the pool
func (p *WorkerPool) Submit(job Job) {
	p.jobs <- job
}

// Stop waits for queued jobs to finish and closes the results channel
func (p *WorkerPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

// Results returns the channel for receiving job results
func (p *WorkerPool) Results() <-chan error {
	return p.results
}

// worker processes jobs from the pool
func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		select {
		case <-ctx.Done():
			p.logger.Debug().Int("worker", id).Msg("worker stopping due to context cancellation")
			return
		default:
			p.logger.Debug().Int("worker", id).Str("job", job.ID()).Msg("processing job")
			err := job.Process(ctx)
			if err != nil {
				p.logger.Debug().Int("worker", id).Str("job", job.ID()).Err(err).Msg("job failed")
			}
			p.results <- err
		}
	}
}

// ProcessingJob adapts a function to the Job interface
type ProcessingJob struct {
	identifier string
	ProcessFn  func(ctx context.Context) error
}

// NewProcessingJob creates a new processing job
func NewProcessingJob(id string, fn func(ctx context.Context) error) *ProcessingJob {
	return &ProcessingJob{
		identifier: id,
		ProcessFn:  fn,
	}
}

// Process executes the job's processing function
func (j *ProcessingJob) Process(ctx context.Context) error {
	return j.ProcessFn(ctx)
}

// ID returns the job's identifier
func (j *ProcessingJob) ID() string {
	return j.identifier
}
