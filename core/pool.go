package core

import (
	"context"
	"runtime"
	"sync"

	apperrors "github.com/prepress/cmyk2srgb/errors"
)

// BatchJob is one file conversion queued on the pool.
type BatchJob struct {
	ID         string
	Ctx        context.Context //nolint:containedctx // intentional for async jobs
	InputPath  string
	OutputBase string
	// Result channel; nil for fire-and-forget.
	ResultCh chan<- BatchResult
}

// BatchResult wraps the outcome of an async job.
type BatchResult struct {
	JobID   string
	Outcome *Outcome
	Err     error
}

// Pool fans batch conversions out across workers.  Each job still runs the
// strictly sequential single-file contract; only distinct files proceed in
// parallel.
type Pool struct {
	conv     *Converter
	queue    chan BatchJob
	wg       sync.WaitGroup
	once     sync.Once
	shutdown chan struct{}
	workers  int
}

// NewPool creates a Pool over conv.  workers <= 0 resolves to NumCPU;
// queueSize <= 0 resolves to 256.
func NewPool(conv *Converter, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Pool{
		conv:     conv,
		queue:    make(chan BatchJob, queueSize),
		shutdown: make(chan struct{}),
		workers:  workers,
	}
}

// Start launches the workers.  Idempotent.
func (p *Pool) Start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

// Stop signals shutdown and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.shutdown)
	p.wg.Wait()
}

// Submit enqueues a job.  Returns ErrWorkerPoolFull when the queue is full.
func (p *Pool) Submit(job BatchJob) error {
	select {
	case p.queue <- job:
		return nil
	default:
		return apperrors.New(apperrors.CategoryInput, "pool.submit", apperrors.ErrWorkerPoolFull)
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.shutdown:
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			p.processJob(job)
		}
	}
}

func (p *Pool) processJob(job BatchJob) {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := p.conv.cfg.JobTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	outcome, err := p.conv.Convert(ctx, job.InputPath, job.OutputBase)
	if job.ResultCh != nil {
		job.ResultCh <- BatchResult{JobID: job.ID, Outcome: outcome, Err: err}
	}
}
