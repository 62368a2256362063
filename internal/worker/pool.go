package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	Err() error
}

type queuedJob struct {
	index int
	job   Job
}

// Pool runs jobs on a fixed set of goroutines. Wait returns results in
// submission order regardless of completion order.
type Pool struct {
	workers int
	jobs    chan queuedJob
	next    atomic.Int64
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	submitMu sync.RWMutex
	closed   bool

	resultsMu sync.Mutex
	results   []Result
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops the workers.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers: workers,
		jobs:    make(chan queuedJob, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case q, ok := <-p.jobs:
			if !ok {
				return
			}
			p.store(q.index, q.job.Execute(p.ctx))
		}
	}
}

func (p *Pool) store(index int, r Result) {
	p.resultsMu.Lock()
	defer p.resultsMu.Unlock()
	for len(p.results) <= index {
		p.results = append(p.results, nil)
	}
	p.results[index] = r
}

// Submit queues a job. It reports false when the pool is closed or cancelled.
func (p *Pool) Submit(job Job) bool {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed {
		return false
	}
	index := int(p.next.Add(1) - 1)

	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- queuedJob{index: index, job: job}:
		return true
	}
}

func (p *Pool) closeQueue() {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
}

// Wait closes the queue, waits for queued jobs, and returns their results
// in submission order. Jobs skipped by cancellation have no result.
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.cancel()

	p.resultsMu.Lock()
	defer p.resultsMu.Unlock()

	out := make([]Result, 0, len(p.results))
	for _, r := range p.results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Shutdown stops the pool without waiting for queued jobs
func (p *Pool) Shutdown() {
	p.cancel()
	p.closeQueue()
	p.wg.Wait()
}
