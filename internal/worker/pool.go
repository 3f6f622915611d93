// Package worker runs chart diagnoses concurrently and rate limits
// outbound fetches and API clients.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type queued struct {
	seq int
	job Job
}

type done struct {
	seq    int
	result Result
}

// Pool manages a pool of workers that execute jobs concurrently. Wait
// returns results in submission order.
type Pool struct {
	workers    int
	jobQueue   chan queued
	results    chan done
	submitted  int
	collected  map[int]Result
	drained    chan struct{}
	started    bool
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a new worker pool with the specified number of workers.
// Jobs see a context derived from ctx.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan queued, workers*2),
		results:    make(chan done, workers*2),
		collected:  make(map[int]Result),
		drained:    make(chan struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	p.started = true
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

// collect drains results while jobs are still being submitted
func (p *Pool) collect() {
	defer close(p.drained)
	for d := range p.results {
		p.collected[d.seq] = d.result
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case q, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := q.job.Execute(p.ctx)
			select {
			case p.results <- done{seq: q.seq, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit submits a job to the pool for execution. It must not be called
// concurrently with itself or after Wait.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- queued{seq: p.submitted, job: job}:
		p.submitted++
	}
}

// Wait waits for all jobs to complete and returns their results in
// submission order. Jobs dropped by a cancellation have no result.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)

	p.wg.Wait()
	p.closeResults()
	if p.started {
		<-p.drained
	}
	p.cancelFunc()

	results := make([]Result, 0, len(p.collected))
	for seq := 0; seq < p.submitted; seq++ {
		if r, ok := p.collected[seq]; ok {
			results = append(results, r)
		}
	}
	return results
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
