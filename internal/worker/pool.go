// Package worker runs webhook-triggered jobs in the background so the HTTP
// response never waits for a review. Delivery is at-most-once: a job that is
// rejected, or still queued when the process dies, is lost.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dagenius007/pr-reviewer/internal/logging"
)

// Job is one unit of background work.
type Job struct {
	ID   string
	Name string
	Run  func(ctx context.Context)
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers  int   `json:"workers"`
	Queued   int   `json:"queued"`
	Capacity int   `json:"capacity"`
	Running  int64 `json:"running"`
}

// Pool is a fixed set of goroutines draining a bounded queue.
type Pool struct {
	queue   chan Job
	workers int
	running atomic.Int64

	mu     sync.RWMutex
	closed bool

	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	log    logging.Logger
}

// NewPool starts workers goroutines over a queue of queueSize jobs.
func NewPool(workers, queueSize int, log logging.Logger) *Pool {
	workers = max(1, workers)
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:   make(chan Job, max(0, queueSize)),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
		log:     log.WithName("worker"),
	}
	for i := range workers {
		p.group.Go(func() error {
			p.work(i)
			return nil
		})
	}
	return p
}

// Submit enqueues job without blocking. It returns false when the queue is
// full or the pool is shutting down.
func (p *Pool) Submit(job Job) bool {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- job:
		return true
	default:
		p.log.Warn("queue full, dropping job", "job", job.ID, "name", job.Name)
		return false
	}
}

func (p *Pool) Stats() Stats {
	return Stats{
		Workers:  p.workers,
		Queued:   len(p.queue),
		Capacity: cap(p.queue),
		Running:  p.running.Load(),
	}
}

// Shutdown stops intake and waits for queued and running jobs. When ctx
// expires first, running jobs are cancelled and ctx's error is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return fmt.Errorf("worker pool drain: %w", ctx.Err())
	}
}

func (p *Pool) work(n int) {
	for job := range p.queue {
		p.run(n, job)
	}
}

func (p *Pool) run(n int, job Job) {
	log := p.log.WithValues("worker", n, "job", job.ID, "name", job.Name)
	p.running.Add(1)
	start := time.Now()
	defer func() {
		p.running.Add(-1)
		if r := recover(); r != nil {
			log.Error(fmt.Errorf("panic: %v", r), "job panicked")
			return
		}
		log.Debug("job finished", "duration", time.Since(start).String())
	}()

	log.Debug("job started")
	job.Run(p.ctx)
}
