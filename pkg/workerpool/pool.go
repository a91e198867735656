// Package workerpool bounds the goroutines behind the dashboard's fan-out
// fetches. The terminal runs on shop hardware, so concurrency caps matter:
// a pool refuses work instead of growing without bound.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(fetchPanel); errors.Is(err, workerpool.ErrPoolFull) {
//	    // shed the refresh; the next tick will catch up
//	}
package workerpool

import (
	"errors"
	"sync"
)

// ErrPoolFull is returned by Submit when all workers are busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}
}

// New creates a Pool with the given number of workers. size must be > 0.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		// Buffer twice the worker count so short bursts queue instead of
		// bouncing.
		tasks:   make(chan func(), size*2),
		closeCh: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues task for execution. It never blocks: ErrPoolFull when the
// queue is at capacity, ErrPoolClosed after Shutdown.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait is like Submit but blocks until a slot is available or the
// pool is closed.
func (p *Pool) SubmitWait(task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case p.tasks <- task:
		return nil
	}
}

// Parallel runs all tasks on the pool and waits for every one to finish.
// This is the dashboard's products-plus-revenue fetch in one call.
func (p *Pool) Parallel(tasks ...func()) error {
	var wg sync.WaitGroup
	for _, task := range tasks {
		task := task
		wg.Add(1)
		if err := p.SubmitWait(func() {
			defer wg.Done()
			task()
		}); err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()
	return nil
}

// Shutdown stops accepting new tasks, waits for in-flight tasks, and
// releases the workers. Safe to call multiple times.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		close(p.tasks)
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		safeRun(task)
	}
}

// safeRun keeps a panicking task from killing its worker.
func safeRun(task func()) {
	defer func() { recover() }() //nolint:errcheck
	task()
}
