// Package worker bounds the concurrency of background hydration tasks.
package worker

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("worker pool closed")

// Pool runs submitted tasks on a fixed set of goroutines. The queue is
// buffered so schedulers dispatching jobs do not block on a busy pool.
// tasks is never closed; workers stop through the shutdown channel, so
// a submit racing a shutdown cannot hit a closed channel.
type Pool struct {
	tasks    chan func()
	wg       sync.WaitGroup
	shutdown chan struct{}
	mu       sync.Mutex
	closed   bool
	size     int
}

// New creates a pool with the given number of workers.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	queueSize := size * 8
	if queueSize < 8 {
		queueSize = 8
	}

	p := &Pool{
		tasks:    make(chan func(), queueSize),
		shutdown: make(chan struct{}),
		size:     size,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.work()
	}

	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		select {
		case <-p.shutdown:
			// Finish what was queued before the shutdown signal.
			for {
				select {
				case task := <-p.tasks:
					if task != nil {
						task()
					}
				default:
					return
				}
			}
		case task := <-p.tasks:
			if task != nil {
				task()
			}
		}
	}
}

// Submit enqueues a task for execution.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.shutdown:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.shutdown:
		return ErrPoolClosed
	case p.tasks <- task:
		return nil
	}
}

// Shutdown stops accepting tasks and waits for queued and in-flight
// ones until the context is done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.shutdown)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Size returns the worker count.
func (p *Pool) Size() int {
	return p.size
}
