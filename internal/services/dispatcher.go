package services

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher is a bounded worker pool for outbound gateway sends. Bulk sends
// are accepted by the HTTP layer immediately and drained here so requests
// never block on third-party network latency.
type Dispatcher struct {
	tasks  chan func(context.Context)
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts a dispatcher with the given worker count and queue size
func NewDispatcher(workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		tasks:  make(chan func(context.Context), queueSize),
		cancel: cancel,
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer d.wg.Done()
			for task := range d.tasks {
				task(ctx)
			}
		}()
	}
	return d
}

// Enqueue queues a task for asynchronous execution. Returns false when the
// queue is full or the dispatcher has stopped; callers treat that as a
// dropped send and log it.
func (d *Dispatcher) Enqueue(task func(context.Context)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.tasks <- task:
		return true
	default:
		slog.Warn("Dispatcher queue full, dropping task")
		return false
	}
}

// Stop drains queued tasks and waits for workers to finish
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}
