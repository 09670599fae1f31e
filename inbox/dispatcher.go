package inbox

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DefaultQueueSize is the number of captured requests waiting for processing
const DefaultQueueSize = 1024

/* Dispatcher runs post-processing off the acknowledgment path
 * A single worker drains the queue so entries keep arrival order
 */
type Dispatcher struct {
	recorder Recorder
	queue    chan Request
	log      zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// NewDispatcher creates a dispatcher with a queue of the given size
func NewDispatcher(recorder Recorder, size int, log zerolog.Logger) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		recorder: recorder,
		queue:    make(chan Request, size),
		log:      log,
	}
}

// Start launches the worker. Calling it more than once has no effect.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for req := range d.queue {
			d.process(ctx, req)
		}
	}()
}

// Submit queues req without blocking. It reports false when the request was dropped.
func (d *Dispatcher) Submit(req Request) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(req, "dispatcher stopped")
		return false
	}

	select {
	case d.queue <- req:
		return true
	default:
		d.drop(req, "queue full")
		return false
	}
}

// Stop closes the queue and waits for queued requests to be processed
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

// Dropped returns how many requests were not processed
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Pending returns how many requests are waiting in the queue
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

func (d *Dispatcher) process(ctx context.Context, req Request) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("path", req.Path).Msg("post-processing panicked")
		}
	}()

	if _, err := d.recorder.Record(ctx, req); err != nil {
		d.log.Error().Err(err).Str("path", req.Path).Msg("recording request failed")
	}
}

func (d *Dispatcher) drop(req Request, reason string) {
	d.dropped.Add(1)
	d.log.Warn().Str("reason", reason).Str("method", req.Method).Str("path", req.Path).Msg("request dropped before post-processing")
}
