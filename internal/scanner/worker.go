package scanner

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrQueueFull is returned by Submit when the worker has no room left
	ErrQueueFull = errors.New("scan queue is full")
	// ErrStopped is returned by Submit after Stop or once the worker loop has exited
	ErrStopped = errors.New("scan worker stopped")
)

// Worker runs scans one after another on its own goroutine and reports each
// finished scan on Results. The result of a scan is sent only after its
// last_scan stamp has been committed.
type Worker struct {
	scanner *Scanner
	queue   chan string
	results chan Result

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWorker creates a worker that queues up to buffer scans
func NewWorker(s *Scanner, buffer int) *Worker {
	if buffer <= 0 {
		buffer = 1
	}
	return &Worker{
		scanner: s,
		queue:   make(chan string, buffer),
		results: make(chan Result, buffer),
		done:    make(chan struct{}),
	}
}

// Start runs the worker loop until ctx is done or Stop is called
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true

	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
}

func (w *Worker) run(ctx context.Context) {
	// done closes first so a reader seeing results closed also sees done
	defer close(w.results)
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case root := <-w.queue:
			res, _ := w.scanner.Scan(ctx, root)
			w.deliver(ctx, *res)
		}
	}
}

// deliver blocks until the result is read. A worker being shut down keeps
// the result only if the channel has room.
func (w *Worker) deliver(ctx context.Context, res Result) {
	select {
	case w.results <- res:
		return
	case <-ctx.Done():
	}
	select {
	case w.results <- res:
	default:
		w.scanner.logger.Warn().Str("run_id", res.RunID).Str("folder", res.Root).
			Msg("Dropped scan result on shutdown")
	}
}

// Submit queues a scan of root without blocking
func (w *Worker) Submit(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrStopped
	}
	// the run loop also exits when the Start context is done
	select {
	case <-w.done:
		return ErrStopped
	default:
	}

	select {
	case w.queue <- root:
		return nil
	default:
		return ErrQueueFull
	}
}

// Results delivers one Result per scan. It is closed when the worker stops.
func (w *Worker) Results() <-chan Result {
	return w.results
}

// Stop cancels the running scan and waits for the worker to exit. Queued
// scans that have not started are dropped.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	cancel := w.cancel
	w.mu.Unlock()

	if !started {
		close(w.results)
		return
	}
	cancel()
	<-w.done
}
