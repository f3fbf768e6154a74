// Package worker runs an Updater as an isolated, independently scheduled
// unit: a goroutine that wakes on a fixed interval, invokes the update
// handler once per wake, and owns its state alone. All communication with
// a worker goes through its command queue; stopping a worker lets the
// in-flight update finish but drops anything still queued.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the poll interval used when none is configured.
// Schedulers typically run at a fraction of this.
const DefaultInterval = time.Second

// Updater is the unit of work a Worker schedules. Name is a short
// human-readable identifier used only in logs.
type Updater interface {
	Name() string
	Update(ctx context.Context)
}

// Worker owns the poll loop for one Updater.
type Worker struct {
	updater  Updater
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// Option configures a Worker.
type Option func(*Worker)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// New creates a worker for the given updater.
func New(updater Updater, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		updater:  updater,
		interval: DefaultInterval,
		logger:   logger.With(slog.String("worker", updater.Name())),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the poll loop. Starting a running worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	w.logger.Info("Starting worker", slog.Duration("interval", w.interval))
	go w.run(ctx)
}

// Stop halts the poll loop and waits for any in-flight update to finish.
// Commands still queued on the updater are not preserved; callers that
// need them durable must trigger a synchronous save before stopping.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.running = false
	w.mu.Unlock()

	cancel()
	<-done
	w.logger.Info("Worker stopped")
}

// Running reports whether the poll loop is active.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.updater.Update(ctx)
		}
	}
}
