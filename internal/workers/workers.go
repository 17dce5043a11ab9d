package workers

import (
	"context"
	"sync"
)

// Workers runs a fixed set of workers as one unit.
type Workers struct {
	mu      sync.Mutex
	workers []Worker
	started bool
}

// New returns an aggregate over ws. Nil workers are skipped.
func New(ws ...Worker) *Workers {
	list := make([]Worker, 0, len(ws))
	for _, w := range ws {
		if w != nil {
			list = append(list, w)
		}
	}
	return &Workers{workers: list}
}

// Start starts every worker in registration order. A second call without
// an intervening Stop is a no-op.
func (w *Workers) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return
	}
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
	w.started = true
}

// Stop stops every worker in reverse registration order, so that consumers
// stop before the producers they depend on.
func (w *Workers) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
	w.started = false
}

// Len returns the number of registered workers.
func (w *Workers) Len() int {
	return len(w.workers)
}
