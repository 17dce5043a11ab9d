// Package workers provides abstractions for managing the background workers
// of the offline sync client.
// It defines the Worker interface and a Workers aggregate that starts
// several workers in order and stops them in reverse order.
package workers

import "context"

// Worker is the interface implemented by every long-running background
// component (connectivity monitor, sync engine, refresh scheduler).
//
// Start must not block: implementations spawn their own goroutines and keep
// running until ctx is cancelled or Stop is called. Stop blocks until the
// worker's goroutines have exited and must be safe to call more than once.
//
// Example implementation:
//
//	type MyWorker struct{ cancel context.CancelFunc }
//
//	func (w *MyWorker) Start(ctx context.Context) {
//	    ctx, w.cancel = context.WithCancel(ctx)
//	    go loop(ctx)
//	}
//
//	func (w *MyWorker) Stop() { w.cancel() }
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
