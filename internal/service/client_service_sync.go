package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/queue"
	"github.com/MKhiriev/go-offline-sync/models"
)

type syncEngine struct {
	queue   *queue.Queue
	remote  adapter.RemoteService
	monitor ConnectivityMonitor
	bus     *events.Bus

	// drainMu is held for the whole of a drain sequence.
	drainMu sync.Mutex
	state   atomic.Int32
	trigger chan struct{}

	mu          sync.Mutex
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup

	logger *logger.Logger
}

// NewSyncEngine creates an idle engine. bus may be nil.
func NewSyncEngine(q *queue.Queue, remote adapter.RemoteService, monitor ConnectivityMonitor, bus *events.Bus, log *logger.Logger) SyncEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &syncEngine{
		queue:   q,
		remote:  remote,
		monitor: monitor,
		bus:     bus,
		trigger: make(chan struct{}, 1),
		logger:  log.Component("sync"),
	}
}

// Start implements SyncEngine. A transition to online triggers a drain.
func (e *syncEngine) Start(ctx context.Context) {
	e.Stop()

	e.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.unsubscribe = e.monitor.Subscribe(func(s models.ConnectivityState) {
		if s.IsOnline {
			e.Trigger()
		}
	})
	e.wg.Add(1)
	e.mu.Unlock()

	go e.worker(runCtx)
}

// Stop implements SyncEngine. Safe to call when the engine is not running.
func (e *syncEngine) Stop() {
	e.mu.Lock()
	cancel, unsubscribe := e.cancel, e.unsubscribe
	e.cancel, e.unsubscribe = nil, nil
	e.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
}

// Trigger implements SyncEngine.
func (e *syncEngine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// State implements SyncEngine.
func (e *syncEngine) State() models.EngineState {
	return models.EngineState(e.state.Load())
}

func (e *syncEngine) setState(s models.EngineState) {
	e.state.Store(int32(s))
}

func (e *syncEngine) worker(ctx context.Context) {
	defer e.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.trigger:
		}

		if !e.monitor.IsOnline() {
			continue
		}

		report, err := e.Drain(ctx)
		switch {
		case errors.Is(err, ErrDrainInProgress), errors.Is(err, ErrOffline):
		case err != nil && ctx.Err() == nil:
			e.logger.Err(err).Msg("drain failed")
		case report.Processed() > 0 || report.Stalled:
			e.logger.Info().
				Int("succeeded", report.Succeeded).
				Int("rejected", report.Rejected).
				Int("dropped", report.Dropped).
				Bool("stalled", report.Stalled).
				Int("remaining", report.Remaining).
				Msg("drain finished")
		}
	}
}

// Drain implements SyncEngine. Items are dispatched strictly one at a time.
// A transport failure stops the drain and keeps the head for a later
// trigger; every other outcome removes the head and moves on.
func (e *syncEngine) Drain(ctx context.Context) (models.DrainReport, error) {
	var report models.DrainReport

	if !e.drainMu.TryLock() {
		return report, ErrDrainInProgress
	}
	defer e.drainMu.Unlock()

	if !e.monitor.IsOnline() {
		report.Remaining = e.queue.Len(ctx)
		return report, ErrOffline
	}

	e.setState(models.EngineDraining)
	defer e.setState(models.EngineIdle)

	for {
		if err := ctx.Err(); err != nil {
			report.Remaining = e.queue.Len(ctx)
			return report, err
		}

		head, ok := e.queue.PeekHead(ctx)
		if !ok {
			break
		}

		head, err := e.repair(ctx, head)
		if err != nil {
			report.Remaining = e.queue.Len(ctx)
			return report, err
		}

		e.setState(models.EngineAwaitingResponse)
		outcome := e.dispatch(ctx, head)
		e.setState(models.EngineDraining)

		if outcome == models.OutcomeStalled {
			report.Stalled = true
			report.Remaining = e.queue.Len(ctx)
			return report, nil
		}

		if err = e.queue.DequeueHead(ctx, head.ID); err != nil {
			report.Remaining = e.queue.Len(ctx)
			return report, fmt.Errorf("dequeue %s: %w", head.ID, err)
		}

		switch outcome {
		case models.OutcomeSuccess:
			report.Succeeded++
		case models.OutcomeRejected:
			report.Rejected++
		default:
			report.Dropped++
		}
	}

	if report.Processed() > 0 && e.bus != nil {
		e.bus.Publish(events.Event{Kind: events.KindSyncCompleted, Processed: report.Processed()})
	}
	return report, nil
}

// dispatch sends one item and classifies the result.
func (e *syncEngine) dispatch(ctx context.Context, item models.QueueItem) models.DrainOutcome {
	op := item.Operation
	log := e.logger.With().
		Str("item_id", item.ID).
		Str("collection", op.Collection).
		Str("action", op.Action).
		Logger()

	if op.Payload == nil || op.Payload.Kind() == models.PayloadUnknown {
		log.Warn().Err(ErrUnknownOperation).Msg("dropping queued mutation")
		return models.OutcomeDropped
	}

	_, err := e.remote.Write(ctx, op)
	switch {
	case err == nil:
		log.Debug().Msg("mutation confirmed")
		return models.OutcomeSuccess
	case errors.Is(err, adapter.ErrRejected):
		log.Warn().Err(err).Msg("remote rejected mutation, dropping")
		return models.OutcomeRejected
	case adapter.IsRetryable(err) || ctx.Err() != nil:
		log.Info().Err(err).Msg("remote unreachable, keeping mutation")
		return models.OutcomeStalled
	default:
		log.Warn().Err(err).Msg("unusable remote response, dropping mutation")
		return models.OutcomeDropped
	}
}

// repair fills a missing collection from the payload's "sheet" field and a
// missing action from the collection's default, then persists the fixed
// head. Items that need no repair are returned unchanged.
func (e *syncEngine) repair(ctx context.Context, item models.QueueItem) (models.QueueItem, error) {
	fixed, changed := repairLegacyItem(item)
	if !changed {
		return item, nil
	}

	if err := e.queue.ReplaceHead(ctx, fixed); err != nil {
		return item, fmt.Errorf("persist repaired item %s: %w", item.ID, err)
	}

	e.logger.Info().
		Str("item_id", fixed.ID).
		Str("collection", fixed.Operation.Collection).
		Str("action", fixed.Operation.Action).
		Msg("repaired legacy queue item")
	return fixed, nil
}

func repairLegacyItem(item models.QueueItem) (models.QueueItem, bool) {
	op := item.Operation
	changed := false

	if strings.TrimSpace(op.Collection) == "" {
		if sheet, ok := op.Fields()["sheet"].(string); ok && strings.TrimSpace(sheet) != "" {
			op.Collection, _ = models.CanonicalCollection(sheet)
			changed = true
		}
	}
	if strings.TrimSpace(op.Action) == "" {
		if action, ok := models.DefaultAction(op.Collection); ok {
			op.Action = action
			changed = true
		}
	}
	if !changed {
		return item, false
	}

	raw, err := op.RawPayload()
	if err != nil {
		return item, false
	}
	op.Payload = models.DecodePayload(op.Action, op.Collection, raw)
	op.Raw = raw

	item.Operation = op
	return item, true
}
