package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/cache"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/queue"
	"github.com/MKhiriev/go-offline-sync/models"
)

type offlineService struct {
	queue   *queue.Queue
	cache   *cache.LocalCache
	monitor ConnectivityMonitor
	engine  SyncEngine
	bus     *events.Bus

	logger *logger.Logger
}

// NewOfflineService creates the facade over the offline layer.
func NewOfflineService(q *queue.Queue, c *cache.LocalCache, monitor ConnectivityMonitor, engine SyncEngine, bus *events.Bus, log *logger.Logger) OfflineService {
	if log == nil {
		log = logger.Nop()
	}
	return &offlineService{
		queue:   q,
		cache:   c,
		monitor: monitor,
		engine:  engine,
		bus:     bus,
		logger:  log.Component("offline"),
	}
}

// EnqueueMutation implements OfflineService. A cache write failure is logged
// and does not fail the call; the queued item is what must not be lost.
func (s *offlineService) EnqueueMutation(ctx context.Context, op models.Operation) (models.QueueItem, error) {
	if err := op.Validate(); err != nil {
		return models.QueueItem{}, fmt.Errorf("%w: %w", queue.ErrInvalidOperation, err)
	}

	if err := s.cache.ApplyOptimistic(ctx, op); err != nil {
		s.logger.Warn().Err(err).Str("collection", op.Collection).Msg("optimistic cache update failed")
	}

	item, err := s.queue.Enqueue(ctx, op)
	if err != nil {
		return models.QueueItem{}, err
	}

	if s.monitor.IsOnline() {
		s.engine.Trigger()
	}
	return item, nil
}

// GetCachedCollection implements OfflineService.
func (s *offlineService) GetCachedCollection(ctx context.Context, name string) []models.Record {
	return s.cache.Get(ctx, name)
}

// IsOnline implements OfflineService.
func (s *offlineService) IsOnline() bool {
	return s.monitor.IsOnline()
}

// AwaitFreshConnectivityCheck implements OfflineService.
func (s *offlineService) AwaitFreshConnectivityCheck(ctx context.Context) bool {
	return s.monitor.AwaitFreshCheck(ctx)
}

// PendingMutations implements OfflineService.
func (s *offlineService) PendingMutations(ctx context.Context) []models.QueueItem {
	return s.queue.Items(ctx)
}

// Subscribe implements OfflineService.
func (s *offlineService) Subscribe(kind events.Kind, h events.Handler) func() {
	if s.bus == nil {
		return func() {}
	}
	return s.bus.Subscribe(kind, h)
}
