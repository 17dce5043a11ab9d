package service

import (
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/cache"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/queue"
	"github.com/MKhiriev/go-offline-sync/internal/store"
)

// ClientServices wires every client-side service over one durable store.
type ClientServices struct {
	Queue   *queue.Queue
	Cache   *cache.LocalCache
	Engine  SyncEngine
	Refresh RefreshScheduler
	Offline OfflineService
}

func NewClientServices(
	localStore store.DurableStore,
	remote adapter.RemoteService,
	monitor ConnectivityMonitor,
	bus *events.Bus,
	refreshCfg config.ClientRefresh,
	log *logger.Logger,
) (*ClientServices, error) {
	q := queue.New(localStore, log)
	c := cache.New(localStore, log)
	engine := NewSyncEngine(q, remote, monitor, bus, log)

	refresh, err := NewRefreshScheduler(refreshCfg, remote, c, monitor, log)
	if err != nil {
		return nil, fmt.Errorf("error creating refresh scheduler: %w", err)
	}

	return &ClientServices{
		Queue:   q,
		Cache:   c,
		Engine:  engine,
		Refresh: refresh,
		Offline: NewOfflineService(q, c, monitor, engine, bus, log),
	}, nil
}
