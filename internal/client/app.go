package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/connectivity"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/netwatch"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/workers"
)

// App owns every client component for the lifetime of one process.
type App struct {
	cfg      *config.ClientConfig
	store    store.DurableStore
	bus      *events.Bus
	monitor  *connectivity.Monitor
	services *service.ClientServices
	workers  *workers.Workers

	closeOnce sync.Once
	logger    *logger.Logger
}

// Option overrides one of the components NewApp would otherwise build from
// the configuration.
type Option func(*appDeps)

type appDeps struct {
	remote  adapter.RemoteService
	store   store.DurableStore
	watcher netwatch.Watcher
	monitor []connectivity.Option
}

// WithRemote replaces the HTTP remote service.
func WithRemote(r adapter.RemoteService) Option {
	return func(d *appDeps) { d.remote = r }
}

// WithStore replaces the store opened from cfg.Storage.
func WithStore(s store.DurableStore) Option {
	return func(d *appDeps) { d.store = s }
}

// WithWatcher replaces the platform network watcher.
func WithWatcher(w netwatch.Watcher) Option {
	return func(d *appDeps) { d.watcher = w }
}

// WithMonitorOptions passes opts to the connectivity monitor.
func WithMonitorOptions(opts ...connectivity.Option) Option {
	return func(d *appDeps) { d.monitor = append(d.monitor, opts...) }
}

// NewApp opens the durable store and wires the remote adapter, event bus,
// connectivity monitor and client services. Nothing runs in the background
// until Run is called, so one-shot commands can use the services directly.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil client config")
	}
	if log == nil {
		log = logger.Nop()
	}

	deps := &appDeps{}
	for _, opt := range opts {
		opt(deps)
	}

	var err error
	if deps.remote == nil {
		deps.remote, err = adapter.NewHTTPRemoteService(cfg.Remote, log)
		if err != nil {
			return nil, fmt.Errorf("create remote service: %w", err)
		}
	}
	if deps.watcher == nil {
		deps.watcher = netwatch.New(log)
	}
	if deps.store == nil {
		deps.store, err = store.NewDurableStore(ctx, cfg.Storage, log)
		if err != nil {
			return nil, fmt.Errorf("create durable store: %w", err)
		}
	}

	bus := events.NewBus(log)
	monitor := connectivity.NewMonitor(cfg.Connectivity, deps.watcher, bus, log, deps.monitor...)

	services, err := service.NewClientServices(deps.store, deps.remote, monitor, bus, cfg.Refresh, log)
	if err != nil {
		_ = deps.store.Close()
		return nil, fmt.Errorf("create client services: %w", err)
	}

	return &App{
		cfg:      cfg,
		store:    deps.store,
		bus:      bus,
		monitor:  monitor,
		services: services,
		// the engine subscribes to the monitor, the scheduler reads it
		workers: workers.New(monitor, services.Engine, services.Refresh),
		logger:  log.Component("app"),
	}, nil
}

// Run starts the background workers, asks the engine to drain whatever was
// queued by a previous session and blocks until ctx is done. The store is
// closed before Run returns.
func (a *App) Run(ctx context.Context) error {
	unsubscribe := a.logEvents()
	defer unsubscribe()

	a.workers.Start(ctx)
	a.logger.Info().
		Bool("online", a.monitor.IsOnline()).
		Int("pending", a.services.Queue.Len(ctx)).
		Msg("client started")

	a.services.Engine.Trigger()

	<-ctx.Done()

	a.logger.Info().Msg("shutting down client")
	a.workers.Stop()
	return a.Close()
}

// Close releases the durable store. It is safe to call more than once.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.workers.Stop()
		if cerr := a.store.Close(); cerr != nil {
			err = fmt.Errorf("close durable store: %w", cerr)
		}
	})
	return err
}

// Services exposes the wired client services.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Monitor exposes the connectivity monitor.
func (a *App) Monitor() *connectivity.Monitor {
	return a.monitor
}

// Bus exposes the event bus.
func (a *App) Bus() *events.Bus {
	return a.bus
}

func (a *App) logEvents() func() {
	offConn := a.bus.Subscribe(events.KindConnectionChange, func(e events.Event) {
		a.logger.Info().Str("status", e.Status()).Msg("connectivity changed")
	})
	offSync := a.bus.Subscribe(events.KindSyncCompleted, func(e events.Event) {
		a.logger.Info().Int("processed", e.Processed).Msg("sync completed")
	})
	return func() {
		offConn()
		offSync()
	}
}
