// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package connectivity tracks whether the device is online.
//
// The [Monitor] combines two sources. OS network events are trusted and
// applied immediately. Periodic active probes against independent public
// endpoints correct the OS view when it is wrong, for example behind a
// captive portal or a dead uplink.
package connectivity

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/netwatch"
	"github.com/MKhiriev/go-offline-sync/models"
	"golang.org/x/sync/singleflight"
)

// Handler is notified of every state transition.
type Handler func(models.ConnectivityState)

// Monitor owns the connectivity state.
type Monitor struct {
	mu        sync.RWMutex
	state     models.ConnectivityState
	endpoints []string

	subsMu sync.Mutex
	nextID uint64
	subs   map[uint64]Handler

	watcher netwatch.Watcher
	prober  Prober
	bus     *events.Bus
	flight  singleflight.Group

	interval     time.Duration
	initialDelay time.Duration
	now          func() time.Time

	runMu  sync.Mutex
	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// Option customises a [Monitor].
type Option func(*Monitor)

// WithProber replaces the HTTP prober.
func WithProber(p Prober) Option {
	return func(m *Monitor) { m.prober = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor returns a monitor seeded from watcher's current OS view.
// bus may be nil when no event fan-out is needed.
func NewMonitor(cfg config.ClientConnectivity, watcher netwatch.Watcher, bus *events.Bus, log *logger.Logger, opts ...Option) *Monitor {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("connectivity")
	if watcher == nil {
		watcher = netwatch.NewStatic(true)
	}

	m := &Monitor{
		endpoints:    slices.Clone(cfg.ProbeEndpoints),
		subs:         make(map[uint64]Handler),
		watcher:      watcher,
		bus:          bus,
		interval:     cfg.ProbeInterval,
		initialDelay: cfg.InitialProbeDelay,
		now:          time.Now,
		logger:       log,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.prober == nil {
		m.prober = NewHTTPProber(cfg.ProbeTimeout, log)
	}

	m.state = models.ConnectivityState{IsOnline: watcher.Online(), LastCheckedAt: m.now()}
	return m
}

// Start launches the OS event loop and the periodic probe. It is a no-op
// when already started.
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.runCtx, m.cancel = runCtx, cancel

	m.wg.Add(2)
	go m.watchLoop(runCtx)
	go m.probeLoop(runCtx)

	m.logger.Info().
		Bool("online", m.IsOnline()).
		Int("endpoints", len(m.Endpoints())).
		Dur("interval", m.interval).
		Msg("connectivity monitor started")
}

// Stop halts the background loops and waits for them to exit.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel := m.cancel
	m.runCtx, m.cancel = nil, nil
	m.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
	m.logger.Info().Msg("connectivity monitor stopped")
}

// IsOnline returns the last known state without blocking.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsOnline
}

// State returns a snapshot of the connectivity state.
func (m *Monitor) State() models.ConnectivityState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// AwaitFreshCheck runs an active probe and returns its verdict. Concurrent
// callers share a single probe. When ctx ends first the last known state is
// returned.
//
// While the monitor is running the probe belongs to it: Stop cancels the
// probe and waits for it, and a cancelled probe changes nothing.
func (m *Monitor) AwaitFreshCheck(ctx context.Context) bool {
	ch := m.flight.DoChan("probe", func() (any, error) {
		probeCtx, done := m.probeContext()
		defer done()
		return m.runProbe(probeCtx), nil
	})

	select {
	case res := <-ch:
		online, _ := res.Val.(bool)
		return online
	case <-ctx.Done():
		return m.IsOnline()
	}
}

// AddEndpoint adds url to the probe set.
func (m *Monitor) AddEndpoint(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.endpoints, url) {
		m.endpoints = append(m.endpoints, url)
	}
}

// RemoveEndpoint drops url from the probe set.
func (m *Monitor) RemoveEndpoint(url string) {
	url = strings.TrimSpace(url)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endpoints = slices.DeleteFunc(m.endpoints, func(e string) bool { return e == url })
}

// Endpoints returns a copy of the probe set.
func (m *Monitor) Endpoints() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.endpoints)
}

// Subscribe registers h for state transitions and returns a function that
// removes it.
func (m *Monitor) Subscribe(h Handler) (unsubscribe func()) {
	if h == nil {
		return func() {}
	}
	m.subsMu.Lock()
	m.nextID++
	id := m.nextID
	m.subs[id] = h
	m.subsMu.Unlock()

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

func (m *Monitor) watchLoop(ctx context.Context) {
	defer m.wg.Done()

	for ev := range m.watcher.Watch(ctx) {
		m.logger.Debug().Bool("online", ev.Online).Msg("os network event")
		m.apply(ev.Online, "os")
	}
}

func (m *Monitor) probeLoop(ctx context.Context) {
	defer m.wg.Done()

	initial := time.NewTimer(m.initialDelay)
	defer initial.Stop()

	var tick <-chan time.Time
	if m.interval > 0 {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-initial.C:
			m.AwaitFreshCheck(ctx)
		case <-tick:
			m.AwaitFreshCheck(ctx)
		}
	}
}

// probeContext returns the context a shared probe runs under and a func to
// call when the probe is done.
func (m *Monitor) probeContext() (context.Context, func()) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.runCtx == nil {
		return context.Background(), func() {}
	}
	m.wg.Add(1)
	return m.runCtx, m.wg.Done
}

// runProbe probes the current endpoint set and applies the verdict.
func (m *Monitor) runProbe(ctx context.Context) bool {
	online := m.prober.Probe(ctx, m.Endpoints())
	if ctx.Err() != nil {
		return m.IsOnline()
	}
	m.apply(online, "probe")
	return online
}

// apply records a verdict. Only a verdict that disagrees with the current
// state changes it and notifies subscribers.
func (m *Monitor) apply(online bool, source string) {
	now := m.now()

	m.mu.Lock()
	changed := m.state.IsOnline != online
	m.state = models.ConnectivityState{IsOnline: online, LastCheckedAt: now}
	state := m.state
	m.mu.Unlock()

	if !changed {
		return
	}

	m.logger.Info().
		Str("status", state.Status()).
		Str("source", source).
		Msg("connectivity changed")

	m.notify(state)
}

func (m *Monitor) notify(state models.ConnectivityState) {
	m.subsMu.Lock()
	ids := make([]uint64, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, m.subs[id])
	}
	m.subsMu.Unlock()

	for _, h := range handlers {
		h(state)
	}

	if m.bus != nil {
		m.bus.Publish(events.Event{
			Kind:   events.KindConnectionChange,
			At:     state.LastCheckedAt,
			Online: state.IsOnline,
		})
	}
}
