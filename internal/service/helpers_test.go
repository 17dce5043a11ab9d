package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/cache"
	"github.com/MKhiriev/go-offline-sync/internal/connectivity"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/mock"
	"github.com/MKhiriev/go-offline-sync/internal/queue"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeMonitor is a hand-driven ConnectivityMonitor.
type fakeMonitor struct {
	mu     sync.Mutex
	online bool
	next   int
	subs   map[int]connectivity.Handler
}

func newFakeMonitor(online bool) *fakeMonitor {
	return &fakeMonitor{online: online, subs: make(map[int]connectivity.Handler)}
}

func (m *fakeMonitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *fakeMonitor) State() models.ConnectivityState {
	return models.ConnectivityState{IsOnline: m.IsOnline(), LastCheckedAt: time.Now()}
}

func (m *fakeMonitor) AwaitFreshCheck(context.Context) bool {
	return m.IsOnline()
}

func (m *fakeMonitor) Subscribe(h connectivity.Handler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := m.next
	m.subs[id] = h
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *fakeMonitor) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// set flips the state and notifies subscribers on change.
func (m *fakeMonitor) set(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	handlers := make([]connectivity.Handler, 0, len(m.subs))
	for _, h := range m.subs {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, h := range handlers {
		h(models.ConnectivityState{IsOnline: online, LastCheckedAt: time.Now()})
	}
}

// fixture bundles a sync engine with its collaborators.
type fixture struct {
	store   store.DurableStore
	queue   *queue.Queue
	cache   *cache.LocalCache
	remote  *mock.MockRemoteService
	monitor *fakeMonitor
	bus     *events.Bus
	engine  *syncEngine

	mu        sync.Mutex
	completed []events.Event
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		store:   store.NewMemoryStore(nil),
		remote:  mock.NewMockRemoteService(ctrl),
		monitor: newFakeMonitor(online),
		bus:     events.NewBus(nil),
	}
	f.queue = queue.New(f.store, nil)
	f.cache = cache.New(f.store, nil)
	f.engine = NewSyncEngine(f.queue, f.remote, f.monitor, f.bus, nil).(*syncEngine)
	f.bus.Subscribe(events.KindSyncCompleted, func(e events.Event) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.completed = append(f.completed, e)
	})
	t.Cleanup(f.engine.Stop)
	return f
}

func (f *fixture) completedEvents() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.completed...)
}

func (f *fixture) enqueue(t *testing.T, ops ...models.Operation) []models.QueueItem {
	t.Helper()
	items := make([]models.QueueItem, 0, len(ops))
	for _, op := range ops {
		item, err := f.queue.Enqueue(context.Background(), op)
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func song(t *testing.T, title string) models.Operation {
	t.Helper()
	op, err := models.NewOperation(models.ActionAddRow, models.CollectionSongs,
		map[string]string{"musica": title, "cantor": "Coral"})
	require.NoError(t, err)
	return op
}

// songTitle matches operations whose song title is title.
func songTitle(title string) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		op, ok := x.(models.Operation)
		if !ok {
			return false
		}
		p, ok := op.Payload.(models.SongPayload)
		return ok && p.Musica == title
	})
}

var okResponse = models.WriteResponse{Status: models.StatusSuccess}
