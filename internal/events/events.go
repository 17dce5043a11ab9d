// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package events is an in-process publish/subscribe bus for the two
// notifications the client emits: connectivity changes and completed drains.
package events

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// Kind names an event type. The string values are part of the public
// contract and must not change.
type Kind string

const (
	// KindConnectionChange is published whenever the connectivity monitor
	// flips between online and offline.
	KindConnectionChange Kind = "connection-change"

	// KindSyncCompleted is published when a drain empties the queue after
	// removing at least one item.
	KindSyncCompleted Kind = "syncCompleted"
)

// Event is a single notification.
type Event struct {
	Kind Kind
	At   time.Time

	// Online is set for KindConnectionChange.
	Online bool

	// Processed is the number of items removed by the drain, set for
	// KindSyncCompleted.
	Processed int
}

// Status returns "online" or "offline" for connection-change events.
func (e Event) Status() string {
	if e.Online {
		return "online"
	}
	return "offline"
}

// Handler receives published events.
type Handler func(Event)

// Bus fans events out to subscribers. The zero value is not usable, use
// [NewBus].
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Kind]map[uint64]Handler
	order  map[Kind][]uint64

	logger *logger.Logger
}

// NewBus returns an empty bus.
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{
		subs:   make(map[Kind]map[uint64]Handler),
		order:  make(map[Kind][]uint64),
		logger: log.Component("events"),
	}
}

// Subscribe registers h for kind and returns a function that removes the
// subscription. Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(kind Kind, h Handler) (unsubscribe func()) {
	if h == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[kind] == nil {
		b.subs[kind] = make(map[uint64]Handler)
	}
	b.subs[kind][id] = h
	b.order[kind] = append(b.order[kind], id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[kind], id)
			ids := b.order[kind]
			for i, v := range ids {
				if v == id {
					b.order[kind] = append(ids[:i:i], ids[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers e synchronously to every current subscriber of e.Kind in
// subscription order. A panicking handler is logged and skipped.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order[e.Kind]))
	for _, id := range b.order[e.Kind] {
		handlers = append(handlers, b.subs[e.Kind][id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(h, e)
	}
}

// Subscribers returns the number of handlers registered for kind.
func (b *Bus) Subscribers(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("kind", string(e.Kind)).
				Interface("panic", r).
				Msg("event handler panicked")
		}
	}()
	h(e)
}
