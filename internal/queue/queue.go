// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package queue implements the durable FIFO of pending mutations.
//
// The queue keeps no in-memory copy. Every operation loads the persisted
// list from the [store.DurableStore], and every mutation writes it back
// before returning, so the on-disk queue is always the source of truth.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// StorageKey is the durable store key holding the whole queue.
const StorageKey = "sync_queue"

// IDGenerator produces unique queue item identifiers.
type IDGenerator interface {
	Generate() string
}

// Queue is the durable mutation queue. It is safe for concurrent use within
// one process.
type Queue struct {
	mu    sync.Mutex
	store store.DurableStore
	ids   IDGenerator
	now   func() time.Time

	logger *logger.Logger
}

// Option customises a [Queue].
type Option func(*Queue)

// WithIDGenerator replaces the default UUIDv7 generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(q *Queue) { q.ids = g }
}

// WithClock replaces time.Now for EnqueuedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New returns a queue persisted in s.
func New(s store.DurableStore, log *logger.Logger, opts ...Option) *Queue {
	if log == nil {
		log = logger.Nop()
	}
	q := &Queue{
		store:  s,
		ids:    utils.NewUUIDGenerator(),
		now:    time.Now,
		logger: log.Component("queue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends op and persists the queue. It never talks to the network.
func (q *Queue) Enqueue(ctx context.Context, op models.Operation) (models.QueueItem, error) {
	if err := op.Validate(); err != nil {
		return models.QueueItem{}, fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.loadForUpdate(ctx)
	if err != nil {
		return models.QueueItem{}, err
	}
	item := models.QueueItem{
		ID:         q.ids.Generate(),
		EnqueuedAt: q.now().UTC(),
		Operation:  op,
	}
	items = append(items, item)

	if err = q.save(ctx, items); err != nil {
		return models.QueueItem{}, err
	}

	q.logger.Debug().
		Str("item_id", item.ID).
		Str("collection", op.Collection).
		Str("action", op.Action).
		Int("len", len(items)).
		Msg("mutation enqueued")
	return item, nil
}

// PeekHead returns the oldest pending item.
func (q *Queue) PeekHead(ctx context.Context) (models.QueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.load(ctx)
	if len(items) == 0 {
		return models.QueueItem{}, false
	}
	return items[0], true
}

// DequeueHead removes the head item if its id is id. A mismatching head is
// left in place and [ErrHeadMismatch] is returned.
func (q *Queue) DequeueHead(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.loadForUpdate(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrEmpty
	}
	if items[0].ID != id {
		return fmt.Errorf("%w: head is %s, want %s", ErrHeadMismatch, items[0].ID, id)
	}

	if err = q.save(ctx, items[1:]); err != nil {
		return err
	}

	q.logger.Debug().Str("item_id", id).Int("len", len(items)-1).Msg("mutation dequeued")
	return nil
}

// ReplaceHead overwrites the head item with item. The ids must match.
func (q *Queue) ReplaceHead(ctx context.Context, item models.QueueItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.loadForUpdate(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrEmpty
	}
	if items[0].ID != item.ID {
		return fmt.Errorf("%w: head is %s, want %s", ErrHeadMismatch, items[0].ID, item.ID)
	}

	items[0] = item
	return q.save(ctx, items)
}

// Items returns a snapshot of the pending items in FIFO order.
func (q *Queue) Items(ctx context.Context) []models.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// Len returns the number of pending items.
func (q *Queue) Len(ctx context.Context) int {
	return len(q.Items(ctx))
}

// load reads the persisted queue. A missing or corrupt value is an empty
// queue.
func (q *Queue) load(ctx context.Context) []models.QueueItem {
	items := []models.QueueItem{}
	if !q.store.Get(ctx, StorageKey, &items) || items == nil {
		return []models.QueueItem{}
	}
	return items
}

// loadForUpdate is load for callers that write the queue back. A failed
// read aborts the mutation instead of overwriting the stored queue with an
// empty one.
func (q *Queue) loadForUpdate(ctx context.Context) ([]models.QueueItem, error) {
	items := []models.QueueItem{}
	found, err := q.store.Lookup(ctx, StorageKey, &items)
	if err != nil {
		q.logger.Err(err).Msg("failed to read queue")
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if !found || items == nil {
		return []models.QueueItem{}, nil
	}
	return items, nil
}

func (q *Queue) save(ctx context.Context, items []models.QueueItem) error {
	if err := q.store.Set(ctx, StorageKey, items); err != nil {
		q.logger.Err(err).Int("len", len(items)).Msg("failed to persist queue")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
