// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cache keeps the last known contents of every remote collection in
// the durable store so that reads work offline.
//
// Local writes are applied optimistically by [LocalCache.ApplyOptimistic];
// the background refresh later overwrites the snapshot with the
// authoritative remote contents through [LocalCache.ReplaceAll].
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
)

const (
	// KeyPrefix prefixes the per-collection snapshot keys.
	KeyPrefix = "offline_"

	// LastFullSyncKey holds the time of the last refresh in which every
	// collection succeeded.
	LastFullSyncKey = "last_full_sync"

	// idField is the record field used to match deletions.
	idField = "id"
)

// Key returns the durable store key of collection's snapshot.
func Key(collection string) string {
	return KeyPrefix + strings.ToLower(strings.TrimSpace(collection))
}

// LocalCache is the per-collection snapshot cache.
type LocalCache struct {
	mu     sync.Mutex
	store  store.DurableStore
	logger *logger.Logger
}

// New returns a cache persisted in s.
func New(s store.DurableStore, log *logger.Logger) *LocalCache {
	if log == nil {
		log = logger.Nop()
	}
	return &LocalCache{store: s, logger: log.Component("cache")}
}

// ApplyOptimistic folds a local mutation into the cached snapshot before the
// remote has confirmed it.
//
// add/addRow append the payload as a record. remove/delete/deleteRow drop
// every record whose id equals the payload id; a payload without an id
// leaves the snapshot unchanged. Other actions are ignored.
func (c *LocalCache) ApplyOptimistic(ctx context.Context, op models.Operation) error {
	collection := strings.TrimSpace(op.Collection)
	if collection == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.load(ctx, collection)
	switch strings.ToLower(strings.TrimSpace(op.Action)) {
	case "add", "addrow":
		records = append(records, op.Fields())
	case "remove", "delete", "deleterow":
		id, ok := recordID(op.Fields())
		if !ok {
			c.logger.Debug().
				Str("collection", collection).
				Msg("delete without id, cache left unchanged")
			return nil
		}
		records = removeByID(records, id)
	default:
		return nil
	}

	return c.save(ctx, collection, records)
}

// ReplaceAll overwrites the snapshot of collection. It always wins over any
// optimistic state.
func (c *LocalCache) ReplaceAll(ctx context.Context, collection string, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, collection, records)
}

// Get returns the last persisted snapshot of collection. A missing or
// corrupt snapshot yields an empty, non-nil slice.
func (c *LocalCache) Get(ctx context.Context, collection string) []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx, collection)
}

// Clear drops the snapshot of collection.
func (c *LocalCache) Clear(ctx context.Context, collection string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Remove(ctx, Key(collection)); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	return nil
}

// Collections lists the collections that currently have a snapshot, by
// their lower-case storage names.
func (c *LocalCache) Collections(ctx context.Context) ([]string, error) {
	keys, err := c.store.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, KeyPrefix))
	}
	return out, nil
}

// MarkFullSync records t as the last fully successful refresh.
func (c *LocalCache) MarkFullSync(ctx context.Context, t time.Time) error {
	return c.store.Set(ctx, LastFullSyncKey, t.UTC())
}

// LastFullSync returns the time recorded by MarkFullSync.
func (c *LocalCache) LastFullSync(ctx context.Context) (time.Time, bool) {
	var t time.Time
	if !c.store.Get(ctx, LastFullSyncKey, &t) {
		return time.Time{}, false
	}
	return t, true
}

func (c *LocalCache) load(ctx context.Context, collection string) []models.Record {
	records := []models.Record{}
	if !c.store.Get(ctx, Key(collection), &records) || records == nil {
		return []models.Record{}
	}
	return records
}

func (c *LocalCache) save(ctx context.Context, collection string, records []models.Record) error {
	if err := c.store.Set(ctx, Key(collection), records); err != nil {
		c.logger.Err(err).Str("collection", collection).Msg("failed to persist snapshot")
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func recordID(fields map[string]any) (string, bool) {
	return models.RecordID(fields[idField])
}

func removeByID(records []models.Record, id string) []models.Record {
	out := records[:0]
	for _, r := range records {
		if rid, ok := recordID(r); ok && rid == id {
			continue
		}
		out = append(out, r)
	}
	return out
}
