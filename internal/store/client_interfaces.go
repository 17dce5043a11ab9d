// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store provides the durable key-value surface used by the offline
// client. Both the mutation queue and the per-collection caches persist
// through [DurableStore]; nothing else touches the database directly.
package store

import "context"

//go:generate mockgen -source=client_interfaces.go -destination=../mock/durable_store_mock.go -package=mock

// DurableStore is a whole-value key-value store. Values are JSON-encoded.
//
// Every call is atomic from the caller's perspective: a concurrent reader
// observes either the previous or the new value, never a partial write.
type DurableStore interface {
	// Set encodes value as JSON and replaces whatever is stored under key.
	Set(ctx context.Context, key string, value any) error

	// Get decodes the value stored under key into dst and reports whether it
	// did. A missing key, a corrupt value or a read failure all return false
	// and leave dst untouched, so the caller's default stays in place.
	Get(ctx context.Context, key string, dst any) bool

	// Lookup is Get for callers that must tell a failed read apart from a
	// missing value. A corrupt value is still a miss (false, nil); only a
	// read that could not be performed returns an error.
	Lookup(ctx context.Context, key string, dst any) (bool, error)

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists the stored keys that start with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}
