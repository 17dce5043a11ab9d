// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the offline client's business logic: the sync engine
// that drains the mutation queue, the background refresh scheduler and the
// facade exposed to forms and UI code.
package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/internal/connectivity"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/models"
)

// ConnectivityMonitor is the part of [connectivity.Monitor] the services
// depend on.
type ConnectivityMonitor interface {
	IsOnline() bool
	State() models.ConnectivityState
	AwaitFreshCheck(ctx context.Context) bool
	Subscribe(h connectivity.Handler) (unsubscribe func())
}

// SyncEngine replays queued mutations against the remote service, one at a
// time and in FIFO order.
type SyncEngine interface {
	// Start subscribes to connectivity changes and launches the drain worker.
	Start(ctx context.Context)

	// Stop unsubscribes and waits for the worker to exit.
	Stop()

	// Trigger asks the worker to drain. It never blocks; triggers that arrive
	// while a drain is pending or running are coalesced.
	Trigger()

	// Drain runs one drain sequence synchronously.
	Drain(ctx context.Context) (models.DrainReport, error)

	// State returns the current state machine position.
	State() models.EngineState
}

// RefreshScheduler periodically replaces the cached collections with the
// authoritative remote contents.
type RefreshScheduler interface {
	// Start runs one refresh immediately in the background and registers the
	// periodic schedule.
	Start(ctx context.Context)

	// Stop cancels the schedule and waits for a running cycle to finish.
	Stop()

	// Refresh runs one cycle and reports whether every collection
	// succeeded. It never returns an error.
	Refresh(ctx context.Context) (models.RefreshReport, bool)
}

// OfflineService is the API consumed by forms and UI code.
type OfflineService interface {
	// EnqueueMutation applies op to the cache, queues it durably and, when
	// online, asks the engine to drain. It fails only for an invalid
	// operation or when the queue cannot be persisted.
	EnqueueMutation(ctx context.Context, op models.Operation) (models.QueueItem, error)

	// GetCachedCollection returns the cached snapshot, empty on a miss.
	GetCachedCollection(ctx context.Context, name string) []models.Record

	// IsOnline returns the last known connectivity state.
	IsOnline() bool

	// AwaitFreshConnectivityCheck runs an active probe and returns its
	// verdict.
	AwaitFreshConnectivityCheck(ctx context.Context) bool

	// PendingMutations lists the queued mutations in FIFO order.
	PendingMutations(ctx context.Context) []models.QueueItem

	// Subscribe registers h for events of kind.
	Subscribe(kind events.Kind, h events.Handler) (unsubscribe func())
}
