// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport-layer abstraction for talking to the
// remote read/write service that backs the offline client.
//
// The primary abstraction is [RemoteService], which decouples the sync engine
// and the refresh scheduler from the underlying protocol. The package ships an
// HTTP/JSON implementation built on resty ([NewHTTPRemoteService]).
//
// Every failure is classified into one of the sentinel values defined in
// errors.go so that callers can use [errors.Is] to decide whether an item
// should be retried later ([ErrTransport]) or dropped ([ErrProtocol],
// [ErrUnrecognizedResponse], [ErrRejected]).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_service_mock.go -package=mock

// RemoteService is the remote read/write endpoint.
type RemoteService interface {
	// Write dispatches a single mutation. On a well-formed response the
	// decoded envelope is returned; when the remote answered with
	// status "error" the envelope is returned together with a wrapped
	// [ErrRejected].
	Write(ctx context.Context, op models.Operation) (models.WriteResponse, error)

	// Fetch returns the authoritative contents of collection.
	Fetch(ctx context.Context, collection string) ([]models.Record, error)
}
