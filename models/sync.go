// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Record is a single domain row as returned by the remote read endpoint.
type Record = map[string]any

// Status values of the remote JSON envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WriteResponse is the envelope returned by the remote write endpoint.
type WriteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReadResponse is the envelope returned by the remote read endpoint.
type ReadResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Data    []Record `json:"data"`
}

// ConnectivityState is owned by the connectivity monitor. There is no
// intermediate state between online and offline.
type ConnectivityState struct {
	IsOnline      bool      `json:"is_online"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

// Status returns "online" or "offline".
func (s ConnectivityState) Status() string {
	if s.IsOnline {
		return "online"
	}
	return "offline"
}

// EngineState is the drain state machine position of the sync engine.
type EngineState int32

const (
	EngineIdle EngineState = iota
	EngineDraining
	EngineAwaitingResponse
)

func (s EngineState) String() string {
	switch s {
	case EngineDraining:
		return "draining"
	case EngineAwaitingResponse:
		return "awaiting_response"
	default:
		return "idle"
	}
}

// DrainOutcome is the terminal (or non-terminal) result of dispatching one
// queue item.
type DrainOutcome int

const (
	// OutcomeSuccess: remote confirmed the write; item removed.
	OutcomeSuccess DrainOutcome = iota
	// OutcomeRejected: remote answered with an error status; item removed.
	OutcomeRejected
	// OutcomeDropped: unrecognised response, unparseable body or unknown
	// operation; item removed.
	OutcomeDropped
	// OutcomeStalled: transport failure; item kept at the head.
	OutcomeStalled
)

func (o DrainOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRejected:
		return "rejected"
	case OutcomeDropped:
		return "dropped"
	default:
		return "stalled"
	}
}

// DrainReport summarises one drain sequence.
type DrainReport struct {
	Succeeded int
	Rejected  int
	Dropped   int
	// Stalled is true when the drain stopped on a transport failure and left
	// the head item in place.
	Stalled bool
	// Remaining is the queue length when the drain returned.
	Remaining int
}

// Processed is the number of items removed from the queue.
func (r DrainReport) Processed() int {
	return r.Succeeded + r.Rejected + r.Dropped
}

// CollectionRefresh is the per-collection result of a refresh cycle.
type CollectionRefresh struct {
	Collection string
	Records    int
	Err        error
}

// RefreshReport summarises one background refresh cycle.
type RefreshReport struct {
	StartedAt   time.Time
	Collections []CollectionRefresh
}

// OK reports whether every collection refreshed successfully.
func (r RefreshReport) OK() bool {
	for _, c := range r.Collections {
		if c.Err != nil {
			return false
		}
	}
	return len(r.Collections) > 0
}
