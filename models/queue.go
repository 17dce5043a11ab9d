package models

import (
	"encoding/json"
	"time"
)

// QueueItem is one pending mutation in the durable queue.
type QueueItem struct {
	// ID is a time-ordered UUIDv7, unique within the queue.
	ID string `json:"id"`

	// EnqueuedAt is informational only; ordering comes from queue position.
	EnqueuedAt time.Time `json:"enqueued_at"`

	Operation Operation `json:"operation"`
}

// UnmarshalJSON accepts the current layout as well as the flat layout
// written by older clients, where action, collection and payload sat next
// to the id.
func (q *QueueItem) UnmarshalJSON(b []byte) error {
	var w struct {
		ID         string          `json:"id"`
		EnqueuedAt time.Time       `json:"enqueued_at"`
		Operation  json.RawMessage `json:"operation"`
		Action     string          `json:"action"`
		Collection string          `json:"collection"`
		Payload    json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	q.ID = w.ID
	q.EnqueuedAt = w.EnqueuedAt
	if len(w.Operation) > 0 && string(w.Operation) != "null" {
		return json.Unmarshal(w.Operation, &q.Operation)
	}

	q.Operation = Operation{
		Action:     w.Action,
		Collection: w.Collection,
		Payload:    DecodePayload(w.Action, w.Collection, w.Payload),
		Raw:        w.Payload,
	}
	return nil
}
