// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Actions understood by the remote write endpoint.
const (
	// ActionAddRow appends a new row to the target collection.
	ActionAddRow = "addRow"

	// ActionDeleteRow removes the row identified by DeletePayload.ID.
	ActionDeleteRow = "deleteRow"
)

// Collections mirrored between the remote service and the local cache.
const (
	// CollectionSongs holds the song catalogue (sheet "Musicas").
	CollectionSongs = "Musicas"

	// CollectionSchedules holds service schedules (sheet "Escalas").
	CollectionSchedules = "Escalas"
)

// KnownCollections lists every collection the client knows how to type.
var KnownCollections = []string{CollectionSongs, CollectionSchedules}

// CanonicalCollection returns the canonical spelling of a known collection
// name (case-insensitive match). Unknown names are returned trimmed but
// otherwise unchanged, and ok is false.
func CanonicalCollection(name string) (canonical string, ok bool) {
	name = strings.TrimSpace(name)
	for _, c := range KnownCollections {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return name, false
}

// DefaultAction returns the action assumed for a legacy queue item that was
// stored without one.
func DefaultAction(collection string) (string, bool) {
	if _, ok := CanonicalCollection(collection); !ok {
		return "", false
	}
	return ActionAddRow, true
}

// Operation is a single pending write: what to do, where, and with which
// data. It is opaque to the queue and interpreted by the remote service and
// the cache.
type Operation struct {
	Action     string
	Collection string

	// Payload is the typed view of Raw.
	Payload Payload

	// Raw is the payload exactly as the caller supplied it. It is what the
	// remote and the cache receive, so fields the typed view does not know
	// about are kept. When empty, Payload is encoded instead.
	Raw json.RawMessage
}

// NewOperation decodes payload (any JSON-encodable value) into the typed
// variant for the pair.
func NewOperation(action, collection string, payload any) (Operation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Operation{}, fmt.Errorf("encode operation payload: %w", err)
	}
	action = strings.TrimSpace(action)
	canonical, _ := CanonicalCollection(collection)
	return Operation{
		Action:     action,
		Collection: canonical,
		Payload:    DecodePayload(action, canonical, raw),
		Raw:        raw,
	}, nil
}

type operationJSON struct {
	Action     string          `json:"action"`
	Collection string          `json:"collection"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func (o Operation) MarshalJSON() ([]byte, error) {
	raw, err := o.RawPayload()
	if err != nil {
		return nil, err
	}
	return json.Marshal(operationJSON{Action: o.Action, Collection: o.Collection, Payload: raw})
}

func (o *Operation) UnmarshalJSON(b []byte) error {
	var w operationJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	o.Action = w.Action
	o.Collection = w.Collection
	o.Payload = DecodePayload(w.Action, w.Collection, w.Payload)
	o.Raw = w.Payload
	return nil
}

// RawPayload returns the JSON body of the operation: Raw when present,
// otherwise the encoding of Payload.
func (o Operation) RawPayload() (json.RawMessage, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	if o.Payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(o.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode operation payload: %w", err)
	}
	return raw, nil
}

// Fields returns the payload as a flat field map. A payload that is not a
// JSON object yields an empty map.
func (o Operation) Fields() map[string]any {
	fields := make(map[string]any)
	raw, err := o.RawPayload()
	if err != nil || len(raw) == 0 {
		return fields
	}
	if err = json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return make(map[string]any)
	}
	return fields
}

// WireBody flattens the operation into the body expected by the remote
// write endpoint: {action, sheet, <payload fields>}.
func (o Operation) WireBody() map[string]any {
	body := o.Fields()
	body["action"] = o.Action
	body["sheet"] = o.Collection
	return body
}

// Validate checks the minimum an operation needs before it may be queued.
// Unknown (action, collection) pairs are accepted. A known pair whose body
// does not decode into its variant is not.
func (o Operation) Validate() error {
	if strings.TrimSpace(o.Action) == "" && strings.TrimSpace(o.Collection) == "" {
		return ErrEmptyOperation
	}
	if o.Payload == nil {
		return ErrEmptyPayload
	}
	canonical, _ := CanonicalCollection(o.Collection)
	want := variantFor(strings.TrimSpace(o.Action), canonical)
	if want != PayloadUnknown && o.Payload.Kind() != want {
		return fmt.Errorf("%w: %s %s needs a %s payload", ErrPayloadMismatch, o.Action, canonical, want)
	}
	return nil
}
