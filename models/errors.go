package models

import "errors"

var (
	// ErrEmptyOperation is returned when an operation carries neither an
	// action nor a collection.
	ErrEmptyOperation = errors.New("operation has no action and no collection")

	// ErrEmptyPayload is returned when an operation has no payload at all.
	ErrEmptyPayload = errors.New("operation has no payload")

	// ErrPayloadMismatch is returned when a known (action, collection) pair
	// carries a body that does not fit its payload variant.
	ErrPayloadMismatch = errors.New("payload does not match operation")
)
