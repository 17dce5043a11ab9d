package store

import "errors"

// Sentinel errors returned by store implementations. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrEncodingValue is returned by Set when the value cannot be encoded
	// as JSON. Nothing is written in that case.
	ErrEncodingValue = errors.New("error encoding value")

	// ErrEmptyKey is returned when a blank key is passed to Set or Remove.
	ErrEmptyKey = errors.New("empty key")

	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)

// Low-level database operation errors, wrapped by the sqlite store.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT, UPDATE or
	// DELETE fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRows is returned when scanning a result set fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
