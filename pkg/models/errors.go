package models

import "errors"

// Error kinds shared across the engine. Handlers map these onto HTTP status
// codes: ErrInvalidQuery -> 400, ErrNotFound -> 404, ErrFetchFailed -> 500.
var (
	// ErrInvalidQuery means the date phrase or request field could not be
	// understood. A caller error.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrFetchFailed means the roster source is unavailable and no usable
	// cached copy exists.
	ErrFetchFailed = errors.New("roster fetch failed")

	// ErrNotFound means the query was valid but matched no roster row. A
	// normal outcome, not a failure.
	ErrNotFound = errors.New("no matching roster entry")
)
