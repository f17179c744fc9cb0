package weather

import "errors"

var (
	// ErrNotFound is returned when no measurement exists for an instant or day.
	ErrNotFound = errors.New("measurement not found")
	// ErrConflict is returned when the timestamp in the path and in the payload differ.
	ErrConflict = errors.New("timestamp mismatch")
	// ErrBadRequest is returned for malformed input, e.g. an unknown stat or metric.
	ErrBadRequest = errors.New("bad request")
)
