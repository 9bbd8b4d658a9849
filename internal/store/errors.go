package store

import "errors"

var (
	// ErrStore wraps most non-sentinel errors this package returns. Close,
	// the summary file write in RegenerateSummary, and ReadFile's read of
	// the matched entry return their errors unwrapped.
	ErrStore = errors.New("object store error")

	// ErrNotFound is returned by Resolve and ReadFile when the requested
	// ref or path does not exist. Distinguished from ErrStore so callers
	// can treat "ref never existed" as a normal outcome rather than a
	// fatal error.
	ErrNotFound = errors.New("ref not found")
)
