package repositories

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not resolve.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a conditional write finds the row no
	// longer matches the caller's last-read stage/status. The caller must
	// refetch and re-present current state, never retry with stale data.
	ErrConflict = errors.New("record was modified concurrently")
)
