package storage

import "errors"

var (
	// ErrNotFound is the typed absence returned when a lookup by id (or a
	// sparse update targeting an id) matches no row.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a requested order status is not
	// reachable from the current one.
	ErrInvalidTransition = errors.New("invalid order status transition")
)
