package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional write lost to a concurrent
// writer: the slot constraint rejected the insert, or a compare-and-swap
// matched zero rows. The caller re-reads and reports a structured business
// error.
var ErrConflict = errors.New("write conflict")
