package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConcurrentModification is returned when a conditional write finds the
// record changed since it was read. Callers should re-fetch and retry.
var ErrConcurrentModification = errors.New("record was modified concurrently")

// ErrDuplicateReference is returned when an escrow reference is already taken.
var ErrDuplicateReference = errors.New("escrow reference already exists")
