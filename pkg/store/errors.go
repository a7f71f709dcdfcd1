package store

import "errors"

// ErrNotFound is returned when a lookup by id/slug matches no row.
var ErrNotFound = errors.New("store: not found")

// ErrValidation marks caller-supplied input that fails a store-level check;
// pkg/api maps it to 400 Bad Request. None of the repositories in this
// package return it.
var ErrValidation = errors.New("store: invalid input")
