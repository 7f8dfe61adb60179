package repo

import "errors"

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned on a unique constraint violation.
var ErrAlreadyExists = errors.New("already exists")

// ErrConflict is returned when a compare-and-set update matched no row.
var ErrConflict = errors.New("conflict")
