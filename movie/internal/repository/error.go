package repository

import "errors"

// ErrNotFound is returned when a requested record is not in the store.
var ErrNotFound = errors.New("not found")
