package repository

import "errors"

var (
	// ErrNotFound is returned when a requested user is not in the store.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a user with the same email exists.
	ErrAlreadyExists = errors.New("already exists")
)
