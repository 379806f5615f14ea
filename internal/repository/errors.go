package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches a lookup or an update precondition.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateToken is returned when a pending code is already held by another user.
	ErrDuplicateToken = errors.New("token already in use")
)
