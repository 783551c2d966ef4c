package models

import "errors"

var (
	// ErrNotFound is returned when a requested user, workout or session
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned when registering an auth0_id twice.
	ErrUserExists = errors.New("user already exists")
)
