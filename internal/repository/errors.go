// Package repository defines the MySQL data access layer: accounts,
// refresh tokens and the remote movie document collections.  Sentinel
// errors declared here let handlers pick the right HTTP status.
package repository

import "errors"

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrInactiveUser is returned when a disabled account tries to sign in.
// Handlers should translate this into an HTTP 403 response.
var ErrInactiveUser = errors.New("user is inactive")
