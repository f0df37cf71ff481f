// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrInvalidCredentials is returned when the username or password does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrLoginDisabled is returned when no operator password hash is configured.
	ErrLoginDisabled = errors.New("operator login is disabled")
)
