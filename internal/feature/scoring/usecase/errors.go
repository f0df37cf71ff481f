package usecase

import "errors"

var (
	// ErrEmptySymbol is returned when no symbol is given.
	ErrEmptySymbol = errors.New("symbol is required")

	// ErrInvalidRetention is returned when a purge is requested with a negative window.
	ErrInvalidRetention = errors.New("retention days must not be negative")
)
