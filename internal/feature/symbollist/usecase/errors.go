package usecase

import "errors"

var (
	// ErrSymbolNotFound is returned when the code is not part of the universe.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrSymbolExists is returned when adding a code that is already active.
	ErrSymbolExists = errors.New("symbol already exists")

	// ErrInvalidCategory is returned for category IDs outside the seeded set.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrEmptyCode is returned when the symbol code is blank.
	ErrEmptyCode = errors.New("symbol code is required")
)
