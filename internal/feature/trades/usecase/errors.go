package usecase

import "errors"

var (
	// ErrDuplicatePosition is returned by repositories when the unique entry
	// guard rejects an insert. The manager treats it as a no-op.
	ErrDuplicatePosition = errors.New("duplicate position")
	// ErrInvalidQuantity is returned for a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidPrice is returned for a non-positive price.
	ErrInvalidPrice = errors.New("price must be positive")
	// ErrInvalidAction is returned for an unknown signal action.
	ErrInvalidAction = errors.New("invalid signal action")
	// ErrEmptySymbol is returned when a signal has no symbol.
	ErrEmptySymbol = errors.New("symbol is required")
)
