package usecase

import "errors"

var (
	// ErrEmptySymbol is returned when a scan is requested without a symbol.
	ErrEmptySymbol = errors.New("symbol is required")
	// ErrUnknownStrategy is returned when a backtest names a strategy that does not exist.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
