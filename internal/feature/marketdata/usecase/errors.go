package usecase

import "errors"

var (
	// ErrNoData is returned by providers when the source has no bars for the request.
	// Callers treat it as an empty series.
	ErrNoData = errors.New("no data")

	// ErrUnsupportedInterval is returned when a provider cannot serve the requested interval.
	ErrUnsupportedInterval = errors.New("unsupported interval")
)
