package usecase

import "stock_signals/internal/feature/trades/domain/entity"

// Filter narrows the trade book. Zero values match everything.
type Filter struct {
	Symbol      string
	Interval    string
	Status      entity.Status
	BackTesting *bool
	RunID       string
	Limit       int
}
