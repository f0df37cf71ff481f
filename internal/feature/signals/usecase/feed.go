package usecase

import (
	"fmt"

	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/signals/domain/entity"
	tradeentity "stock_signals/internal/feature/trades/domain/entity"
)

// Feed converts synthesizer events into lifecycle signals for the backtester.
type Feed struct {
	base SynthesizerConfig
}

// NewFeed は新しい Feed を生成します。
func NewFeed(base SynthesizerConfig) *Feed {
	return &Feed{base: base}
}

// Signals evaluates bars with the named strategies (all when empty) and returns
// one signal per event, in bar order.
func (f *Feed) Signals(symbol, interval string, bars []mdentity.Bar, strategies []string, quantity float64) ([]tradeentity.Signal, error) {
	cfg := f.base
	if len(strategies) > 0 {
		cfg.Strategies = make([]entity.Strategy, 0, len(strategies))
		for _, name := range strategies {
			st, ok := entity.ParseStrategy(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
			}
			cfg.Strategies = append(cfg.Strategies, st)
		}
	}

	events := NewSynthesizer(cfg).Evaluate(symbol, interval, bars)
	out := make([]tradeentity.Signal, 0, len(events))
	for _, ev := range events {
		out = append(out, tradeentity.Signal{
			Symbol:    symbol,
			Interval:  interval,
			Action:    ActionFor(ev.Kind),
			Price:     ev.Price,
			Time:      ev.Time,
			Indicator: string(ev.Strategy),
			Quantity:  quantity,
		})
	}
	return out, nil
}
