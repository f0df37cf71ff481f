package usecase

import (
	"context"

	"stock_signals/internal/feature/indicators"
	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/signals/domain/entity"
)

// Chart is a bar series with the indicator frame the synthesizer read and
// the events it fired.
type Chart struct {
	Symbol   string
	Interval string
	Bars     []mdentity.Bar
	Frame    indicators.Frame
	Events   []entity.Event
}

// Chart fetches bars and returns them with their frame for plotting.
// Nothing is dispatched to the trade lifecycle.
func (u *ScanUsecase) Chart(ctx context.Context, symbol, interval string) (Chart, error) {
	symbol, interval, bars, err := u.fetch(ctx, symbol, interval)
	if err != nil {
		return Chart{}, err
	}
	f := indicators.BuildFrame(bars, u.synth.Params())
	return Chart{
		Symbol:   symbol,
		Interval: interval,
		Bars:     bars,
		Frame:    f,
		Events:   u.synth.EvaluateFrame(symbol, interval, bars, f),
	}, nil
}
