package metrics

import (
	"context"
	"errors"
	"time"

	"stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/marketdata/usecase"
)

// InstrumentedBarProvider は BarProvider の呼び出し時間とエラーを記録します。
type InstrumentedBarProvider struct {
	inner usecase.BarProvider
	rec   *Recorder
}

var _ usecase.BarProvider = (*InstrumentedBarProvider)(nil)

// InstrumentBarProvider は inner を計測付きでラップします。
func InstrumentBarProvider(inner usecase.BarProvider, rec *Recorder) *InstrumentedBarProvider {
	return &InstrumentedBarProvider{inner: inner, rec: rec}
}

// GetBars delegates to the wrapped provider. ErrNoData is not counted as a failure.
func (p *InstrumentedBarProvider) GetBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]entity.Bar, error) {
	began := time.Now()
	bars, err := p.inner.GetBars(ctx, symbol, interval, start, end)
	recorded := err
	if errors.Is(err, usecase.ErrNoData) {
		recorded = nil
	}
	p.rec.ProviderCall(interval, time.Since(began), recorded)
	return bars, err
}
