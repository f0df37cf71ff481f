package indicators_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"stock_signals/internal/feature/indicators"
	"stock_signals/internal/feature/marketdata/domain/entity"
)

func TestBuildFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    int
	}{
		{"success: long series", 120},
		{"success: short series does not panic", 3},
		{"success: empty series", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bars := risingBars(tt.n)
			f := indicators.BuildFrame(bars, indicators.DefaultParams())

			assert.Equal(t, tt.n, f.Len)
			for name, col := range f.Columns {
				assert.Lenf(t, col, tt.n, "column %s", name)
			}
			assert.Len(t, f.Squeeze, tt.n)
			assert.Len(t, f.NoSqueeze, tt.n)
		})
	}
}

func TestFrame_UnknownColumn(t *testing.T) {
	t.Parallel()

	f := indicators.BuildFrame(risingBars(5), indicators.DefaultParams())
	assert.True(t, math.IsNaN(f.At("missing", 0)))
	assert.Len(t, f.Col("missing"), 5)
	assert.True(t, math.IsNaN(f.At(indicators.ColRSI, 2)))
}

func TestBuildFrame_SignalAndChartColumns(t *testing.T) {
	t.Parallel()

	bars := risingBars(120)
	p := indicators.DefaultParams()
	f := indicators.BuildFrame(bars, p)

	assertSeries(t, indicators.EMA(indicators.HL2(bars), 5), f.Col(indicators.ColEMAFastHL2))
	assertSeries(t, indicators.EMA(indicators.HL2(bars), 13), f.Col(indicators.ColEMASlowHL2))
	assertSeries(t, indicators.VWAP(bars), f.Col(indicators.ColVWAP))
	assertSeries(t, indicators.Scale(indicators.ATR(bars, 14), 1.5), f.Col(indicators.ColATRBand))

	// MACD(8,55,55) のヒストグラムは 55+55-2 本目から
	assert.True(t, math.IsNaN(f.At(indicators.ColWaveASlow, 107)))
	assert.False(t, math.IsNaN(f.At(indicators.ColWaveASlow, 108)))
	assert.False(t, math.IsNaN(f.At(indicators.ColWaveAFast, 66)))

	// 標本標準偏差のボリンジャー
	bb := indicators.Bollinger(entity.Closes(bars), 20, 2.0, 1)
	assertSeries(t, bb.Upper, f.Col(indicators.ColBBUpper))
}
