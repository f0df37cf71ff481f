package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stock_signals/internal/feature/indicators"
	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
)

var fixtureStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// barsFrom は終値の列から高値・安値を ±0.5% としたバーを作成します。
func barsFrom(closes []float64) []mdentity.Bar {
	bars := make([]mdentity.Bar, len(closes))
	for i, c := range closes {
		bars[i] = mdentity.Bar{
			Time:   fixtureStart.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

// compounding は毎バー ratio 倍になる系列です。
func compounding(n int, ratio float64) []mdentity.Bar {
	closes := make([]float64, n)
	c := 100.0
	for i := range closes {
		closes[i] = c
		c *= ratio
	}
	return barsFrom(closes)
}

// acceleratingDecline は下落が加速していく系列です。
func acceleratingDecline(n int) []mdentity.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 400 - 0.004*float64(i*i)
	}
	return barsFrom(closes)
}

func flat(n int) []mdentity.Bar {
	bars := make([]mdentity.Bar, n)
	for i := range bars {
		bars[i] = mdentity.Bar{Time: fixtureStart.AddDate(0, 0, i), Open: 100, High: 100.5, Low: 99.5, Close: 100, Volume: 1000}
	}
	return bars
}

func TestScoreBars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		bars        []mdentity.Bar
		wantScore   int
		wantSqueeze indicators.SqueezeLevel
		wantOK      bool
	}{
		{
			name:        "success: compounding uptrend meets every bullish condition",
			bars:        compounding(260, 1.01),
			wantScore:   15,
			wantSqueeze: indicators.SqueezeNone,
			wantOK:      true,
		},
		{
			// 終値は常に ATR トレイルより上にあるため、弱気条件は最大14個です。
			name:        "success: accelerating decline scores -13",
			bars:        acceleratingDecline(260),
			wantScore:   -13,
			wantSqueeze: indicators.SqueezeNone,
			wantOK:      true,
		},
		{
			// MACD(24,52,9) と SMA の傾きが算出できない条件は不成立として数える
			name:        "success: exactly 50 bars leaves unavailable conditions out",
			bars:        compounding(50, 1.01),
			wantScore:   11,
			wantSqueeze: indicators.SqueezeNone,
			wantOK:      true,
		},
		{
			name:        "failure: fewer than 50 bars",
			bars:        compounding(49, 1.01),
			wantScore:   0,
			wantSqueeze: indicators.SqueezeUnavailable,
			wantOK:      false,
		},
		{
			name:        "failure: no bars",
			bars:        nil,
			wantScore:   0,
			wantSqueeze: indicators.SqueezeUnavailable,
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			score, squeeze, ok := ScoreBars(tt.bars)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantSqueeze, squeeze)
		})
	}
}

// TestScoreBars_FlatSeriesIsHighSqueeze は値動きの無い系列が最も強いスクイーズになることを検証します。
func TestScoreBars_FlatSeriesIsHighSqueeze(t *testing.T) {
	t.Parallel()

	score, squeeze, ok := ScoreBars(flat(80))
	assert.True(t, ok)
	assert.Equal(t, indicators.SqueezeHigh, squeeze)
	assert.GreaterOrEqual(t, score, -15)
	assert.LessOrEqual(t, score, 15)
}

func TestScoreBars_Deterministic(t *testing.T) {
	t.Parallel()

	bars := compounding(120, 1.003)
	s1, q1, _ := ScoreBars(bars)
	s2, q2, _ := ScoreBars(bars)
	assert.Equal(t, s1, s2)
	assert.Equal(t, q1, q2)
}
