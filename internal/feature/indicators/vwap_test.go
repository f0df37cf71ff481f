package indicators_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stock_signals/internal/feature/indicators"
	"stock_signals/internal/feature/marketdata/domain/entity"
)

func TestVWAP(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		bars []entity.Bar
		want []float64
	}{
		{
			name: "success: running average within a session",
			bars: []entity.Bar{
				{Time: day, High: 11, Low: 9, Close: 10, Volume: 100},
				{Time: day.Add(time.Hour), High: 14, Low: 10, Close: 12, Volume: 300},
			},
			want: []float64{10, 11.5},
		},
		{
			name: "success: sums restart on a new UTC day",
			bars: []entity.Bar{
				{Time: day, High: 11, Low: 9, Close: 10, Volume: 100},
				{Time: day.Add(24 * time.Hour), High: 21, Low: 19, Close: 20, Volume: 0},
				{Time: day.Add(25 * time.Hour), High: 21, Low: 19, Close: 20, Volume: 50},
			},
			want: []float64{10, nan, 20},
		},
		{
			name: "success: empty input",
			bars: nil,
			want: []float64{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertSeries(t, tt.want, indicators.VWAP(tt.bars))
		})
	}
}

func TestVWAPBands(t *testing.T) {
	t.Parallel()

	t.Run("success: flat vwap collapses the bands", func(t *testing.T) {
		t.Parallel()
		vw := []float64{100, 100, 100}
		b := indicators.VWAPBands(vw, 2, 2.0)

		assertSeries(t, []float64{nan, 100, 100}, b.Upper)
		assertSeries(t, []float64{nan, 100, 100}, b.Lower)
		assertSeries(t, vw, b.Basis)
	})

	t.Run("success: sample deviation", func(t *testing.T) {
		t.Parallel()
		// std([1,3], ddof=1) = sqrt(2)
		b := indicators.VWAPBands([]float64{1, 3}, 2, 1.0)
		assert.InDelta(t, 3+1.4142135, b.Upper[1], 1e-6)
		assert.InDelta(t, 3-1.4142135, b.Lower[1], 1e-6)
	})
}
