package indicators_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"stock_signals/internal/feature/indicators"
)

var nan = math.NaN()

// assertSeries は NaN を「未計算」として扱いながら2つの系列を比較します。
func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.Truef(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		assert.InDeltaf(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

func TestEMA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  []float64
		span int
		want []float64
	}{
		{"success: seeded with first value", []float64{1, 2, 3}, 3, []float64{1, 1.5, 2.25}},
		{"success: leading NaN skipped", []float64{nan, 2, 4}, 3, []float64{nan, 2, 3}},
		{"success: NaN after seed carries previous", []float64{2, nan, 4}, 3, []float64{2, 2, 3}},
		{"success: empty input", []float64{}, 3, []float64{}},
		{"failure: invalid span yields NaN", []float64{1, 2}, 0, []float64{nan, nan}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertSeries(t, tt.want, indicators.EMA(tt.src, tt.span))
		})
	}
}

func TestSMA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  []float64
		n    int
		want []float64
	}{
		{"success: rolling mean", []float64{1, 2, 3, 4, 5}, 3, []float64{nan, nan, 2, 3, 4}},
		{"success: NaN poisons its windows", []float64{1, nan, 3, 4, 5, 6}, 2, []float64{nan, nan, nan, 3.5, 4.5, 5.5}},
		{"success: shorter than window", []float64{1, 2}, 5, []float64{nan, nan}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertSeries(t, tt.want, indicators.SMA(tt.src, tt.n))
		})
	}
}

func TestRollingStd(t *testing.T) {
	t.Parallel()

	src := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	pop := indicators.RollingStd(src, 8, 0)
	assert.InDelta(t, 2.0, indicators.Last(pop), 1e-9)
	assert.True(t, math.IsNaN(pop[6]))

	sample := indicators.RollingStd(src, 8, 1)
	assert.InDelta(t, math.Sqrt(32.0/7.0), indicators.Last(sample), 1e-9)
}

func TestRollingExtremes(t *testing.T) {
	t.Parallel()

	src := []float64{3, 1, 4, 1, 5}
	assertSeries(t, []float64{nan, nan, 4, 4, 5}, indicators.RollingMax(src, 3))
	assertSeries(t, []float64{nan, nan, 1, 1, 1}, indicators.RollingMin(src, 3))
}

func TestCrossHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		a, b      []float64
		i         int
		wantAbove bool
		wantBelow bool
	}{
		{"success: cross above", []float64{1, 3}, []float64{2, 2}, 1, true, false},
		{"success: touch then above counts", []float64{2, 3}, []float64{2, 2}, 1, true, false},
		{"success: cross below", []float64{3, 1}, []float64{2, 2}, 1, false, true},
		{"success: already above is not a cross", []float64{3, 4}, []float64{2, 2}, 1, false, false},
		{"failure: first bar never crosses", []float64{3}, []float64{2}, 0, false, false},
		{"failure: unavailable operand", []float64{nan, 3}, []float64{2, 2}, 1, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantAbove, indicators.CrossAbove(tt.a, tt.b, tt.i))
			assert.Equal(t, tt.wantBelow, indicators.CrossBelow(tt.a, tt.b, tt.i))
		})
	}
}
