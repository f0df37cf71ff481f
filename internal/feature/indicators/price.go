package indicators

import (
	"math"

	"stock_signals/internal/feature/marketdata/domain/entity"
)

func highs(bars []entity.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

func lows(bars []entity.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// HL2 is (high+low)/2 per bar.
func HL2(bars []entity.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = (b.High + b.Low) / 2
	}
	return out
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close and is unavailable.
func TrueRange(bars []entity.Bar) []float64 {
	out := nans(len(bars))
	for i := 1; i < len(bars); i++ {
		b := bars[i]
		pc := bars[i-1].Close
		tr := b.High - b.Low
		if v := math.Abs(b.High - pc); v > tr {
			tr = v
		}
		if v := math.Abs(b.Low - pc); v > tr {
			tr = v
		}
		out[i] = tr
	}
	return out
}

// ATR is Wilder's average true range. The seed at index n is the mean of the
// first n true ranges.
func ATR(bars []entity.Bar, n int) []float64 {
	out := nans(len(bars))
	if n < 1 || len(bars) <= n {
		return out
	}
	tr := TrueRange(bars)
	sum := 0.0
	for i := 1; i <= n; i++ {
		sum += tr[i]
	}
	prev := sum / float64(n)
	out[n] = prev
	for i := n + 1; i < len(bars); i++ {
		prev = (prev*float64(n-1) + tr[i]) / float64(n)
		out[i] = prev
	}
	return out
}
