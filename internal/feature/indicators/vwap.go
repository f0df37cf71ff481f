package indicators

import (
	"time"

	"stock_signals/internal/feature/marketdata/domain/entity"
)

// VWAP is the session volume-weighted average of the typical price
// (high+low+close)/3. A session is one UTC calendar day; the running sums
// restart on the first bar of each day. Bars before any volume in the
// session are unavailable.
func VWAP(bars []entity.Bar) []float64 {
	out := nans(len(bars))
	var (
		pv, vol float64
		day     time.Time
	)
	for i, b := range bars {
		y, m, d := b.Time.UTC().Date()
		if start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC); i == 0 || !start.Equal(day) {
			pv, vol, day = 0, 0, start
		}
		tp := (b.High + b.Low + b.Close) / 3
		pv += tp * b.Volume
		vol += b.Volume
		if vol > 0 {
			out[i] = pv / vol
		}
	}
	return out
}

// VWAPBands is VWAP ± k·std(VWAP, n) with the sample deviation.
func VWAPBands(vwap []float64, n int, k float64) Bands {
	sd := RollingStd(vwap, n, 1)
	b := Bands{Basis: vwap, Upper: nans(len(vwap)), Lower: nans(len(vwap))}
	for i := range vwap {
		if AllAvailable(vwap[i], sd[i]) {
			b.Upper[i] = vwap[i] + k*sd[i]
			b.Lower[i] = vwap[i] - k*sd[i]
		}
	}
	return b
}
