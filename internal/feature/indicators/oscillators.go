package indicators

import (
	"github.com/markcheno/go-talib"

	"stock_signals/internal/feature/marketdata/domain/entity"
)

// RSI is Wilder's relative strength index. The first average gain/loss is the
// mean over the first n changes; later values are smoothed with
// (prev*(n-1)+x)/n. The first n positions are unavailable.
func RSI(closes []float64, n int) []float64 {
	out := nans(len(closes))
	if n < 1 || len(closes) <= n {
		return out
	}
	gain, loss := 0.0, 0.0
	for i := 1; i <= n; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(n)
	avgLoss := loss / float64(n)
	out[n] = rsiValue(avgGain, avgLoss)

	for i := n + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(n-1) + g) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + l) / float64(n)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDResult holds the three MACD columns.
type MACDResult struct {
	Line   []float64
	Signal []float64
	Hist   []float64
}

// MACD computes EMA(fast)-EMA(slow) as the line, EMA(line, signal) as the
// signal line and line-signal as the histogram. The line is unavailable before
// slow-1 and the signal/histogram before slow+signal-2.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	n := len(closes)
	res := MACDResult{Line: nans(n), Signal: nans(n), Hist: nans(n)}
	if fast < 1 || slow < 1 || signal < 1 {
		return res
	}
	f := EMA(closes, fast)
	s := EMA(closes, slow)
	for i := slow - 1; i < n; i++ {
		res.Line[i] = f[i] - s[i]
	}
	sig := EMA(res.Line, signal)
	for i := slow + signal - 2; i < n; i++ {
		if i < 0 {
			continue
		}
		res.Signal[i] = sig[i]
		res.Hist[i] = res.Line[i] - sig[i]
	}
	return res
}

// LinReg is the end-point of a rolling least-squares fit over n values.
// Leading unavailable values are skipped before fitting.
func LinReg(src []float64, n int) []float64 {
	out := nans(len(src))
	if n < 2 {
		return out
	}
	first := -1
	for i, v := range src {
		if Available(v) {
			first = i
			break
		}
	}
	if first < 0 || len(src)-first < n {
		return out
	}
	fit := talib.LinearReg(src[first:], n)
	for j := n - 1; j < len(fit); j++ {
		out[first+j] = fit[j]
	}
	return out
}

// SqueezeMomentum is the TTM squeeze momentum:
// linreg(close - avg(avg(highest high, lowest low), sma(close)), n).
func SqueezeMomentum(bars []entity.Bar, n int) []float64 {
	closes := entity.Closes(bars)
	hh := RollingMax(highs(bars), n)
	ll := RollingMin(lows(bars), n)
	basis := SMA(closes, n)
	delta := nans(len(bars))
	for i := range bars {
		if AllAvailable(hh[i], ll[i], basis[i]) {
			delta[i] = closes[i] - ((hh[i]+ll[i])/2+basis[i])/2
		}
	}
	return LinReg(delta, n)
}

// AwesomeOscillator is SMA(hl2, 5) - SMA(hl2, 34).
func AwesomeOscillator(bars []entity.Bar) []float64 {
	mid := HL2(bars)
	return Sub(SMA(mid, 5), SMA(mid, 34))
}
