package indicators

import "stock_signals/internal/feature/marketdata/domain/entity"

// Keltner multipliers used for squeeze classification.
const (
	KCHighMult = 1.0
	KCMidMult  = 1.5
	KCLowMult  = 2.0
)

// Bands is a basis line with an upper and lower envelope.
type Bands struct {
	Basis []float64
	Upper []float64
	Lower []float64
}

// Bollinger is SMA(close, n) ± k·std(close, n, ddof).
func Bollinger(closes []float64, n int, k float64, ddof int) Bands {
	basis := SMA(closes, n)
	sd := RollingStd(closes, n, ddof)
	b := Bands{Basis: basis, Upper: nans(len(closes)), Lower: nans(len(closes))}
	for i := range closes {
		if AllAvailable(basis[i], sd[i]) {
			b.Upper[i] = basis[i] + k*sd[i]
			b.Lower[i] = basis[i] - k*sd[i]
		}
	}
	return b
}

// Keltner is SMA(close, n) ± mult·SMA(TR, n).
func Keltner(bars []entity.Bar, n int, mult float64) Bands {
	closes := entity.Closes(bars)
	basis := SMA(closes, n)
	rng := SMA(TrueRange(bars), n)
	b := Bands{Basis: basis, Upper: nans(len(bars)), Lower: nans(len(bars))}
	for i := range bars {
		if AllAvailable(basis[i], rng[i]) {
			b.Upper[i] = basis[i] + mult*rng[i]
			b.Lower[i] = basis[i] - mult*rng[i]
		}
	}
	return b
}

// KeltnerSet holds the three Keltner channels used to grade a squeeze.
type KeltnerSet struct {
	High Bands // 1.0
	Mid  Bands // 1.5
	Low  Bands // 2.0
}

// KeltnerChannels computes the 1.0/1.5/2.0 channels with a shared length.
func KeltnerChannels(bars []entity.Bar, n int) KeltnerSet {
	return KeltnerSet{
		High: Keltner(bars, n, KCHighMult),
		Mid:  Keltner(bars, n, KCMidMult),
		Low:  Keltner(bars, n, KCLowMult),
	}
}
