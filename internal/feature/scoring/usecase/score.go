package usecase

import (
	"stock_signals/internal/feature/indicators"
	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/scoring/domain/entity"
)

const (
	// MinBars はスコア計算に必要な最小バー数です。
	MinBars = 50

	macdFast   = 24
	macdSlow   = 52
	macdSignal = 9

	trailPeriod = 9
	trailFactor = 2.4

	squeezeLength = 20
	squeezeStdDev = 2.0
)

// ScoreBars grades one timeframe on fifteen bullish and fifteen bearish
// conditions read at the last bar. The result is bulls minus bears, in [-15, 15].
// ok is false when fewer than MinBars bars are given.
func ScoreBars(bars []mdentity.Bar) (score int, squeeze entity.SqueezeLevel, ok bool) {
	n := len(bars)
	if n < MinBars {
		return 0, indicators.SqueezeUnavailable, false
	}
	closes := mdentity.Closes(bars)
	last := n - 1

	md := indicators.MACD(closes, macdFast, macdSlow, macdSignal).Hist
	sma50 := indicators.SMA(closes, 50)
	sma200 := indicators.SMA(closes, min(200, n))
	ema5 := indicators.EMA(closes, 5)
	ema8 := indicators.EMA(closes, 8)
	ema21 := indicators.EMA(closes, 21)
	ema34 := indicators.EMA(closes, 34)

	c := closes[last]
	atr := indicators.SMA(indicators.TrueRange(bars), trailPeriod)
	trail := c - trailFactor*atr[last]

	e5, e8, e21, e34 := ema5[last], ema8[last], ema21[last], ema34[last]
	s50, s200 := sma50[last], sma200[last]

	bulls := count(
		gt(md[last], 0),
		rising(sma50, last),
		rising(ema21, last),
		rising(sma200, last),
		gt(e5, e8) && gt(e8, e21) && gt(e21, e34),
		gt(c, e21),
		gt(c, s50),
		gt(c, s200),
		gt(e8, e21),
		gt(e8, s50),
		gt(e8, s200),
		gt(e21, s50),
		gt(e21, s200),
		gt(s50, s200),
		gt(c, trail),
	)
	bears := count(
		lt(md[last], 0),
		falling(sma50, last),
		falling(ema21, last),
		falling(sma200, last),
		lt(e5, e8) && lt(e8, e21) && lt(e21, e34),
		lt(c, e21),
		lt(c, s50),
		lt(c, s200),
		lt(e8, e21),
		lt(e8, s50),
		lt(e8, s200),
		lt(e21, s50),
		lt(e21, s200),
		lt(s50, s200),
		lt(c, trail),
	)

	bb := indicators.Bollinger(closes, squeezeLength, squeezeStdDev, 0)
	levels := indicators.ClassifySqueeze(bb, indicators.KeltnerChannels(bars, squeezeLength))
	return bulls - bears, levels[last], true
}

// 比較対象のどちらかが利用不可の場合、条件は成立しません。
func gt(a, b float64) bool { return indicators.AllAvailable(a, b) && a > b }

func lt(a, b float64) bool { return indicators.AllAvailable(a, b) && a < b }

func rising(s []float64, i int) bool { return i > 0 && gt(s[i], s[i-1]) }

func falling(s []float64, i int) bool { return i > 0 && lt(s[i], s[i-1]) }

func count(conds ...bool) int {
	n := 0
	for _, c := range conds {
		if c {
			n++
		}
	}
	return n
}
