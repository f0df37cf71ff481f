package usecase

import (
	"stock_signals/internal/feature/indicators"
	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/signals/domain/entity"
)

// SynthesizerConfig controls which strategies run and their thresholds.
type SynthesizerConfig struct {
	// Strategies to evaluate. Empty means entity.DefaultStrategies.
	Strategies []entity.Strategy
	// StrictSqueezeCross requires a same-bar EMA5/EMA13 cross on squeeze release
	// instead of reading the relation on that bar.
	StrictSqueezeCross bool
	RSIUpper           float64
	RSILower           float64
}

// DefaultSynthesizerConfig returns the config used by the scanners.
func DefaultSynthesizerConfig() SynthesizerConfig {
	return SynthesizerConfig{
		Strategies: entity.DefaultStrategies,
		RSIUpper:   70,
		RSILower:   30,
	}
}

// Synthesizer turns a bar series and its indicator frame into signal events.
type Synthesizer struct {
	cfg     SynthesizerConfig
	enabled map[entity.Strategy]bool
	params  indicators.Params
}

// NewSynthesizer は新しい Synthesizer を生成します。
func NewSynthesizer(cfg SynthesizerConfig) *Synthesizer {
	if cfg.RSIUpper == 0 {
		cfg.RSIUpper = 70
	}
	if cfg.RSILower == 0 {
		cfg.RSILower = 30
	}
	strategies := cfg.Strategies
	if len(strategies) == 0 {
		strategies = entity.DefaultStrategies
	}
	enabled := make(map[entity.Strategy]bool, len(strategies))
	for _, s := range strategies {
		enabled[s] = true
	}
	return &Synthesizer{cfg: cfg, enabled: enabled, params: indicators.DefaultParams()}
}

// Params returns the frame parameters Evaluate builds with.
func (s *Synthesizer) Params() indicators.Params {
	return s.params
}

// series holds the frame columns every strategy reads.
type series struct {
	bars      []mdentity.Bar
	closes    []float64
	vols      []float64
	ema5      []float64 // close
	ema12     []float64 // close
	ema5h     []float64 // hl2
	ema13h    []float64 // hl2
	volSMA50  []float64
	volSMA10  []float64
	noSqz     []indicators.Tristate
	rsi       []float64
	hist      []float64
	prevHist  []float64
	vwapUpper []float64
	vwapLower []float64
}

func newSeries(bars []mdentity.Bar, f indicators.Frame) series {
	hist := f.Col(indicators.ColMACDHist)
	return series{
		bars:      bars,
		closes:    mdentity.Closes(bars),
		vols:      mdentity.Volumes(bars),
		ema5:      f.Col(indicators.ColEMAFast),
		ema12:     f.Col(indicators.ColEMASlow),
		ema5h:     f.Col(indicators.ColEMAFastHL2),
		ema13h:    f.Col(indicators.ColEMASlowHL2),
		volSMA50:  f.Col(indicators.ColVolumeSMA),
		volSMA10:  f.Col(indicators.ColVolumeSMAShort),
		noSqz:     f.NoSqueeze,
		rsi:       f.Col(indicators.ColRSI),
		hist:      hist,
		prevHist:  shift(hist),
		vwapUpper: f.Col(indicators.ColVWAPUpper),
		vwapLower: f.Col(indicators.ColVWAPLower),
	}
}

// latch is the per-side exhaustion state. It arms when a level crosses beyond
// its threshold and stays armed, whatever the level does next, until a
// release candle. A released latch re-arms only on a fresh crossing.
type latch struct {
	armed bool
}

// step advances l by one bar and reports a release.
// was and now are the threshold relation on the previous and current bar.
func (l *latch) step(was, now indicators.Tristate, release bool) bool {
	if was.False() && now.True() {
		l.armed = true
	}
	if l.armed && release {
		l.armed = false
		return true
	}
	return false
}

// beyond compares v against the threshold t; Unknown while either is unavailable.
func beyond(v, t float64, above bool) indicators.Tristate {
	if !indicators.AllAvailable(v, t) {
		return indicators.Unknown
	}
	if above {
		return indicators.TristateOf(v > t)
	}
	return indicators.TristateOf(v < t)
}

// Evaluate builds the indicator frame for bars and evaluates it.
func (s *Synthesizer) Evaluate(symbol, interval string, bars []mdentity.Bar) []entity.Event {
	if len(bars) == 0 {
		return nil
	}
	return s.EvaluateFrame(symbol, interval, bars, indicators.BuildFrame(bars, s.params))
}

// EvaluateFrame folds over bars in order and returns every event fired.
// f must be built from bars; a frame of another length is rebuilt.
// The result is deterministic for a given input.
func (s *Synthesizer) EvaluateFrame(symbol, interval string, bars []mdentity.Bar, f indicators.Frame) []entity.Event {
	if len(bars) == 0 {
		return nil
	}
	if f.Len != len(bars) || len(f.NoSqueeze) != len(bars) {
		f = indicators.BuildFrame(bars, s.params)
	}
	sr := newSeries(bars, f)

	var (
		events     []entity.Event
		overbought latch
		oversold   latch
		aboveVWAP  latch
		belowVWAP  latch
	)
	rsiOver := func(j int) indicators.Tristate {
		return beyond(indicators.At(sr.rsi, j), s.cfg.RSIUpper, true)
	}
	rsiUnder := func(j int) indicators.Tristate {
		return beyond(indicators.At(sr.rsi, j), s.cfg.RSILower, false)
	}
	vwapOver := func(j int) indicators.Tristate {
		return beyond(indicators.At(sr.closes, j), indicators.At(sr.vwapUpper, j), true)
	}
	vwapUnder := func(j int) indicators.Tristate {
		return beyond(indicators.At(sr.closes, j), indicators.At(sr.vwapLower, j), false)
	}
	emit := func(i int, k entity.Kind) {
		events = append(events, entity.Event{
			Time:     bars[i].Time,
			Symbol:   symbol,
			Interval: interval,
			Kind:     k,
			Strategy: k.Strategy(),
			Price:    bars[i].Close,
		})
	}

	for i := range bars {
		if s.enabled[entity.StrategyTrend] {
			if k, ok := trendAt(sr, i); ok {
				emit(i, k)
			}
		}
		if s.enabled[entity.StrategySqueeze] {
			if k, ok := s.squeezeAt(sr, i); ok {
				emit(i, k)
			}
		}
		if s.enabled[entity.StrategyBreakout] {
			if k, ok := breakoutAt(sr, i); ok {
				emit(i, k)
			}
		}
		if s.enabled[entity.StrategyPullback] {
			if k, ok := pullbackAt(sr, i); ok {
				emit(i, k)
			}
		}

		b := sr.bars[i]
		red := b.Close < b.Open && indicators.Below(sr.hist, sr.prevHist, i)
		green := b.Close > b.Open && indicators.Above(sr.hist, sr.prevHist, i)

		// 反転の確認: ラッチと逆向きのローソク足 + MACD ヒストグラムの向き
		if s.enabled[entity.StrategyRSI] {
			if overbought.step(rsiOver(i-1), rsiOver(i), red) {
				emit(i, entity.RSIExitDown)
			}
			if oversold.step(rsiUnder(i-1), rsiUnder(i), green) {
				emit(i, entity.RSIExitUp)
			}
		}
		if s.enabled[entity.StrategyVWAP] {
			if aboveVWAP.step(vwapOver(i-1), vwapOver(i), red) {
				emit(i, entity.VWAPExitDown)
			}
			if belowVWAP.step(vwapUnder(i-1), vwapUnder(i), green) {
				emit(i, entity.VWAPExitUp)
			}
		}
	}
	return events
}

// trendAt: EMA5/EMA12 cross on close confirmed by volume above its 50-bar mean.
func trendAt(sr series, i int) (entity.Kind, bool) {
	if !indicators.Above(sr.vols, sr.volSMA50, i) {
		return "", false
	}
	switch {
	case indicators.CrossAbove(sr.ema5, sr.ema12, i):
		return entity.TrendCrossUp, true
	case indicators.CrossBelow(sr.ema5, sr.ema12, i):
		return entity.TrendCrossDown, true
	}
	return "", false
}

// squeezeAt fires on the first bar after a squeeze where the bands are outside
// the 2.0 Keltner channel.
func (s *Synthesizer) squeezeAt(sr series, i int) (entity.Kind, bool) {
	if i < 1 || !sr.noSqz[i-1].False() || !sr.noSqz[i].True() {
		return "", false
	}
	if s.cfg.StrictSqueezeCross {
		switch {
		case indicators.CrossAbove(sr.ema5h, sr.ema13h, i):
			return entity.SqueezeReleaseUp, true
		case indicators.CrossBelow(sr.ema5h, sr.ema13h, i):
			return entity.SqueezeReleaseDown, true
		}
		return "", false
	}
	switch {
	case indicators.Above(sr.ema5h, sr.ema13h, i):
		return entity.SqueezeReleaseUp, true
	case indicators.Below(sr.ema5h, sr.ema13h, i):
		return entity.SqueezeReleaseDown, true
	}
	return "", false
}

// breakoutAt: EMA5/EMA13 cross on hl2 with volume above its 10-bar mean,
// only while not in a squeeze.
func breakoutAt(sr series, i int) (entity.Kind, bool) {
	if !sr.noSqz[i].True() || !indicators.Above(sr.vols, sr.volSMA10, i) {
		return "", false
	}
	switch {
	case indicators.CrossAbove(sr.ema5h, sr.ema13h, i):
		return entity.VolumeBreakoutUp, true
	case indicators.CrossBelow(sr.ema5h, sr.ema13h, i):
		return entity.VolumeBreakoutDown, true
	}
	return "", false
}

// pullbackAt: against the EMA5/EMA12 trend, the candle pokes through EMA12
// for the first time, on volume above its 50-bar mean.
// In a downtrend the high crosses EMA12 on a green candle; in an uptrend the
// low crosses it on a red candle.
func pullbackAt(sr series, i int) (entity.Kind, bool) {
	if i < 1 || !indicators.Above(sr.vols, sr.volSMA50, i) {
		return "", false
	}
	fast, slow, prevSlow := sr.ema5[i], sr.ema12[i], sr.ema12[i-1]
	if !indicators.AllAvailable(fast, slow, prevSlow) {
		return "", false
	}
	b, p := sr.bars[i], sr.bars[i-1]
	switch {
	case fast < slow && b.High > slow && p.High <= prevSlow && b.Close > b.Open:
		return entity.PullbackUp, true
	case fast > slow && b.Low < slow && p.Low >= prevSlow && b.Close < b.Open:
		return entity.PullbackDown, true
	}
	return "", false
}

// shift returns src delayed by one position.
func shift(src []float64) []float64 {
	out := make([]float64, len(src))
	if len(src) == 0 {
		return out
	}
	out[0] = indicators.Unavailable()
	copy(out[1:], src[:len(src)-1])
	return out
}
