package indicators

import "stock_signals/internal/feature/marketdata/domain/entity"

// Column names of a Frame.
const (
	ColEMAFast    = "ema_fast"
	ColEMASlow    = "ema_slow"
	ColSMA        = "sma"
	ColRSI        = "rsi"
	ColMACD       = "macd"
	ColMACDSignal = "macd_signal"
	ColMACDHist   = "macd_hist"
	ColTR         = "tr"
	ColATR        = "atr"
	ColBBBasis    = "bb_basis"
	ColBBUpper    = "bb_upper"
	ColBBLower    = "bb_lower"
	ColKCBasis    = "kc_basis"
	ColKCUpper1   = "kc_upper_1.0"
	ColKCLower1   = "kc_lower_1.0"
	ColKCUpper15  = "kc_upper_1.5"
	ColKCLower15  = "kc_lower_1.5"
	ColKCUpper2   = "kc_upper_2.0"
	ColKCLower2   = "kc_lower_2.0"
	ColVolumeSMA  = "volume_sma"
	ColMomentum   = "momentum"
	ColAO         = "ao"

	ColEMAFastHL2     = "ema_fast_hl2"
	ColEMASlowHL2     = "ema_slow_hl2"
	ColVolumeSMAShort = "volume_sma_short"
	ColVWAP           = "vwap"
	ColVWAPUpper      = "vwap_upper"
	ColVWAPLower      = "vwap_lower"
	ColWaveAFast      = "wave_a_fast" // TTM wave A: MACD(8,34,34) histogram
	ColWaveASlow      = "wave_a_slow" // MACD(8,55,55) histogram
	ColATRBand        = "atr1"        // ATR × ATRBandMult
)

// Params are the lookback lengths and multipliers used by BuildFrame.
type Params struct {
	EMAFast        int
	EMASlow        int
	SMALength      int
	RSILength      int
	MACDFast       int
	MACDSlow       int
	MACDSignal     int
	ATRLength      int
	BBLength       int
	BBMult         float64
	BBDdof         int
	KCLength       int
	VolumeLength   int
	MomentumLength int

	HL2EMAFast        int
	HL2EMASlow        int
	VolumeShortLength int
	VWAPLength        int
	VWAPMult          float64
	WaveFast          int
	WaveMid           int
	WaveSlow          int
	ATRBandMult       float64
}

// DefaultParams returns the parameters the signal synthesizer and the chart
// endpoint build frames with. Bollinger uses the sample deviation.
func DefaultParams() Params {
	return Params{
		EMAFast:        5,
		EMASlow:        12,
		SMALength:      50,
		RSILength:      14,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		ATRLength:      14,
		BBLength:       20,
		BBMult:         2.0,
		BBDdof:         1,
		KCLength:       20,
		VolumeLength:   50,
		MomentumLength: 20,

		HL2EMAFast:        5,
		HL2EMASlow:        13,
		VolumeShortLength: 10,
		VWAPLength:        20,
		VWAPMult:          2.0,
		WaveFast:          8,
		WaveMid:           34,
		WaveSlow:          55,
		ATRBandMult:       1.5,
	}
}

// Frame is a set of indicator columns aligned with a bar sequence.
type Frame struct {
	Len       int
	Columns   map[string][]float64
	Squeeze   []SqueezeLevel
	NoSqueeze []Tristate
}

// Col returns the named column, or an all-NaN column when it is unknown.
func (f Frame) Col(name string) []float64 {
	if c, ok := f.Columns[name]; ok {
		return c
	}
	return nans(f.Len)
}

// At returns the value of column name at bar i.
func (f Frame) At(name string, i int) float64 {
	return At(f.Columns[name], i)
}

// BuildFrame computes every indicator column for bars.
func BuildFrame(bars []entity.Bar, p Params) Frame {
	closes := entity.Closes(bars)
	macd := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	bb := Bollinger(closes, p.BBLength, p.BBMult, p.BBDdof)
	kc := KeltnerChannels(bars, p.KCLength)
	hl2 := HL2(bars)
	vols := entity.Volumes(bars)
	vwap := VWAP(bars)
	vb := VWAPBands(vwap, p.VWAPLength, p.VWAPMult)
	atr := ATR(bars, p.ATRLength)

	f := Frame{
		Len: len(bars),
		Columns: map[string][]float64{
			ColEMAFast:    EMA(closes, p.EMAFast),
			ColEMASlow:    EMA(closes, p.EMASlow),
			ColSMA:        SMA(closes, p.SMALength),
			ColRSI:        RSI(closes, p.RSILength),
			ColMACD:       macd.Line,
			ColMACDSignal: macd.Signal,
			ColMACDHist:   macd.Hist,
			ColTR:         TrueRange(bars),
			ColATR:        atr,
			ColBBBasis:    bb.Basis,
			ColBBUpper:    bb.Upper,
			ColBBLower:    bb.Lower,
			ColKCBasis:    kc.Mid.Basis,
			ColKCUpper1:   kc.High.Upper,
			ColKCLower1:   kc.High.Lower,
			ColKCUpper15:  kc.Mid.Upper,
			ColKCLower15:  kc.Mid.Lower,
			ColKCUpper2:   kc.Low.Upper,
			ColKCLower2:   kc.Low.Lower,
			ColVolumeSMA:  SMA(vols, p.VolumeLength),
			ColMomentum:   SqueezeMomentum(bars, p.MomentumLength),
			ColAO:         AwesomeOscillator(bars),

			ColEMAFastHL2:     EMA(hl2, p.HL2EMAFast),
			ColEMASlowHL2:     EMA(hl2, p.HL2EMASlow),
			ColVolumeSMAShort: SMA(vols, p.VolumeShortLength),
			ColVWAP:           vwap,
			ColVWAPUpper:      vb.Upper,
			ColVWAPLower:      vb.Lower,
			ColWaveAFast:      MACD(closes, p.WaveFast, p.WaveMid, p.WaveMid).Hist,
			ColWaveASlow:      MACD(closes, p.WaveFast, p.WaveSlow, p.WaveSlow).Hist,
			ColATRBand:        Scale(atr, p.ATRBandMult),
		},
		Squeeze:   ClassifySqueeze(bb, kc),
		NoSqueeze: NoSqueeze(bb, kc.Low),
	}
	return f
}
