package dto

// ChartRow は1本のバーとその指標値です。未計算の指標は null になります。
type ChartRow struct {
	Time       string   `json:"time"` // RFC3339 (UTC)
	Open       float64  `json:"open"`
	High       float64  `json:"high"`
	Low        float64  `json:"low"`
	Close      float64  `json:"close"`
	Volume     float64  `json:"volume"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	MACDHist   *float64 `json:"macd_hist"`
	Momentum   *float64 `json:"momentum"`
	AO         *float64 `json:"ao"`
	Squeeze    string   `json:"squeeze,omitempty"` // none|low|mid|high
	WaveAFast  *float64 `json:"wave_a_fast"`
	WaveASlow  *float64 `json:"wave_a_slow"`
	VWAP       *float64 `json:"vwap"`
	VWAPUpper  *float64 `json:"vwap_upper"`
	VWAPLower  *float64 `json:"vwap_lower"`
	ATR        *float64 `json:"atr1"`
}

// ChartResponse は GET /chart/:code のレスポンスDTOです。
type ChartResponse struct {
	Symbol   string          `json:"symbol"`
	Interval string          `json:"interval"`
	Rows     []ChartRow      `json:"rows"`
	Events   []EventResponse `json:"events"`
}
