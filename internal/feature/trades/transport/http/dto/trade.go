// Package dto defines the HTTP request and response shapes of the trades feature.
package dto

// PositionResponse はトレードブックの1行です。
type PositionResponse struct {
	ID          uint     `json:"id"`
	Symbol      string   `json:"symbol"`
	Interval    string   `json:"interval"`
	Direction   string   `json:"direction"`
	BackTesting bool     `json:"back_testing"`
	RunID       string   `json:"run_id,omitempty"`
	Indicator   string   `json:"indicator"`
	EntryPrice  float64  `json:"entry_price"`
	EntryTime   string   `json:"entry_time"`
	Stoploss    float64  `json:"stoploss"`
	Target      float64  `json:"target"`
	Quantity    float64  `json:"quantity"`
	Capital     float64  `json:"capital"`
	Status      string   `json:"status"`
	ExitPrice   *float64 `json:"exit_price"`
	ExitTime    *string  `json:"exit_time"`
	PnL         float64  `json:"pnl"`
	ROI         float64  `json:"roi"`
	ProfitPct   float64  `json:"profit_pct"`
	Remarks     string   `json:"remarks"`
}

// BacktestRequest は POST /backtest のリクエストボディです。
type BacktestRequest struct {
	Symbol     string   `json:"symbol" binding:"required"`
	Interval   string   `json:"interval"`
	Quantity   float64  `json:"quantity" binding:"required,gt=0"`
	Strategies []string `json:"strategies"`
}

// BacktestResponse はバックテスト結果のサマリーです。
type BacktestResponse struct {
	RunID     string             `json:"run_id"`
	Symbol    string             `json:"symbol"`
	Interval  string             `json:"interval"`
	Bars      int                `json:"bars"`
	Trades    int                `json:"trades"`
	Open      int                `json:"open"`
	Wins      int                `json:"wins"`
	Losses    int                `json:"losses"`
	TotalPnL  float64            `json:"total_pnl"`
	WinRate   float64            `json:"win_rate"`
	Positions []PositionResponse `json:"positions"`
}
