// Package dto defines the HTTP request and response shapes of the scoring feature.
package dto

// TimeframeResponse は1時間足分のスコアです。
type TimeframeResponse struct {
	Score     int    `json:"score"`
	Squeeze   string `json:"squeeze"`
	Available bool   `json:"available"`
}

// ScoreChangeResponse は前回スナップショットからの変化です。
type ScoreChangeResponse struct {
	Direction string `json:"direction"`
	Delta     int    `json:"delta"`
}

// ScoreResponse はスコアスナップショットのレスポンスです。
type ScoreResponse struct {
	Symbol       string                       `json:"symbol"`
	Name         string                       `json:"name"`
	Sector       string                       `json:"sector"`
	CategoryID   int                          `json:"category_id"`
	Timeframes   map[string]TimeframeResponse `json:"timeframes"`
	LongScore    int                          `json:"long_score"`
	ShortScore   int                          `json:"short_score"`
	LongRank     string                       `json:"long_rank"`
	ShortRank    string                       `json:"short_rank"`
	Trend        string                       `json:"trend"`
	ScoreChange  ScoreChangeResponse          `json:"score_change"`
	CurrentPrice float64                      `json:"current_price"`
	AsOf         string                       `json:"as_of"`
}

// AddInstrumentRequest は POST /instruments のリクエストボディです。
type AddInstrumentRequest struct {
	Code       string `json:"code" binding:"required"`
	CategoryID int    `json:"category_id" binding:"required"`
}
