// Package dto defines the HTTP response shapes of the marketdata feature.
package dto

// BarResponse はバーデータのレスポンスDTOです。
type BarResponse struct {
	Time   string  `json:"time"` // RFC3339 (UTC)
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}
