// Package dto defines the HTTP response shapes of the signals feature.
package dto

// EventResponse はシグナルイベントのレスポンスDTOです。
type EventResponse struct {
	Time     string  `json:"time"` // RFC3339 (UTC)
	Kind     string  `json:"kind"`
	Strategy string  `json:"strategy"`
	Price    float64 `json:"price"`
}

// SignalsResponse は GET /signals/:code のレスポンスDTOです。
type SignalsResponse struct {
	Symbol   string          `json:"symbol"`
	Interval string          `json:"interval"`
	Events   []EventResponse `json:"events"`
}
