// Package entity defines the domain models for the marketdata feature.
package entity

import "time"

// Bar is one OHLCV observation for a fixed interval.
// Sequences of bars are ordered by Time, strictly increasing, without duplicates.
type Bar struct {
	Symbol   string    // Instrument code (e.g., "AAPL", "^GSPC")
	Interval string    // Bar interval (e.g., "15m", "1h", "1d", "1wk")
	Time     time.Time // Bar close time in UTC (open time plus the interval)
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Supported intervals.
const (
	Interval15m = "15m"
	Interval30m = "30m"
	Interval90m = "90m"
	Interval1h  = "1h"
	Interval1d  = "1d"
	Interval5d  = "5d"
	Interval1wk = "1wk"
)

// Duration returns the span of one bar, and false for unknown intervals.
// Daily and longer bars use calendar days.
func Duration(interval string) (time.Duration, bool) {
	switch interval {
	case Interval15m:
		return 15 * time.Minute, true
	case Interval30m:
		return 30 * time.Minute, true
	case Interval90m:
		return 90 * time.Minute, true
	case Interval1h:
		return time.Hour, true
	case Interval1d:
		return 24 * time.Hour, true
	case Interval5d:
		return 5 * 24 * time.Hour, true
	case Interval1wk:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// CloseTime converts a provider's bar-open timestamp into the bar close time.
func CloseTime(open time.Time, interval string) time.Time {
	d, _ := Duration(interval)
	return open.Add(d).UTC()
}

// ClosedOnly drops bars whose close time is after now, so the in-progress
// bar never reaches scoring or signal detection. bars must be sorted.
func ClosedOnly(bars []Bar, now time.Time) []Bar {
	n := len(bars)
	for n > 0 && bars[n-1].Time.After(now) {
		n--
	}
	return bars[:n]
}

// IsIntraday reports whether the interval is shorter than a trading day.
func IsIntraday(interval string) bool {
	switch interval {
	case "1m", "5m", Interval15m, Interval30m, "60m", Interval90m, Interval1h:
		return true
	default:
		return false
	}
}

// Closes returns the close column of the given bars.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume column of the given bars.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

// Last returns the last bar and false when bars is empty.
func Last(bars []Bar) (Bar, bool) {
	if len(bars) == 0 {
		return Bar{}, false
	}
	return bars[len(bars)-1], true
}
