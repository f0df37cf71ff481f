// Package entity defines the domain models for the signals feature.
package entity

import "time"

// Strategy names the rule family that produced an event.
type Strategy string

const (
	StrategyTrend    Strategy = "trend"
	StrategySqueeze  Strategy = "squeeze"
	StrategyBreakout Strategy = "breakout"
	StrategyPullback Strategy = "pullback"
	StrategyRSI      Strategy = "rsi"
	StrategyVWAP     Strategy = "vwap"
)

// AllStrategies lists every strategy in evaluation order.
var AllStrategies = []Strategy{
	StrategyTrend, StrategySqueeze, StrategyBreakout, StrategyPullback, StrategyRSI, StrategyVWAP,
}

// DefaultStrategies are evaluated when no strategy is configured.
// VWAP exits are opt-in: on a quiet session the bands sit within a few ticks
// of the VWAP and every swing crosses them.
var DefaultStrategies = []Strategy{
	StrategyTrend, StrategySqueeze, StrategyBreakout, StrategyPullback, StrategyRSI,
}

// ParseStrategy returns the strategy named s.
func ParseStrategy(s string) (Strategy, bool) {
	for _, st := range AllStrategies {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Kind is the discrete signal emitted on a bar.
type Kind string

const (
	TrendCrossUp       Kind = "trend_cross_up"
	TrendCrossDown     Kind = "trend_cross_down"
	SqueezeReleaseUp   Kind = "squeeze_release_up"
	SqueezeReleaseDown Kind = "squeeze_release_down"
	VolumeBreakoutUp   Kind = "volume_breakout_up"
	VolumeBreakoutDown Kind = "volume_breakout_down"
	// RSIExitUp: oversold exhaustion released upward.
	RSIExitUp Kind = "rsi_exit_up"
	// RSIExitDown: overbought exhaustion released downward.
	RSIExitDown Kind = "rsi_exit_down"
	// PullbackUp: a downtrend bar whose high pokes through EMA12 on volume.
	PullbackUp   Kind = "pullback_up"
	PullbackDown Kind = "pullback_down"
	// VWAPExitUp: a close below the lower VWAP band released upward.
	VWAPExitUp   Kind = "vwap_exit_up"
	VWAPExitDown Kind = "vwap_exit_down"
)

// Strategy returns the strategy family of k.
func (k Kind) Strategy() Strategy {
	switch k {
	case TrendCrossUp, TrendCrossDown:
		return StrategyTrend
	case SqueezeReleaseUp, SqueezeReleaseDown:
		return StrategySqueeze
	case VolumeBreakoutUp, VolumeBreakoutDown:
		return StrategyBreakout
	case PullbackUp, PullbackDown:
		return StrategyPullback
	case RSIExitUp, RSIExitDown:
		return StrategyRSI
	case VWAPExitUp, VWAPExitDown:
		return StrategyVWAP
	}
	return ""
}

// Up reports whether k points upward.
func (k Kind) Up() bool {
	switch k {
	case TrendCrossUp, SqueezeReleaseUp, VolumeBreakoutUp, PullbackUp, RSIExitUp, VWAPExitUp:
		return true
	}
	return false
}

// Event is a signal fired on a bar.
type Event struct {
	Time     time.Time `json:"time"`
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval"`
	Kind     Kind      `json:"kind"`
	Strategy Strategy  `json:"strategy"`
	Price    float64   `json:"price"`
}
