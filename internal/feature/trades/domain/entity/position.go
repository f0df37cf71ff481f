// Package entity defines the domain models for the trades feature.
package entity

import "time"

// Direction is the side of a position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Opposite returns the other side.
func (d Direction) Opposite() Direction {
	if d == Long {
		return Short
	}
	return Long
}

// Status is the lifecycle state of a persisted position.
type Status string

const (
	StatusOngoing Status = "Ongoing"
	StatusClosed  Status = "Closed"
)

// Action is what a signal asks the lifecycle to do.
type Action string

const (
	// ActionSignalUp opens a long and closes an ongoing short.
	ActionSignalUp Action = "signal_up"
	// ActionSignalDown opens a short and closes an ongoing long.
	ActionSignalDown Action = "signal_down"
	// ActionWarningSignalUp only closes an ongoing short.
	ActionWarningSignalUp Action = "warning_signal_up"
	// ActionWarningSignalDown only closes an ongoing long.
	ActionWarningSignalDown Action = "warning_signal_down"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionSignalUp, ActionSignalDown, ActionWarningSignalUp, ActionWarningSignalDown:
		return true
	}
	return false
}

// Close remarks.
const (
	RemarkTargetAchieved    = "Target achieved"
	RemarkStoplossTriggered = "Stoploss triggered"
	RemarkSignalDown        = "Signal Down detected"
	RemarkSignalUp          = "Signal Up detected"
	RemarkWarningSignalDown = "Warning Signal Down detected"
	RemarkWarningSignalUp   = "Warning Signal Up detected"
)

// Key identifies the slot in which at most one position may be ongoing.
// RunID is empty for live trading and names one backtest replay otherwise.
type Key struct {
	Symbol      string
	Interval    string
	Direction   Direction
	BackTesting bool
	RunID       string
}

// Signal is the input of the lifecycle manager.
type Signal struct {
	Symbol      string
	Interval    string
	Action      Action
	Price       float64
	Time        time.Time
	Indicator   string // strategy that produced the signal
	BackTesting bool
	RunID       string
	Quantity    float64
}

// Position is one paper trade.
type Position struct {
	ID          uint
	Symbol      string
	Interval    string
	Direction   Direction
	BackTesting bool
	RunID       string
	Indicator   string

	EntryPrice float64
	EntryTime  time.Time
	Stoploss   float64
	Target     float64
	Quantity   float64
	Capital    float64

	Status    Status
	ExitPrice *float64
	ExitTime  *time.Time
	PnL       float64
	ROI       float64
	ProfitPct float64
	Remarks   string
}

// Key returns the lifecycle key of the position.
func (p Position) Key() Key {
	return Key{Symbol: p.Symbol, Interval: p.Interval, Direction: p.Direction, BackTesting: p.BackTesting, RunID: p.RunID}
}

// IsOngoing reports whether the position is still open.
func (p Position) IsOngoing() bool { return p.Status == StatusOngoing }
