// Package entity defines the domain models for the scoring feature.
package entity

import (
	"time"

	"stock_signals/internal/feature/indicators"
	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
)

// SqueezeLevel は時間足ごとのスクイーズ強度です。
type SqueezeLevel = indicators.SqueezeLevel

// Rank はスコアを段階評価したものです。
type Rank string

const (
	RankAPlusPlus   Rank = "A++"
	RankAPlus       Rank = "A+"
	RankA           Rank = "A"
	RankB           Rank = "B"
	RankC           Rank = "C"
	RankD           Rank = "D"
	RankF           Rank = "F"
	RankBMinusMinus Rank = "B--"
)

// Trend は方向を表します。変化が無い場合は空文字です。
type Trend string

const (
	TrendUp   Trend = "Uptrend"
	TrendDown Trend = "Downtrend"
	TrendNone Trend = ""
)

// Timeframes.
var (
	// All は long_score の集計対象です。
	All = []string{
		mdentity.Interval15m, mdentity.Interval30m, mdentity.Interval90m, mdentity.Interval1h,
		mdentity.Interval1d, mdentity.Interval5d, mdentity.Interval1wk,
	}
	// Intraday は short_score の集計対象です。
	Intraday = []string{mdentity.Interval15m, mdentity.Interval30m, mdentity.Interval90m, mdentity.Interval1h}
)

// TimeframeScore is the result of scoring one timeframe.
// Available is false when the timeframe had too few bars or could not be fetched; Score is 0 then.
type TimeframeScore struct {
	Score     int
	Squeeze   SqueezeLevel
	Available bool
}

// ScoreChange compares the long score with the previous snapshot of the same symbol.
type ScoreChange struct {
	Direction Trend
	Delta     int
}

// TickerScore is one multi-timeframe snapshot of an instrument.
type TickerScore struct {
	ID           uint
	Symbol       string
	Name         string
	Sector       string
	CategoryID   int
	Timeframes   map[string]TimeframeScore
	LongScore    int
	ShortScore   int
	LongRank     Rank
	ShortRank    Rank
	Trend        Trend
	ScoreChange  ScoreChange
	CurrentPrice float64
	AsOf         time.Time
	Day          time.Time
	IsDeleted    bool
}

// Timeframe returns the score of interval, or the zero value when it was not scored.
func (t *TickerScore) Timeframe(interval string) TimeframeScore {
	if t.Timeframes == nil {
		return TimeframeScore{}
	}
	return t.Timeframes[interval]
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
