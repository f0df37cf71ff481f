package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/trades/domain/entity"
	"stock_signals/internal/shared/keylock"
)

// BarsFetcher returns the full lookback series for a symbol and interval.
type BarsFetcher interface {
	Recent(ctx context.Context, symbol, interval string) ([]mdentity.Bar, error)
}

// SignalFeed turns a bar series into lifecycle signals in bar order.
type SignalFeed interface {
	Signals(symbol, interval string, bars []mdentity.Bar, strategies []string, quantity float64) ([]entity.Signal, error)
}

// BacktestRequest is the input of Backtester.Run.
type BacktestRequest struct {
	Symbol     string
	Interval   string
	Quantity   float64
	Strategies []string
}

// BacktestSummary is the outcome of a replay.
type BacktestSummary struct {
	RunID     string
	Symbol    string
	Interval  string
	Bars      int
	Trades    int
	Open      int
	Wins      int
	Losses    int
	TotalPnL  float64
	WinRate   float64
	Positions []entity.Position
}

// Backtester replays a bar series through the lifecycle manager.
// Runs for the same symbol and interval are serialized.
type Backtester struct {
	bars     BarsFetcher
	feed     SignalFeed
	manager  *Manager
	locks    *keylock.Striped
	newRunID func() string
}

// NewBacktester は新しい Backtester を生成します。
func NewBacktester(bars BarsFetcher, feed SignalFeed, manager *Manager) *Backtester {
	return &Backtester{
		bars:     bars,
		feed:     feed,
		manager:  manager,
		locks:    keylock.New(keylock.DefaultStripes),
		newRunID: uuid.NewString,
	}
}

// Run replays every bar in order: the risk check on the bar close first,
// then the signals of that bar. Each run writes under its own run id, so
// positions from earlier runs stay untouched.
func (b *Backtester) Run(ctx context.Context, req BacktestRequest) (BacktestSummary, error) {
	req.Symbol = strings.TrimSpace(req.Symbol)
	if req.Symbol == "" {
		return BacktestSummary{}, ErrEmptySymbol
	}
	if req.Quantity <= 0 {
		return BacktestSummary{}, ErrInvalidQuantity
	}
	if req.Interval == "" {
		req.Interval = mdentity.Interval1d
	}

	unlock := b.locks.Lock(req.Symbol + "|" + req.Interval)
	defer unlock()

	bars, err := b.bars.Recent(ctx, req.Symbol, req.Interval)
	if err != nil {
		return BacktestSummary{}, fmt.Errorf("failed to fetch bars: %w", err)
	}
	signals, err := b.feed.Signals(req.Symbol, req.Interval, bars, req.Strategies, req.Quantity)
	if err != nil {
		return BacktestSummary{}, err
	}

	runID := b.newRunID()
	next := 0
	for _, bar := range bars {
		if err := ctx.Err(); err != nil {
			return BacktestSummary{}, err
		}
		for _, dir := range []entity.Direction{entity.Long, entity.Short} {
			key := entity.Key{Symbol: req.Symbol, Interval: req.Interval, Direction: dir, BackTesting: true, RunID: runID}
			if _, err := b.manager.OnPrice(ctx, key, bar.Close, bar.Time); err != nil {
				return BacktestSummary{}, err
			}
		}
		for next < len(signals) && !signals[next].Time.After(bar.Time) {
			sig := signals[next]
			next++
			if !sig.Time.Equal(bar.Time) {
				continue
			}
			sig.BackTesting = true
			sig.RunID = runID
			if _, err := b.manager.OnSignal(ctx, sig); err != nil {
				return BacktestSummary{}, err
			}
		}
	}

	backTesting := true
	positions, err := b.manager.List(ctx, Filter{Symbol: req.Symbol, Interval: req.Interval, BackTesting: &backTesting, RunID: runID})
	if err != nil {
		return BacktestSummary{}, err
	}
	sum := summarize(positions)
	sum.RunID = runID
	sum.Symbol = req.Symbol
	sum.Interval = req.Interval
	sum.Bars = len(bars)
	slog.Info("backtest finished",
		"run_id", runID, "symbol", req.Symbol, "interval", req.Interval, "bars", sum.Bars,
		"trades", sum.Trades, "win_rate", sum.WinRate, "total_pnl", sum.TotalPnL)
	return sum, nil
}

func summarize(positions []entity.Position) BacktestSummary {
	sum := BacktestSummary{Positions: positions}
	total := decimal.Zero
	for _, p := range positions {
		if p.IsOngoing() {
			sum.Open++
			continue
		}
		sum.Trades++
		switch {
		case p.ROI > 0:
			sum.Wins++
		case p.ROI < 0:
			sum.Losses++
		}
		total = total.Add(decimal.NewFromFloat(p.ROI))
	}
	sum.TotalPnL = round2(total)
	if sum.Trades > 0 {
		sum.WinRate = round2(decimal.NewFromInt(int64(sum.Wins)).Div(decimal.NewFromInt(int64(sum.Trades))).Mul(hundred))
	}
	return sum
}
