package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/signals/domain/entity"
	tradeentity "stock_signals/internal/feature/trades/domain/entity"
)

// Goの慣例に従い、インターフェースは利用者側で定義します

// BarsFetcher returns the recent bar series for a symbol and interval.
type BarsFetcher interface {
	Recent(ctx context.Context, symbol, interval string) ([]mdentity.Bar, error)
}

// TradeManager is the trade lifecycle the scanner drives.
type TradeManager interface {
	OnSignal(ctx context.Context, sig tradeentity.Signal) ([]tradeentity.Position, error)
	OnPrice(ctx context.Context, key tradeentity.Key, price float64, at time.Time) (*tradeentity.Position, error)
}

// SymbolLister lists the active universe.
type SymbolLister interface {
	ListActiveCodes(ctx context.Context) ([]string, error)
}

// Broadcaster publishes live events to subscribers.
type Broadcaster interface {
	Publish(topic string, payload any)
}

// Recorder receives scan metrics.
type Recorder interface {
	SignalEmitted(strategy, kind string)
	ScanFinished(scanned, failed int, elapsed time.Duration)
}

// Broadcast topics.
const (
	TopicSignal = "signal"
	TopicTrade  = "trade"
)

// ScanConfig controls the scheduled scan.
type ScanConfig struct {
	Intervals   []string
	Quantity    float64
	Concurrency int
}

// ScanSummary is the result of ScanAll.
type ScanSummary struct {
	Scanned int `json:"scanned"`
	Failed  int `json:"failed"`
	Events  int `json:"events"`
}

// ScanUsecase evaluates signals on fresh bars and feeds the trade lifecycle.
type ScanUsecase struct {
	bars        BarsFetcher
	trades      TradeManager
	symbols     SymbolLister
	broadcaster Broadcaster
	recorder    Recorder
	synth       *Synthesizer
	cfg         ScanConfig
}

// NewScanUsecase は新しい ScanUsecase を生成します。
// broadcaster と recorder は nil でも構いません。
func NewScanUsecase(
	bars BarsFetcher,
	trades TradeManager,
	symbols SymbolLister,
	synth *Synthesizer,
	broadcaster Broadcaster,
	recorder Recorder,
	cfg ScanConfig,
) *ScanUsecase {
	if cfg.Quantity <= 0 {
		cfg.Quantity = 1
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if len(cfg.Intervals) == 0 {
		cfg.Intervals = []string{mdentity.Interval15m}
	}
	return &ScanUsecase{
		bars:        bars,
		trades:      trades,
		symbols:     symbols,
		broadcaster: broadcaster,
		recorder:    recorder,
		synth:       synth,
		cfg:         cfg,
	}
}

// Evaluate fetches bars and returns every event without touching trades.
func (u *ScanUsecase) Evaluate(ctx context.Context, symbol, interval string) ([]entity.Event, error) {
	symbol, interval, bars, err := u.fetch(ctx, symbol, interval)
	if err != nil {
		return nil, err
	}
	return u.synth.Evaluate(symbol, interval, bars), nil
}

// fetch normalizes the request and loads the recent bars.
func (u *ScanUsecase) fetch(ctx context.Context, symbol, interval string) (string, string, []mdentity.Bar, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", "", nil, ErrEmptySymbol
	}
	if interval == "" {
		interval = mdentity.Interval15m
	}
	bars, err := u.bars.Recent(ctx, symbol, interval)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to fetch bars: %w", err)
	}
	return symbol, interval, bars, nil
}

// Scan runs the risk check on the latest close, evaluates signals and
// dispatches the events of the last bar to the trade lifecycle.
// It returns the dispatched events.
func (u *ScanUsecase) Scan(ctx context.Context, symbol, interval string) ([]entity.Event, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	bars, err := u.bars.Recent(ctx, symbol, interval)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bars: %w", err)
	}
	last, ok := mdentity.Last(bars)
	if !ok {
		return nil, nil
	}

	for _, dir := range []tradeentity.Direction{tradeentity.Long, tradeentity.Short} {
		key := tradeentity.Key{Symbol: symbol, Interval: interval, Direction: dir}
		closed, err := u.trades.OnPrice(ctx, key, last.Close, last.Time)
		if err != nil {
			return nil, fmt.Errorf("risk check %s: %w", dir, err)
		}
		if closed != nil {
			u.publish(TopicTrade, *closed)
		}
	}

	var fired []entity.Event
	for _, ev := range u.synth.Evaluate(symbol, interval, bars) {
		if !ev.Time.Equal(last.Time) {
			continue
		}
		fired = append(fired, ev)
		if u.recorder != nil {
			u.recorder.SignalEmitted(string(ev.Strategy), string(ev.Kind))
		}
		u.publish(TopicSignal, ev)

		changed, err := u.trades.OnSignal(ctx, tradeentity.Signal{
			Symbol:    symbol,
			Interval:  interval,
			Action:    ActionFor(ev.Kind),
			Price:     ev.Price,
			Time:      ev.Time,
			Indicator: string(ev.Strategy),
			Quantity:  u.cfg.Quantity,
		})
		if err != nil {
			return fired, fmt.Errorf("dispatch %s: %w", ev.Kind, err)
		}
		for _, p := range changed {
			u.publish(TopicTrade, p)
		}
	}
	return fired, nil
}

// ScanAll scans every active symbol for the configured intervals.
// A failing symbol is logged and counted; it never aborts the run.
func (u *ScanUsecase) ScanAll(ctx context.Context) (ScanSummary, error) {
	start := time.Now()
	codes, err := u.symbols.ListActiveCodes(ctx)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("failed to list symbols: %w", err)
	}

	var scanned, failed, dispatched atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.cfg.Concurrency)

	for _, code := range codes {
		for _, interval := range u.cfg.Intervals {
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						failed.Add(1)
						slog.Error("panic during scan", "symbol", code, "interval", interval, "panic", r)
					}
				}()
				if gctx.Err() != nil {
					return nil
				}
				events, err := u.Scan(gctx, code, interval)
				if err != nil {
					failed.Add(1)
					slog.Error("failed to scan", "symbol", code, "interval", interval, "error", err)
					return nil
				}
				scanned.Add(1)
				dispatched.Add(int64(len(events)))
				return nil
			})
		}
	}
	_ = g.Wait()

	sum := ScanSummary{Scanned: int(scanned.Load()), Failed: int(failed.Load()), Events: int(dispatched.Load())}
	if u.recorder != nil {
		u.recorder.ScanFinished(sum.Scanned, sum.Failed, time.Since(start))
	}
	slog.Info("scan finished", "scanned", sum.Scanned, "failed", sum.Failed, "events", sum.Events)
	return sum, ctx.Err()
}

func (u *ScanUsecase) publish(topic string, payload any) {
	if u.broadcaster == nil {
		return
	}
	u.broadcaster.Publish(topic, payload)
}
