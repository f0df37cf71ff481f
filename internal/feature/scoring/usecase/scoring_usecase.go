// Package usecase はマルチタイムフレームのスコアリングを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/scoring/domain/entity"
	symentity "stock_signals/internal/feature/symbollist/domain/entity"
	symusecase "stock_signals/internal/feature/symbollist/usecase"
)

// Goの慣例に従い、インターフェースは利用者側で定義します

// BarsFetcher returns the recent bar series for a symbol and interval.
type BarsFetcher interface {
	Recent(ctx context.Context, symbol, interval string) ([]mdentity.Bar, error)
}

// ScoreRepository persists score snapshots.
type ScoreRepository interface {
	// Upsert は (symbol, day) をキーにスナップショットを保存します。
	Upsert(ctx context.Context, s *entity.TickerScore) error
	// Previous は before より前の日の最新スナップショットを返します。無ければ nil, nil です。
	Previous(ctx context.Context, symbol string, before time.Time) (*entity.TickerScore, error)
	Latest(ctx context.Context, symbol string) ([]entity.TickerScore, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
	SoftDelete(ctx context.Context, symbol string) (int64, error)
}

// SymbolDirectory is the instrument universe.
type SymbolDirectory interface {
	Get(ctx context.Context, code string) (*symentity.Symbol, error)
	ListActiveSymbols(ctx context.Context) ([]symentity.Symbol, error)
	Add(ctx context.Context, s *symentity.Symbol) error
	Deactivate(ctx context.Context, code string) error
}

// Recorder receives scoring metrics.
type Recorder interface {
	ScoreRunFinished(scored, failed int, elapsed time.Duration)
}

const (
	DefaultBatchSize     = 10
	DefaultRetentionDays = 3
)

// Config controls batch scoring and retention.
type Config struct {
	BatchSize     int
	RetentionDays int
}

// RunSummary is the result of ScoreAll.
type RunSummary struct {
	Scored int `json:"scored"`
	Failed int `json:"failed"`
}

// ScoringUsecase computes multi-timeframe score snapshots and keeps their history.
type ScoringUsecase struct {
	bars     BarsFetcher
	repo     ScoreRepository
	symbols  SymbolDirectory
	recorder Recorder
	cfg      Config
	now      func() time.Time
}

// NewScoringUsecase は新しい ScoringUsecase を生成します。recorder は nil でも構いません。
func NewScoringUsecase(bars BarsFetcher, repo ScoreRepository, symbols SymbolDirectory, recorder Recorder, cfg Config) *ScoringUsecase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	return &ScoringUsecase{
		bars:     bars,
		repo:     repo,
		symbols:  symbols,
		recorder: recorder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Score computes a snapshot for symbol without storing it.
func (u *ScoringUsecase) Score(ctx context.Context, symbol string) (*entity.TickerScore, error) {
	code := normalize(symbol)
	if code == "" {
		return nil, ErrEmptySymbol
	}
	sym, err := u.symbols.Get(ctx, code)
	switch {
	case errors.Is(err, symusecase.ErrSymbolNotFound):
		sym = &symentity.Symbol{Code: code, Name: code}
	case err != nil:
		return nil, fmt.Errorf("lookup %s: %w", code, err)
	}
	return u.score(ctx, *sym), nil
}

// score は全時間足を取得して集計します。
// 1つの時間足の取得失敗や panic はログに出力し、0点として扱います。
func (u *ScoringUsecase) score(ctx context.Context, sym symentity.Symbol) *entity.TickerScore {
	ts := &entity.TickerScore{
		Symbol:     sym.Code,
		Name:       sym.Name,
		Sector:     sym.Sector,
		CategoryID: sym.CategoryID,
		Timeframes: make(map[string]entity.TimeframeScore, len(entity.All)),
	}

	var latest time.Time
	for _, interval := range entity.All {
		tf, last, ok := u.scoreTimeframe(ctx, sym.Code, interval)
		ts.Timeframes[interval] = tf
		if ok && !last.Time.Before(latest) {
			latest = last.Time
			ts.CurrentPrice = last.Close
		}
	}

	for _, interval := range entity.All {
		ts.LongScore += ts.Timeframes[interval].Score
	}
	for _, interval := range entity.Intraday {
		ts.ShortScore += ts.Timeframes[interval].Score
	}
	ts.LongRank = LongRank(ts.LongScore)
	ts.ShortRank = ShortRank(ts.ShortScore)
	ts.Trend = DetermineTrend(ts.LongRank, ts.ShortRank)

	ts.AsOf = u.now().UTC()
	ts.Day = entity.DayOf(ts.AsOf)
	return ts
}

// scoreTimeframe は1つの時間足を採点し、最後のバーを返します。
// panic はこの時間足だけを利用不可として扱い、他の時間足の採点は続行します。
func (u *ScoringUsecase) scoreTimeframe(ctx context.Context, code, interval string) (tf entity.TimeframeScore, last mdentity.Bar, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while scoring timeframe", "symbol", code, "interval", interval, "panic", r)
			tf, last, ok = entity.TimeframeScore{}, mdentity.Bar{}, false
		}
	}()

	bars, err := u.bars.Recent(ctx, code, interval)
	if err != nil {
		slog.Warn("failed to fetch bars for scoring", "symbol", code, "interval", interval, "error", err)
		return entity.TimeframeScore{}, mdentity.Bar{}, false
	}
	points, squeeze, available := ScoreBars(bars)
	last, ok = mdentity.Last(bars)
	return entity.TimeframeScore{Score: points, Squeeze: squeeze, Available: available}, last, ok
}

// ScoreAndStore computes a snapshot, compares it with the previous day and stores it.
func (u *ScoringUsecase) ScoreAndStore(ctx context.Context, symbol string) (*entity.TickerScore, error) {
	ts, err := u.Score(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return ts, u.store(ctx, ts)
}

func (u *ScoringUsecase) store(ctx context.Context, ts *entity.TickerScore) error {
	prev, err := u.repo.Previous(ctx, ts.Symbol, ts.Day)
	if err != nil {
		return fmt.Errorf("previous snapshot %s: %w", ts.Symbol, err)
	}
	ts.ScoreChange = ChangeFrom(prev, ts.LongScore)
	if err := u.repo.Upsert(ctx, ts); err != nil {
		return fmt.Errorf("store snapshot %s: %w", ts.Symbol, err)
	}
	return nil
}

// ScoreAll scores every active instrument in batches.
// 1銘柄の失敗はログに出力してカウントし、バッチは継続します。
// 時間足単位の panic は scoreTimeframe で回収されるため、ここで拾うのは保存処理などの panic です。
func (u *ScoringUsecase) ScoreAll(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	symbols, err := u.symbols.ListActiveSymbols(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to list symbols: %w", err)
	}

	var scored, failed atomic.Int64
	batches := (len(symbols) + u.cfg.BatchSize - 1) / u.cfg.BatchSize
	for b := 0; b < batches; b++ {
		if ctx.Err() != nil {
			break
		}
		lo := b * u.cfg.BatchSize
		hi := min(lo+u.cfg.BatchSize, len(symbols))
		slog.Info("scoring batch", "batch", b+1, "of", batches, "size", hi-lo)

		var g errgroup.Group
		for _, sym := range symbols[lo:hi] {
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						failed.Add(1)
						slog.Error("panic during scoring", "symbol", sym.Code, "panic", r)
					}
				}()
				if err := u.store(ctx, u.score(ctx, sym)); err != nil {
					failed.Add(1)
					slog.Error("failed to score", "symbol", sym.Code, "error", err)
					return nil
				}
				scored.Add(1)
				return nil
			})
		}
		_ = g.Wait()
	}

	sum := RunSummary{Scored: int(scored.Load()), Failed: int(failed.Load())}
	if u.recorder != nil {
		u.recorder.ScoreRunFinished(sum.Scored, sum.Failed, time.Since(start))
	}
	slog.Info("score run finished", "scored", sum.Scored, "failed", sum.Failed, "elapsed", time.Since(start))
	return sum, ctx.Err()
}

// Latest returns the most recent snapshot per symbol. An empty symbol returns every symbol.
func (u *ScoringUsecase) Latest(ctx context.Context, symbol string) ([]entity.TickerScore, error) {
	return u.repo.Latest(ctx, normalize(symbol))
}

// Purge hard-deletes snapshots older than days. days == 0 uses the configured retention.
func (u *ScoringUsecase) Purge(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, ErrInvalidRetention
	}
	if days == 0 {
		days = u.cfg.RetentionDays
	}
	cutoff := u.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	n, err := u.repo.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	slog.Info("purged old snapshots", "days", days, "deleted", n)
	return n, nil
}

// RemoveInstrument soft-deletes the snapshots of symbol and deactivates it.
func (u *ScoringUsecase) RemoveInstrument(ctx context.Context, symbol string) error {
	code := normalize(symbol)
	if code == "" {
		return ErrEmptySymbol
	}
	n, err := u.repo.SoftDelete(ctx, code)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", code, err)
	}
	if err := u.symbols.Deactivate(ctx, code); err != nil {
		// 銘柄マスタに無くてもスナップショットを削除できていれば成功とします
		if errors.Is(err, symusecase.ErrSymbolNotFound) && n > 0 {
			return nil
		}
		return err
	}
	return nil
}

// AddInstrument registers a new instrument and stores its first snapshot.
func (u *ScoringUsecase) AddInstrument(ctx context.Context, code string, categoryID int) (*entity.TickerScore, error) {
	code = normalize(code)
	if code == "" {
		return nil, ErrEmptySymbol
	}
	if !symentity.ValidCategory(categoryID) {
		return nil, symusecase.ErrInvalidCategory
	}
	sym := &symentity.Symbol{Code: code, Name: code, CategoryID: categoryID}
	if err := u.symbols.Add(ctx, sym); err != nil {
		return nil, err
	}
	ts := u.score(ctx, *sym)
	if err := u.store(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
