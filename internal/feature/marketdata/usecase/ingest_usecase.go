package usecase

import (
	"context"
	"log/slog"

	"stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/shared/ratelimiter"
)

// DefaultIngestIntervals はアーカイブ対象のデフォルト時間足です。
var DefaultIngestIntervals = []string{entity.Interval1d, entity.Interval1wk}

// IngestUsecase は外部ソースからバーを取得し、アーカイブに永続化します。
type IngestUsecase struct {
	bars        *BarsUsecase
	repo        BarRepository
	rateLimiter ratelimiter.RateLimiterInterface
	intervals   []string
}

// NewIngestUsecase は新しい IngestUsecase を作成します。intervals が空の場合はデフォルトを使用します。
func NewIngestUsecase(provider BarProvider, repo BarRepository, rateLimiter ratelimiter.RateLimiterInterface, intervals []string) *IngestUsecase {
	if len(intervals) == 0 {
		intervals = DefaultIngestIntervals
	}
	return &IngestUsecase{
		bars:        NewBarsUsecase(provider, repo),
		repo:        repo,
		rateLimiter: rateLimiter,
		intervals:   intervals,
	}
}

func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol, interval string) error {
	bs, err := iu.bars.Recent(ctx, symbol, interval)
	if err != nil {
		return err
	}
	return iu.repo.UpsertBatch(ctx, bs)
}

// IngestAll は全銘柄・全時間足のバーを取得して保存します。
// 1銘柄の失敗はログに出力して処理を継続します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	for _, s := range symbols {
		for _, interval := range iu.intervals {
			if err := ctx.Err(); err != nil {
				return err
			}
			iu.rateLimiter.WaitIfNeeded()
			if err := iu.ingestOne(ctx, s, interval); err != nil {
				slog.Error("failed to ingest bars", "symbol", s, "interval", interval, "error", err)
				continue
			}
		}
	}
	return nil
}
