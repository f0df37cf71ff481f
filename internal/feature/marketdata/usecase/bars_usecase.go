// Package usecase はバー（OHLCV）データ取得のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock_signals/internal/feature/marketdata/domain/entity"
)

const (
	// DefaultInterval はアーカイブ照会のデフォルト時間足です。
	DefaultInterval = entity.Interval1d
	// DefaultOutputSize はデフォルトの返却件数です。
	DefaultOutputSize = 200
	// MaxOutputSize は最大返却件数です。
	MaxOutputSize = 5000
)

// BarProvider は外部の市場データソースを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type BarProvider interface {
	GetBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]entity.Bar, error)
}

// BarRepository はバーのアーカイブ（DB）を抽象化します。
type BarRepository interface {
	Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Bar, error)
	UpsertBatch(ctx context.Context, bars []entity.Bar) error
}

// LookbackWindow は時間足ごとの取得期間を返します。
// 分足は7日、その他の日中足は60日、日足以上は2年です。
func LookbackWindow(interval string) time.Duration {
	switch interval {
	case "1m", "5m":
		return 7 * 24 * time.Hour
	}
	if entity.IsIntraday(interval) {
		return 60 * 24 * time.Hour
	}
	return 730 * 24 * time.Hour
}

// BarsUsecase は市場データの取得とアーカイブ照会を提供します。
type BarsUsecase struct {
	provider BarProvider
	repo     BarRepository
	now      func() time.Time
}

// NewBarsUsecase は新しい BarsUsecase を作成します。
func NewBarsUsecase(provider BarProvider, repo BarRepository) *BarsUsecase {
	return &BarsUsecase{provider: provider, repo: repo, now: time.Now}
}

// Recent は時間足に応じた期間のバーをプロバイダーから取得します。
// データが存在しない場合はエラーではなく空のスライスを返します。
func (u *BarsUsecase) Recent(ctx context.Context, symbol, interval string) ([]entity.Bar, error) {
	end := u.now().UTC()
	start := end.Add(-LookbackWindow(interval))

	bars, err := u.provider.GetBars(ctx, symbol, interval, start, end)
	if errors.Is(err, ErrNoData) {
		return []entity.Bar{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bars %s %s: %w", symbol, interval, err)
	}
	for i := range bars {
		bars[i].Symbol = symbol
		bars[i].Interval = interval
	}
	return bars, nil
}

// Stored はアーカイブ済みのバーを新しい順に返します。
func (u *BarsUsecase) Stored(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Bar, error) {
	if interval == "" {
		interval = DefaultInterval
	}
	if outputsize <= 0 || outputsize > MaxOutputSize {
		outputsize = DefaultOutputSize
	}
	return u.repo.Find(ctx, symbol, interval, outputsize)
}
