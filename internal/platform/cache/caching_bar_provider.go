package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/marketdata/usecase"
)

// DefaultNamespace はキャッシュキーのデフォルト接頭辞です。
const DefaultNamespace = "bars"

// CachingBarProvider は BarProvider をデコレートし、取得結果を Redis にキャッシュします。
// Redis クライアントが nil の場合はキャッシュを経由せずに委譲します。
type CachingBarProvider struct {
	rdb       *redis.Client
	inner     usecase.BarProvider
	namespace string
	now       func() time.Time
}

var _ usecase.BarProvider = (*CachingBarProvider)(nil)

// NewCachingBarProvider は新しい CachingBarProvider を作成します。
func NewCachingBarProvider(rdb *redis.Client, inner usecase.BarProvider, namespace string) *CachingBarProvider {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CachingBarProvider{rdb: rdb, inner: inner, namespace: namespace, now: time.Now}
}

type cachedBar struct {
	Time   time.Time `json:"t"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

func (c *CachingBarProvider) key(symbol, interval string, start time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", c.namespace, safe(symbol), safe(interval), start.UTC().Format("20060102"))
}

// GetBars はキャッシュを確認し、ミス時は内部プロバイダーから取得して保存します。
// 内部プロバイダーのエラー（ErrNoData を含む）はキャッシュしません。
func (c *CachingBarProvider) GetBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]entity.Bar, error) {
	if c.rdb == nil {
		return c.inner.GetBars(ctx, symbol, interval, start, end)
	}

	key := c.key(symbol, interval, start)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []cachedBar
		if uerr := json.Unmarshal(raw, &cached); uerr == nil {
			return fromCache(cached, symbol, interval), nil
		}
		// 破損したエントリは削除して再取得
		if derr := c.rdb.Del(ctx, key).Err(); derr != nil {
			slog.Warn("failed to delete corrupted cache entry", "key", key, "error", derr)
		}
	case !errors.Is(err, redis.Nil):
		slog.Warn("cache get failed; falling back to provider", "key", key, "error", err)
	}

	bars, err := c.inner.GetBars(ctx, symbol, interval, start, end)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(toCache(bars))
	if err != nil {
		return bars, nil
	}
	if err := c.rdb.Set(ctx, key, payload, TTLFor(interval, c.now())).Err(); err != nil {
		slog.Warn("cache set failed", "key", key, "error", err)
	}
	return bars, nil
}

func toCache(bars []entity.Bar) []cachedBar {
	out := make([]cachedBar, len(bars))
	for i, b := range bars {
		out[i] = cachedBar{Time: b.Time, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
	}
	return out
}

func fromCache(cached []cachedBar, symbol, interval string) []entity.Bar {
	out := make([]entity.Bar, len(cached))
	for i, b := range cached {
		out[i] = entity.Bar{
			Symbol:   symbol,
			Interval: interval,
			Time:     b.Time.UTC(),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			Volume:   b.Volume,
		}
	}
	return out
}

// safe はキー区切り文字と空白を置換します。
func safe(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
