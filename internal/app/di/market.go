// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"stock_signals/internal/config"
	"stock_signals/internal/feature/marketdata/usecase"
	"stock_signals/internal/platform/cache"
	"stock_signals/internal/platform/externalapi/twelvedata"
	"stock_signals/internal/platform/externalapi/yahoo"
	infrahttp "stock_signals/internal/platform/http"
	"stock_signals/internal/platform/metrics"
)

const (
	ProviderYahoo      = "yahoo"
	ProviderTwelveData = "twelvedata"
)

// NewMarket creates the configured upstream bar provider with its HTTP client.
func NewMarket(cfg config.MarketConfig) (usecase.BarProvider, error) {
	httpClient, err := infrahttp.NewHTTPClient(cfg.Timeout, cfg.Proxy)
	if err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderTwelveData:
		return twelvedata.NewTwelveDataMarket(twelvedata.LoadConfig(), httpClient), nil
	case ProviderYahoo, "":
		return yahoo.NewYahooMarket(yahoo.LoadConfig(), httpClient), nil
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Provider)
	}
}

// NewBarProvider wraps the upstream provider with metrics and the Redis cache.
// rdb が nil の場合はキャッシュなしで動作します。
func NewBarProvider(cfg config.MarketConfig, rdb *redis.Client, rec *metrics.Recorder) (usecase.BarProvider, error) {
	upstream, err := NewMarket(cfg)
	if err != nil {
		return nil, err
	}
	var provider usecase.BarProvider = upstream
	if rec != nil {
		provider = metrics.InstrumentBarProvider(upstream, rec)
	}
	return cache.NewCachingBarProvider(rdb, provider, cfg.CacheNamespace), nil
}
