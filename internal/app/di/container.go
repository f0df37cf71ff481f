package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_signals/internal/config"
	authhandler "stock_signals/internal/feature/auth/transport/handler"
	authusecase "stock_signals/internal/feature/auth/usecase"
	mdadapters "stock_signals/internal/feature/marketdata/adapters"
	mdhandler "stock_signals/internal/feature/marketdata/transport/handler"
	mdusecase "stock_signals/internal/feature/marketdata/usecase"
	scoreadapters "stock_signals/internal/feature/scoring/adapters"
	scorehandler "stock_signals/internal/feature/scoring/transport/handler"
	scoreusecase "stock_signals/internal/feature/scoring/usecase"
	signalentity "stock_signals/internal/feature/signals/domain/entity"
	signalhandler "stock_signals/internal/feature/signals/transport/handler"
	signalusecase "stock_signals/internal/feature/signals/usecase"
	symboladapters "stock_signals/internal/feature/symbollist/adapters"
	symbolhandler "stock_signals/internal/feature/symbollist/transport/handler"
	symbolusecase "stock_signals/internal/feature/symbollist/usecase"
	tradeadapters "stock_signals/internal/feature/trades/adapters"
	tradehandler "stock_signals/internal/feature/trades/transport/handler"
	tradeusecase "stock_signals/internal/feature/trades/usecase"
	platformdb "stock_signals/internal/platform/db"
	healthhandler "stock_signals/internal/platform/http/handler"
	jwtmw "stock_signals/internal/platform/jwt"
	"stock_signals/internal/platform/metrics"
	infraredis "stock_signals/internal/platform/redis"
	"stock_signals/internal/platform/ws"
	"stock_signals/internal/shared/ratelimiter"
)

// Handlers は HTTP ルーターが必要とするハンドラー群です。
type Handlers struct {
	Auth    *authhandler.AuthHandler
	Symbols *symbolhandler.SymbolHandler
	Bars    *mdhandler.BarsHandler
	Scores  *scorehandler.ScoreHandler
	Signals *signalhandler.SignalHandler
	Trades  *tradehandler.TradeHandler
}

// Container owns every long-lived component of a process.
type Container struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Metrics *metrics.Recorder
	Hub     *ws.Hub

	Symbols  *symbolusecase.SymbolUsecase
	Bars     *mdusecase.BarsUsecase
	Ingest   *mdusecase.IngestUsecase
	Scoring  *scoreusecase.ScoringUsecase
	Scan     *signalusecase.ScanUsecase
	Trades   *tradeusecase.Manager
	Backtest *tradeusecase.Backtester

	Handlers Handlers
}

// Build は DB・Redis・外部APIを接続し、全コンポーネントを組み立てます。
// Redis は任意で、接続できない場合はキャッシュなしで起動します。
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := platformdb.OpenDB(platformdb.LoadConfigFromEnv())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	c := &Container{
		Config:  cfg,
		DB:      db,
		Metrics: metrics.New(),
		Hub:     ws.NewHub(),
	}

	if rcfg := infraredis.LoadConfig(); rcfg.Enabled() {
		rdb, err := infraredis.NewRedisClient(ctx, rcfg)
		if err != nil {
			slog.Warn("redis unavailable, running without cache", "addr", rcfg.Addr(), "error", err)
		} else {
			c.Redis = rdb
		}
	}

	provider, err := NewBarProvider(cfg.Market, c.Redis, c.Metrics)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Repository
	symbolRepo := symboladapters.NewSymbolRepository(db)
	barRepo := mdadapters.NewBarRepository(db)
	scoreRepo := scoreadapters.NewScoreRepository(db)
	positionRepo := tradeadapters.NewPositionRepository(db)

	// Usecase
	c.Symbols = symbolusecase.NewSymbolUsecase(symbolRepo)
	c.Bars = mdusecase.NewBarsUsecase(provider, barRepo)
	c.Ingest = mdusecase.NewIngestUsecase(
		provider, barRepo,
		ratelimiter.NewRateLimiter(cfg.Market.RateLimit, cfg.Market.RateWindow),
		cfg.Market.IngestIntervals,
	)
	c.Scoring = scoreusecase.NewScoringUsecase(c.Bars, scoreRepo, c.Symbols, c.Metrics, scoreusecase.Config{
		BatchSize:     cfg.Scoring.BatchSize,
		RetentionDays: cfg.Scoring.RetentionDays,
	})

	synthCfg, err := SynthesizerConfig(cfg.Trading)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Trades = tradeusecase.NewManager(positionRepo, c.Metrics)
	c.Scan = signalusecase.NewScanUsecase(
		c.Bars, c.Trades, c.Symbols,
		signalusecase.NewSynthesizer(synthCfg),
		c.Hub, c.Metrics,
		signalusecase.ScanConfig{
			Intervals:   cfg.Trading.Intervals,
			Quantity:    cfg.Trading.Quantity,
			Concurrency: cfg.Trading.Concurrency,
		},
	)
	c.Backtest = tradeusecase.NewBacktester(c.Bars, signalusecase.NewFeed(synthCfg), c.Trades)

	authUC := authusecase.NewAuthUsecase(
		authusecase.LoadCredentials(cfg.Auth.OperatorUser),
		jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), cfg.Auth.TokenTTL),
	)

	// Handler
	c.Handlers = Handlers{
		Auth:    authhandler.NewAuthHandler(authUC, cfg.Auth.TokenTTL),
		Symbols: symbolhandler.NewSymbolHandler(c.Symbols),
		Bars:    mdhandler.NewBarsHandler(c.Bars),
		Scores:  scorehandler.NewScoreHandler(c.Scoring),
		Signals: signalhandler.NewSignalHandler(c.Scan),
		Trades:  tradehandler.NewTradeHandler(c.Trades, c.Backtest),
	}
	return c, nil
}

// SynthesizerConfig converts the trading section into the synthesizer settings.
// 戦略が未指定の場合は既定の戦略 (vwap 以外) を有効にします。
func SynthesizerConfig(t config.TradingConfig) (signalusecase.SynthesizerConfig, error) {
	sc := signalusecase.DefaultSynthesizerConfig()
	sc.StrictSqueezeCross = t.StrictSqueezeCross
	if t.RSIUpper > 0 {
		sc.RSIUpper = t.RSIUpper
	}
	if t.RSILower > 0 {
		sc.RSILower = t.RSILower
	}
	if len(t.Strategies) == 0 {
		return sc, nil
	}
	sc.Strategies = make([]signalentity.Strategy, 0, len(t.Strategies))
	for _, name := range t.Strategies {
		st, ok := signalentity.ParseStrategy(name)
		if !ok {
			return sc, fmt.Errorf("%w: %s", signalusecase.ErrUnknownStrategy, name)
		}
		sc.Strategies = append(sc.Strategies, st)
	}
	return sc, nil
}

// SeedReference loads the reference file into the symbol universe unless disabled.
func (c *Container) SeedReference(ctx context.Context) error {
	if c.Config.Reference.SkipSeed {
		return nil
	}
	ref, err := symboladapters.LoadReference(c.Config.Reference.Path)
	if err != nil {
		return fmt.Errorf("load reference: %w", err)
	}
	return c.Symbols.Seed(ctx, ref)
}

// ReadyChecks returns the dependency checks used by /readyz.
func (c *Container) ReadyChecks() map[string]healthhandler.Check {
	checks := map[string]healthhandler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Close はDBとRedisの接続を解放します。
func (c *Container) Close() error {
	var errs []error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close db: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
