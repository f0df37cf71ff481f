// Package config はアプリケーション設定（YAML）の読み込みと検証を行います。
// 接続情報や秘密情報は各 platform パッケージが環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath は CONFIG_PATH 未設定時の設定ファイルです。
const DefaultPath = "configs/config.yaml"

// Config is the root of the application configuration.
type Config struct {
	Env       string          `yaml:"env" default:"development" validate:"oneof=development staging production test"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Market    MarketConfig    `yaml:"market"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Trading   TradingConfig   `yaml:"trading"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Reference ReferenceConfig `yaml:"reference"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json text"`
}

type MarketConfig struct {
	// Provider は yahoo（既定）または twelvedata です。
	Provider       string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo twelvedata"`
	Timeout        time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	Proxy          string        `yaml:"proxy" validate:"omitempty,url"`
	CacheNamespace string        `yaml:"cache_namespace" default:"bars" validate:"required"`
	// RateLimit はウィンドウあたりの取得回数です。0 は無制限です。
	RateLimit       int           `yaml:"rate_limit" default:"8" validate:"gte=0"`
	RateWindow      time.Duration `yaml:"rate_window" default:"1m" validate:"gt=0"`
	IngestIntervals []string      `yaml:"ingest_intervals" default:"[\"1d\",\"1wk\"]" validate:"min=1,dive,oneof=15m 30m 90m 1h 1d 5d 1wk"`
}

type ScoringConfig struct {
	BatchSize     int `yaml:"batch_size" default:"10" validate:"gte=1,lte=100"`
	RetentionDays int `yaml:"retention_days" default:"3" validate:"gte=1"`
}

type TradingConfig struct {
	Quantity           float64  `yaml:"quantity" default:"1" validate:"gt=0"`
	Intervals          []string `yaml:"intervals" default:"[\"15m\"]" validate:"min=1,dive,oneof=15m 30m 90m 1h 1d 5d 1wk"`
	Strategies         []string `yaml:"strategies" validate:"dive,oneof=trend squeeze breakout pullback rsi vwap"`
	Concurrency        int      `yaml:"concurrency" default:"4" validate:"gte=1,lte=64"`
	StrictSqueezeCross bool     `yaml:"strict_squeeze_cross"`
	RSIUpper           float64  `yaml:"rsi_upper" default:"70" validate:"gt=50,lt=100"`
	RSILower           float64  `yaml:"rsi_lower" default:"30" validate:"gt=0,lt=50"`
}

// ScheduleConfig は cron 設定です。"off" のジョブは登録しません。
// Detached が false の場合は server プロセス内でジョブを実行し、
// true の場合は worker が WorkerAddr で /metrics と /ws/signals を公開します。
type ScheduleConfig struct {
	Timezone   string        `yaml:"timezone" default:"America/New_York" validate:"required"`
	Score      string        `yaml:"score" default:"*/30 9-16 * * 1-5"`
	Scan       string        `yaml:"scan" default:"*/15 9-16 * * 1-5"`
	Ingest     string        `yaml:"ingest" default:"30 17 * * 1-5"`
	Purge      string        `yaml:"purge" default:"0 3 * * *"`
	JobTimeout time.Duration `yaml:"job_timeout" default:"20m" validate:"gt=0"`
	RunOnStart bool          `yaml:"run_on_start"`
	Detached   bool          `yaml:"detached"`
	WorkerAddr string        `yaml:"worker_addr" default:":8081"`
}

type ReferenceConfig struct {
	Path     string `yaml:"path" default:"configs/reference.yaml" validate:"required"`
	SkipSeed bool   `yaml:"skip_seed"`
}

type AuthConfig struct {
	OperatorUser string        `yaml:"operator_user" default:"admin" validate:"required"`
	TokenTTL     time.Duration `yaml:"token_ttl" default:"12h" validate:"gt=0"`
}

// ScheduleOff disables a scheduled job.
const ScheduleOff = "off"

// Spec returns the cron spec, or "" when the job is disabled.
func (s ScheduleConfig) Spec(spec string) string {
	if spec == ScheduleOff {
		return ""
	}
	return spec
}

// Location returns the scheduler time zone.
func (s ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Parse decodes raw YAML and fills defaults. Empty input yields the defaults.
func Parse(raw []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads path (missing file means all defaults), applies env overrides and validates.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadFromEnv loads the file named by CONFIG_PATH (default configs/config.yaml).
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MARKET_PROVIDER"); v != "" {
		c.Market.Provider = v
	}
	if v, err := strconv.ParseBool(os.Getenv("SCHEDULE_DETACHED")); err == nil {
		c.Schedule.Detached = v
	}
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Trading.RSILower >= c.Trading.RSIUpper {
		return fmt.Errorf("trading.rsi_lower (%v) must be below trading.rsi_upper (%v)", c.Trading.RSILower, c.Trading.RSIUpper)
	}
	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	return nil
}
