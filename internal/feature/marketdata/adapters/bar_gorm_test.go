package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock_signals/internal/feature/marketdata/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&BarModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// seedBar creates a test bar in the database.
func seedBar(t *testing.T, db *gorm.DB, symbol, interval string, ts time.Time) *BarModel {
	t.Helper()

	bar := &BarModel{
		Symbol:    symbol,
		Timeframe: interval,
		Time:      ts,
		Open:      100.0,
		High:      110.0,
		Low:       90.0,
		Close:     105.0,
		Volume:    1000,
	}
	require.NoError(t, db.Create(bar).Error, "failed to seed bar")
	return bar
}

func TestNewBarRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewBarRepository(db)

	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

func TestBarGorm_UpsertBatch(t *testing.T) {
	t.Parallel()

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		bars         []entity.Bar
		setupFunc    func(t *testing.T, db *gorm.DB)
		validateFunc func(t *testing.T, db *gorm.DB)
	}{
		{
			name: "success: insert multiple bars",
			bars: []entity.Bar{
				{Symbol: "AAPL", Interval: "1d", Time: baseTime, Open: 100, High: 110, Low: 90, Close: 105, Volume: 1000},
				{Symbol: "AAPL", Interval: "1d", Time: baseTime.AddDate(0, 0, 1), Open: 105, High: 115, Low: 95, Close: 110, Volume: 1500},
			},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&BarModel{}).Count(&count)
				assert.Equal(t, int64(2), count)
			},
		},
		{
			name: "success: empty slice",
			bars: []entity.Bar{},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&BarModel{}).Count(&count)
				assert.Equal(t, int64(0), count)
			},
		},
		{
			name: "success: upsert updates existing bar",
			bars: []entity.Bar{
				{Symbol: "AAPL", Interval: "1d", Time: baseTime, Open: 200, High: 220, Low: 180, Close: 210, Volume: 2000},
			},
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedBar(t, db, "AAPL", "1d", baseTime)
			},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&BarModel{}).Count(&count)
				assert.Equal(t, int64(1), count, "count should remain 1 after upsert")

				var bar BarModel
				require.NoError(t, db.First(&bar).Error)
				assert.Equal(t, 200.0, bar.Open)
				assert.Equal(t, 210.0, bar.Close)
				assert.Equal(t, 2000.0, bar.Volume)
			},
		},
		{
			name: "success: same time on another interval is a separate row",
			bars: []entity.Bar{
				{Symbol: "AAPL", Interval: "1wk", Time: baseTime, Close: 1},
			},
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedBar(t, db, "AAPL", "1d", baseTime)
			},
			validateFunc: func(t *testing.T, db *gorm.DB) {
				var count int64
				db.Model(&BarModel{}).Count(&count)
				assert.Equal(t, int64(2), count)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewBarRepository(db)
			if tt.setupFunc != nil {
				tt.setupFunc(t, db)
			}

			err := repo.UpsertBatch(context.Background(), tt.bars)
			require.NoError(t, err)
			tt.validateFunc(t, db)
		})
	}
}

func TestBarGorm_Find(t *testing.T) {
	t.Parallel()

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		symbol     string
		interval   string
		outputsize int
		setupFunc  func(t *testing.T, db *gorm.DB)
		validate   func(t *testing.T, bars []entity.Bar)
	}{
		{
			name:       "success: newest first",
			symbol:     "AAPL",
			interval:   "1d",
			outputsize: 10,
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedBar(t, db, "AAPL", "1d", baseTime)
				seedBar(t, db, "AAPL", "1d", baseTime.AddDate(0, 0, 1))
				seedBar(t, db, "MSFT", "1d", baseTime)
			},
			validate: func(t *testing.T, bars []entity.Bar) {
				require.Len(t, bars, 2)
				assert.True(t, bars[0].Time.After(bars[1].Time))
				assert.Equal(t, "AAPL", bars[0].Symbol)
				assert.Equal(t, "1d", bars[0].Interval)
			},
		},
		{
			name:       "success: limit applied",
			symbol:     "AAPL",
			interval:   "1d",
			outputsize: 1,
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedBar(t, db, "AAPL", "1d", baseTime)
				seedBar(t, db, "AAPL", "1d", baseTime.AddDate(0, 0, 1))
			},
			validate: func(t *testing.T, bars []entity.Bar) {
				require.Len(t, bars, 1)
				assert.True(t, bars[0].Time.Equal(baseTime.AddDate(0, 0, 1)))
			},
		},
		{
			name:       "success: unknown symbol returns empty",
			symbol:     "NONE",
			interval:   "1d",
			outputsize: 10,
			validate: func(t *testing.T, bars []entity.Bar) {
				assert.Empty(t, bars)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			if tt.setupFunc != nil {
				tt.setupFunc(t, db)
			}
			repo := NewBarRepository(db)

			bars, err := repo.Find(context.Background(), tt.symbol, tt.interval, tt.outputsize)
			require.NoError(t, err)
			tt.validate(t, bars)
		})
	}
}
