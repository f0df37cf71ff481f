// Package adapters はmarketdataフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/marketdata/usecase"
)

type barGorm struct {
	db *gorm.DB
}

var _ usecase.BarRepository = (*barGorm)(nil)

// NewBarRepository はGORMベースのバーアーカイブを生成します。
func NewBarRepository(db *gorm.DB) *barGorm {
	return &barGorm{db: db}
}

// BarModel はbarsテーブルの行です。
type BarModel struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"size:32;not null;uniqueIndex:bar_sym_tf_time,priority:1"`
	Timeframe string    `gorm:"size:8;not null;uniqueIndex:bar_sym_tf_time,priority:2"`
	Time      time.Time `gorm:"not null;uniqueIndex:bar_sym_tf_time,priority:3"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume float64 `gorm:"not null;default:0"`
}

func (BarModel) TableName() string {
	return "bars"
}

func toModel(e entity.Bar) BarModel {
	return BarModel{
		Symbol:    e.Symbol,
		Timeframe: e.Interval,
		Time:      e.Time.UTC(),
		Open:      e.Open,
		High:      e.High,
		Low:       e.Low,
		Close:     e.Close,
		Volume:    e.Volume,
	}
}

func (m BarModel) toEntity() entity.Bar {
	return entity.Bar{
		Symbol:   m.Symbol,
		Interval: m.Timeframe,
		Time:     m.Time.UTC(),
		Open:     m.Open,
		High:     m.High,
		Low:      m.Low,
		Close:    m.Close,
		Volume:   m.Volume,
	}
}

// UpsertBatch は(symbol, timeframe, time)をキーにバーを挿入または更新します。
func (r *barGorm) UpsertBatch(ctx context.Context, bars []entity.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	ms := make([]BarModel, 0, len(bars))
	for _, e := range bars {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "timeframe"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).CreateInBatches(&ms, 500).Error
}

// Find は新しい順にバーを返します。
func (r *barGorm) Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Bar, error) {
	var rows []BarModel
	q := r.db.WithContext(ctx).
		Where("symbol = ? AND timeframe = ?", symbol, interval).
		Order("time DESC")
	if outputsize > 0 {
		q = q.Limit(outputsize)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Bar, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}
