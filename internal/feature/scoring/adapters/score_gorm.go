// Package adapters はscoringフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/scoring/domain/entity"
	"stock_signals/internal/feature/scoring/usecase"
)

// TickerScoreModel はticker_scoresテーブルの行です。
// (symbol, day) の一意インデックスにより1銘柄1日1行となります。
type TickerScoreModel struct {
	ID         uint      `gorm:"primaryKey"`
	Symbol     string    `gorm:"size:20;not null;uniqueIndex:idx_score_symbol_day,priority:1"`
	Day        time.Time `gorm:"not null;uniqueIndex:idx_score_symbol_day,priority:2"`
	Name       string    `gorm:"size:255"`
	Sector     string    `gorm:"size:100"`
	CategoryID int

	Score15m   int    `gorm:"column:score_15m"`
	Squeeze15m string `gorm:"column:squeeze_15m;size:8"`
	Score30m   int    `gorm:"column:score_30m"`
	Squeeze30m string `gorm:"column:squeeze_30m;size:8"`
	Score90m   int    `gorm:"column:score_90m"`
	Squeeze90m string `gorm:"column:squeeze_90m;size:8"`
	Score1h    int    `gorm:"column:score_1h"`
	Squeeze1h  string `gorm:"column:squeeze_1h;size:8"`
	Score1d    int    `gorm:"column:score_1d"`
	Squeeze1d  string `gorm:"column:squeeze_1d;size:8"`
	Score5d    int    `gorm:"column:score_5d"`
	Squeeze5d  string `gorm:"column:squeeze_5d;size:8"`
	Score1wk   int    `gorm:"column:score_1wk"`
	Squeeze1wk string `gorm:"column:squeeze_1wk;size:8"`

	LongScore        int    `gorm:"not null;index"`
	ShortScore       int    `gorm:"not null"`
	LongRank         string `gorm:"size:4"`
	ShortRank        string `gorm:"size:4"`
	Trend            string `gorm:"size:16"`
	ScoreChangeTrend string `gorm:"size:16"`
	ScoreChangeDelta int
	CurrentPrice     float64

	IsDeleted bool      `gorm:"not null;default:false;index"`
	AsOf      time.Time `gorm:"not null;index"`
}

func (TickerScoreModel) TableName() string {
	return "ticker_scores"
}

// slot は時間足に対応するカラムへのポインタを返します。
func (m *TickerScoreModel) slot(interval string) (*int, *string) {
	switch interval {
	case mdentity.Interval15m:
		return &m.Score15m, &m.Squeeze15m
	case mdentity.Interval30m:
		return &m.Score30m, &m.Squeeze30m
	case mdentity.Interval90m:
		return &m.Score90m, &m.Squeeze90m
	case mdentity.Interval1h:
		return &m.Score1h, &m.Squeeze1h
	case mdentity.Interval1d:
		return &m.Score1d, &m.Squeeze1d
	case mdentity.Interval5d:
		return &m.Score5d, &m.Squeeze5d
	case mdentity.Interval1wk:
		return &m.Score1wk, &m.Squeeze1wk
	}
	return nil, nil
}

func toModel(s *entity.TickerScore) TickerScoreModel {
	m := TickerScoreModel{
		ID:               s.ID,
		Symbol:           s.Symbol,
		Day:              entity.DayOf(s.Day),
		Name:             s.Name,
		Sector:           s.Sector,
		CategoryID:       s.CategoryID,
		LongScore:        s.LongScore,
		ShortScore:       s.ShortScore,
		LongRank:         string(s.LongRank),
		ShortRank:        string(s.ShortRank),
		Trend:            string(s.Trend),
		ScoreChangeTrend: string(s.ScoreChange.Direction),
		ScoreChangeDelta: s.ScoreChange.Delta,
		CurrentPrice:     s.CurrentPrice,
		IsDeleted:        s.IsDeleted,
		AsOf:             s.AsOf.UTC(),
	}
	for _, interval := range entity.All {
		score, squeeze := m.slot(interval)
		tf := s.Timeframe(interval)
		*score = tf.Score
		*squeeze = string(tf.Squeeze)
	}
	return m
}

func toEntity(m *TickerScoreModel) entity.TickerScore {
	s := entity.TickerScore{
		ID:           m.ID,
		Symbol:       m.Symbol,
		Name:         m.Name,
		Sector:       m.Sector,
		CategoryID:   m.CategoryID,
		Timeframes:   make(map[string]entity.TimeframeScore, len(entity.All)),
		LongScore:    m.LongScore,
		ShortScore:   m.ShortScore,
		LongRank:     entity.Rank(m.LongRank),
		ShortRank:    entity.Rank(m.ShortRank),
		Trend:        entity.Trend(m.Trend),
		ScoreChange:  entity.ScoreChange{Direction: entity.Trend(m.ScoreChangeTrend), Delta: m.ScoreChangeDelta},
		CurrentPrice: m.CurrentPrice,
		AsOf:         m.AsOf.UTC(),
		Day:          m.Day.UTC(),
		IsDeleted:    m.IsDeleted,
	}
	for _, interval := range entity.All {
		score, squeeze := m.slot(interval)
		level := entity.SqueezeLevel(*squeeze)
		// スクイーズ未算出の時間足はデータ不足として扱う
		s.Timeframes[interval] = entity.TimeframeScore{Score: *score, Squeeze: level, Available: level != ""}
	}
	return s
}

// scoreGorm はScoreRepositoryインターフェースのGORM実装です。
type scoreGorm struct {
	db *gorm.DB
}

var _ usecase.ScoreRepository = (*scoreGorm)(nil)

// NewScoreRepository は新しいscoreGormリポジトリを生成します。
func NewScoreRepository(db *gorm.DB) *scoreGorm {
	return &scoreGorm{db: db}
}

// upsertColumns は競合時に上書きするカラムです。
var upsertColumns = []string{
	"name", "sector", "category_id",
	"score_15m", "squeeze_15m", "score_30m", "squeeze_30m", "score_90m", "squeeze_90m",
	"score_1h", "squeeze_1h", "score_1d", "squeeze_1d", "score_5d", "squeeze_5d",
	"score_1wk", "squeeze_1wk",
	"long_score", "short_score", "long_rank", "short_rank", "trend",
	"score_change_trend", "score_change_delta", "current_price", "is_deleted", "as_of",
}

// Upsert は (symbol, day) が一致する行を上書きし、無ければ挿入します。
func (r *scoreGorm) Upsert(ctx context.Context, s *entity.TickerScore) error {
	m := toModel(s)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(&m).Error; err != nil {
		return err
	}
	if m.ID != 0 {
		s.ID = m.ID
	}
	return nil
}

// Previous は before より前の日付で最新の（削除されていない）スナップショットを返します。
func (r *scoreGorm) Previous(ctx context.Context, symbol string, before time.Time) (*entity.TickerScore, error) {
	var m TickerScoreModel
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND day < ? AND is_deleted = ?", symbol, entity.DayOf(before), false).
		Order("day DESC").
		Order("as_of DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s := toEntity(&m)
	return &s, nil
}

// Latest は銘柄ごとに as_of が最大のスナップショットを返します。symbol が空の場合は全銘柄です。
func (r *scoreGorm) Latest(ctx context.Context, symbol string) ([]entity.TickerScore, error) {
	latest := r.db.WithContext(ctx).
		Model(&TickerScoreModel{}).
		Select("symbol, MAX(as_of) AS max_as_of").
		Where("is_deleted = ?", false).
		Group("symbol")

	q := r.db.WithContext(ctx).
		Model(&TickerScoreModel{}).
		Joins("JOIN (?) AS latest ON latest.symbol = ticker_scores.symbol AND latest.max_as_of = ticker_scores.as_of", latest).
		Where("ticker_scores.is_deleted = ?", false)
	if symbol != "" {
		q = q.Where("ticker_scores.symbol = ?", symbol)
	}

	var models []TickerScoreModel
	if err := q.Order("ticker_scores.long_score DESC").
		Order("ticker_scores.symbol ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.TickerScore, 0, len(models))
	for i := range models {
		out = append(out, toEntity(&models[i]))
	}
	return out, nil
}

// PurgeBefore は cutoff より古いスナップショットを物理削除します。
func (r *scoreGorm) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("as_of < ?", cutoff.UTC()).
		Delete(&TickerScoreModel{})
	return res.RowsAffected, res.Error
}

// SoftDelete は銘柄のスナップショットに削除フラグを立てます。
func (r *scoreGorm) SoftDelete(ctx context.Context, symbol string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&TickerScoreModel{}).
		Where("symbol = ? AND is_deleted = ?", symbol, false).
		Update("is_deleted", true)
	return res.RowsAffected, res.Error
}
