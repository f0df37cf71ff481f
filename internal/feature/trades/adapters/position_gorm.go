// Package adapters はtradesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"stock_signals/internal/feature/trades/domain/entity"
	"stock_signals/internal/feature/trades/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// PositionModel はpositionsテーブルの行です。
// (symbol, timeframe, direction, back_testing, run_id, entry_time) の一意インデックスが
// 同一エントリーの二重登録を防ぎます。行は削除しません（決済済みの履歴は追記のみ）。
type PositionModel struct {
	ID          uint      `gorm:"primaryKey"`
	Symbol      string    `gorm:"size:32;not null;uniqueIndex:idx_position_entry,priority:1;index:idx_position_key,priority:1"`
	Timeframe   string    `gorm:"size:8;not null;uniqueIndex:idx_position_entry,priority:2;index:idx_position_key,priority:2"`
	Direction   string    `gorm:"size:8;not null;uniqueIndex:idx_position_entry,priority:3;index:idx_position_key,priority:3"`
	BackTesting bool      `gorm:"not null;uniqueIndex:idx_position_entry,priority:4;index:idx_position_key,priority:4"`
	RunID       string    `gorm:"size:36;not null;default:'';uniqueIndex:idx_position_entry,priority:5;index:idx_position_key,priority:5"`
	EntryTime   time.Time `gorm:"not null;uniqueIndex:idx_position_entry,priority:6"`
	Indicator   string    `gorm:"size:32"`

	EntryPrice float64 `gorm:"not null"`
	Stoploss   float64 `gorm:"not null"`
	Target     float64 `gorm:"not null"`
	Quantity   float64 `gorm:"not null"`
	Capital    float64 `gorm:"not null"`

	Status    string `gorm:"size:16;not null;index"`
	ExitPrice *float64
	ExitTime  *time.Time
	PnL       float64 `gorm:"column:pnl"`
	ROI       float64 `gorm:"column:roi"`
	ProfitPct float64
	Remarks   string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PositionModel) TableName() string {
	return "positions"
}

func toModel(p *entity.Position) PositionModel {
	m := PositionModel{
		ID:          p.ID,
		Symbol:      p.Symbol,
		Timeframe:   p.Interval,
		Direction:   string(p.Direction),
		BackTesting: p.BackTesting,
		RunID:       p.RunID,
		EntryTime:   p.EntryTime.UTC(),
		Indicator:   p.Indicator,
		EntryPrice:  p.EntryPrice,
		Stoploss:    p.Stoploss,
		Target:      p.Target,
		Quantity:    p.Quantity,
		Capital:     p.Capital,
		Status:      string(p.Status),
		ExitPrice:   p.ExitPrice,
		PnL:         p.PnL,
		ROI:         p.ROI,
		ProfitPct:   p.ProfitPct,
		Remarks:     p.Remarks,
	}
	if p.ExitTime != nil {
		t := p.ExitTime.UTC()
		m.ExitTime = &t
	}
	return m
}

func (m PositionModel) toEntity() entity.Position {
	p := entity.Position{
		ID:          m.ID,
		Symbol:      m.Symbol,
		Interval:    m.Timeframe,
		Direction:   entity.Direction(m.Direction),
		BackTesting: m.BackTesting,
		RunID:       m.RunID,
		Indicator:   m.Indicator,
		EntryPrice:  m.EntryPrice,
		EntryTime:   m.EntryTime.UTC(),
		Stoploss:    m.Stoploss,
		Target:      m.Target,
		Quantity:    m.Quantity,
		Capital:     m.Capital,
		Status:      entity.Status(m.Status),
		ExitPrice:   m.ExitPrice,
		PnL:         m.PnL,
		ROI:         m.ROI,
		ProfitPct:   m.ProfitPct,
		Remarks:     m.Remarks,
	}
	if m.ExitTime != nil {
		t := m.ExitTime.UTC()
		p.ExitTime = &t
	}
	return p
}

// isUniqueViolation は一意制約違反かどうかを判定します。
// gorm.Config.TranslateError が有効な場合は gorm.ErrDuplicatedKey に変換済みです。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

type positionGorm struct {
	db *gorm.DB
}

var _ usecase.PositionRepository = (*positionGorm)(nil)

// NewPositionRepository はGORMベースのポジションリポジトリを生成します。
func NewPositionRepository(db *gorm.DB) *positionGorm {
	return &positionGorm{db: db}
}

// WithinTx は fn を1つのトランザクション内で実行します。fn がエラーを返すとロールバックされます。
func (r *positionGorm) WithinTx(ctx context.Context, fn func(store usecase.PositionStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&positionStore{db: tx})
	})
}

// List は条件に合うポジションをエントリー時刻の新しい順に返します。
func (r *positionGorm) List(ctx context.Context, f usecase.Filter) ([]entity.Position, error) {
	q := r.db.WithContext(ctx).Model(&PositionModel{})
	if f.Symbol != "" {
		q = q.Where("symbol = ?", f.Symbol)
	}
	if f.Interval != "" {
		q = q.Where("timeframe = ?", f.Interval)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.BackTesting != nil {
		q = q.Where("back_testing = ?", *f.BackTesting)
	}
	if f.RunID != "" {
		q = q.Where("run_id = ?", f.RunID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []PositionModel
	if err := q.Order("entry_time DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Position, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// positionStore はトランザクションに束縛されたPositionStoreの実装です。
type positionStore struct {
	db *gorm.DB
}

var _ usecase.PositionStore = (*positionStore)(nil)

func (s *positionStore) keyScope(ctx context.Context, key entity.Key) *gorm.DB {
	return s.db.WithContext(ctx).Model(&PositionModel{}).
		Where("symbol = ? AND timeframe = ? AND direction = ? AND back_testing = ? AND run_id = ?",
			key.Symbol, key.Interval, string(key.Direction), key.BackTesting, key.RunID)
}

// FindOngoing は進行中のポジションを返します。存在しない場合は nil を返します。
// 未存在は通常ケースなので First ではなく Find で取得し、record not found ログを出しません。
func (s *positionStore) FindOngoing(ctx context.Context, key entity.Key) (*entity.Position, error) {
	var rows []PositionModel
	res := s.keyScope(ctx, key).
		Where("status = ?", string(entity.StatusOngoing)).
		Order("id DESC").
		Limit(1).
		Find(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || len(rows) == 0 {
		return nil, nil
	}
	p := rows[0].toEntity()
	return &p, nil
}

// ExistsEntry は同じエントリー時刻のポジションが存在するかを返します。
func (s *positionStore) ExistsEntry(ctx context.Context, key entity.Key, entryTime time.Time) (bool, error) {
	var n int64
	if err := s.keyScope(ctx, key).Where("entry_time = ?", entryTime.UTC()).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create はポジションを挿入します。一意制約違反は usecase.ErrDuplicatePosition に変換されます。
func (s *positionStore) Create(ctx context.Context, p *entity.Position) error {
	m := toModel(p)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return usecase.ErrDuplicatePosition
		}
		return err
	}
	p.ID = m.ID
	return nil
}

// Update はポジションの決済内容を保存します。
func (s *positionStore) Update(ctx context.Context, p *entity.Position) error {
	m := toModel(p)
	return s.db.WithContext(ctx).Model(&PositionModel{ID: p.ID}).
		Select("status", "exit_price", "exit_time", "pnl", "roi", "profit_pct", "remarks").
		Updates(&m).Error
}
