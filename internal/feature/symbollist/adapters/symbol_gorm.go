// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"stock_signals/internal/feature/symbollist/domain/entity"
	"stock_signals/internal/feature/symbollist/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// symbolGorm はSymbolRepositoryインターフェースのGORM実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// FindByCode は有効・無効を問わずコードに一致する銘柄を返します。見つからない場合は nil, nil です。
func (r *symbolGorm) FindByCode(ctx context.Context, code string) (*entity.Symbol, error) {
	var s entity.Symbol
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create は銘柄を新規登録します。コードの重複は usecase.ErrSymbolExists に変換します。
func (r *symbolGorm) Create(ctx context.Context, s *entity.Symbol) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrSymbolExists
		}
		return err
	}
	return nil
}

// SetActive は is_active を更新し、対象行が存在したかを返します。
func (r *symbolGorm) SetActive(ctx context.Context, code string, active bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("code = ?", code).
		Update("is_active", active)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SeedCategories はカテゴリをID単位でupsertします。
func (r *symbolGorm) SeedCategories(ctx context.Context, categories []entity.Category) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
		}).
		Create(&categories).Error
}

// UpsertSymbols は参照データの銘柄をコード単位でupsertします。
// is_active は更新対象に含めないため、運用中に無効化した銘柄は無効のまま残ります。
func (r *symbolGorm) UpsertSymbols(ctx context.Context, symbols []entity.Symbol) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "sector", "category_id", "sort_key", "updated_at"}),
		}).
		CreateInBatches(&symbols, 100).Error
}
