// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"stock_signals/internal/feature/symbollist/domain/entity"
)

// SymbolRepository abstracts the persistence layer for the instrument universe.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	// FindByCode returns nil, nil when the code is unknown.
	FindByCode(ctx context.Context, code string) (*entity.Symbol, error)
	Create(ctx context.Context, s *entity.Symbol) error
	// SetActive reports whether a row matched the code.
	SetActive(ctx context.Context, code string, active bool) (bool, error)
	SeedCategories(ctx context.Context, categories []entity.Category) error
	UpsertSymbols(ctx context.Context, symbols []entity.Symbol) error
}

// Reference is the reference data set loaded at startup.
type Reference struct {
	Categories []entity.Category
	Symbols    []entity.Symbol
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns all active symbols ordered by sort key.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveCodes returns the codes of the active universe ordered by sort key.
func (u *SymbolUsecase) ListActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// Get returns the symbol registered under code.
func (u *SymbolUsecase) Get(ctx context.Context, code string) (*entity.Symbol, error) {
	code = normalize(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	s, err := u.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSymbolNotFound
	}
	return s, nil
}

// Add registers a new instrument.
// 無効化済みの銘柄は再度有効化し、有効な銘柄が既に存在する場合は ErrSymbolExists を返します。
func (u *SymbolUsecase) Add(ctx context.Context, s *entity.Symbol) error {
	s.Code = normalize(s.Code)
	if s.Code == "" {
		return ErrEmptyCode
	}
	if !entity.ValidCategory(s.CategoryID) {
		return ErrInvalidCategory
	}
	existing, err := u.repo.FindByCode(ctx, s.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsActive {
			return ErrSymbolExists
		}
		if _, err := u.repo.SetActive(ctx, s.Code, true); err != nil {
			return fmt.Errorf("reactivate %s: %w", s.Code, err)
		}
		*s = *existing
		s.IsActive = true
		return nil
	}
	if s.Name == "" {
		s.Name = s.Code
	}
	s.IsActive = true
	return u.repo.Create(ctx, s)
}

// Deactivate removes the instrument from the active universe.
func (u *SymbolUsecase) Deactivate(ctx context.Context, code string) error {
	code = normalize(code)
	if code == "" {
		return ErrEmptyCode
	}
	ok, err := u.repo.SetActive(ctx, code, false)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSymbolNotFound
	}
	return nil
}

// Seed loads the reference categories and symbols. Existing rows are updated in place.
func (u *SymbolUsecase) Seed(ctx context.Context, ref Reference) error {
	categories := ref.Categories
	if len(categories) == 0 {
		categories = entity.DefaultCategories
	}
	if err := u.repo.SeedCategories(ctx, categories); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	symbols := make([]entity.Symbol, 0, len(ref.Symbols))
	for i, s := range ref.Symbols {
		s.Code = normalize(s.Code)
		if s.Code == "" {
			continue
		}
		if !entity.ValidCategory(s.CategoryID) {
			slog.Warn("skipping reference symbol with invalid category", "code", s.Code, "category_id", s.CategoryID)
			continue
		}
		if s.Name == "" {
			s.Name = s.Code
		}
		if s.SortKey == 0 {
			s.SortKey = i + 1
		}
		s.IsActive = true
		symbols = append(symbols, s)
	}
	if len(symbols) == 0 {
		return nil
	}
	if err := u.repo.UpsertSymbols(ctx, symbols); err != nil {
		return fmt.Errorf("seed symbols: %w", err)
	}
	slog.Info("reference data seeded", "categories", len(categories), "symbols", len(symbols))
	return nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
