package adapters

import (
	"fmt"
	"os"

	"stock_signals/internal/feature/symbollist/domain/entity"
	"stock_signals/internal/feature/symbollist/usecase"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type referenceFile struct {
	Categories []categoryRecord `yaml:"categories" validate:"dive"`
	Symbols    []symbolRecord   `yaml:"symbols" validate:"dive"`
}

type categoryRecord struct {
	ID          int    `yaml:"id" validate:"min=1,max=5"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
}

type symbolRecord struct {
	Code     string `yaml:"code" validate:"required,max=20"`
	Name     string `yaml:"name"`
	Sector   string `yaml:"sector"`
	Category int    `yaml:"category" validate:"min=1,max=5"`
}

// LoadReference は参照データのYAMLファイルを読み込みます。
// ファイルが存在しない場合はデフォルトのカテゴリのみを返します。
func LoadReference(path string) (usecase.Reference, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return usecase.Reference{Categories: entity.DefaultCategories}, nil
	}
	if err != nil {
		return usecase.Reference{}, fmt.Errorf("read reference %s: %w", path, err)
	}
	return ParseReference(raw)
}

// ParseReference は参照データYAMLをデコードして検証します。
func ParseReference(raw []byte) (usecase.Reference, error) {
	var f referenceFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return usecase.Reference{}, fmt.Errorf("decode reference: %w", err)
	}
	if err := validator.New().Struct(f); err != nil {
		return usecase.Reference{}, fmt.Errorf("validate reference: %w", err)
	}

	ref := usecase.Reference{
		Categories: make([]entity.Category, 0, len(f.Categories)),
		Symbols:    make([]entity.Symbol, 0, len(f.Symbols)),
	}
	for _, c := range f.Categories {
		ref.Categories = append(ref.Categories, entity.Category{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	for _, s := range f.Symbols {
		ref.Symbols = append(ref.Symbols, entity.Symbol{
			Code:       s.Code,
			Name:       s.Name,
			Sector:     s.Sector,
			CategoryID: s.Category,
		})
	}
	if len(ref.Categories) == 0 {
		ref.Categories = entity.DefaultCategories
	}
	return ref, nil
}
