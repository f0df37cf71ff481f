// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol represents an instrument tracked by the engine.
// It carries the reference data used by scoring snapshots (name, sector, category)
// and the display ordering of the universe.
type Symbol struct {
	ID         uint      `gorm:"primaryKey"`
	Code       string    `gorm:"size:20;not null;uniqueIndex"`
	Name       string    `gorm:"size:255;not null"`
	Sector     string    `gorm:"size:100;not null;default:''"`
	CategoryID int       `gorm:"not null;default:1;index"`
	IsActive   bool      `gorm:"not null;default:true"`
	SortKey    int       `gorm:"not null;default:0"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Category groups instruments by asset type.
type Category struct {
	ID          int    `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"size:50;not null;uniqueIndex"`
	Description string `gorm:"size:255"`
}

// TableName は categories テーブル名を返します。
func (Category) TableName() string { return "categories" }

// Category IDs.
const (
	CategoryStocks  = 1
	CategoryIndices = 2
	CategorySectors = 3
	CategoryFutures = 4
	CategoryCrypto  = 5
)

// DefaultCategories は初期投入されるカテゴリです。
var DefaultCategories = []Category{
	{ID: CategoryStocks, Name: "Stocks", Description: "Individual company stocks"},
	{ID: CategoryIndices, Name: "Indices", Description: "Market indices and their ETFs"},
	{ID: CategorySectors, Name: "Sectors", Description: "Sector-specific ETFs"},
	{ID: CategoryFutures, Name: "Futures", Description: "Futures contracts"},
	{ID: CategoryCrypto, Name: "Crypto", Description: "Cryptocurrency-related instruments"},
}

// ValidCategory reports whether id is one of the seeded categories.
func ValidCategory(id int) bool {
	return id >= CategoryStocks && id <= CategoryCrypto
}
