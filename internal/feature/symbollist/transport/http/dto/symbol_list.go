// Package dto defines data transfer objects for the symbollist HTTP API.
package dto

// SymbolItem is one instrument of the active universe.
type SymbolItem struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Sector     string `json:"sector"`
	CategoryID int    `json:"category_id"`
	Category   string `json:"category"`
}
