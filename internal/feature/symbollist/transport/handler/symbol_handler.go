package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stock_signals/internal/feature/symbollist/domain/entity"
	"stock_signals/internal/feature/symbollist/transport/http/dto"
)

// SymbolUsecase は銘柄ユニバースの参照インターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error)
}

// SymbolHandler は銘柄ユニバースのHTTPリクエストを処理します。
type SymbolHandler struct {
	uc         SymbolUsecase
	categories map[int]string
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	categories := make(map[int]string, len(entity.DefaultCategories))
	for _, c := range entity.DefaultCategories {
		categories[c.ID] = c.Name
	}
	return &SymbolHandler{uc: uc, categories: categories}
}

// List は有効な銘柄を並び順で返します。
//
// エンドポイント例:
// GET /symbols?category=2
func (h *SymbolHandler) List(c *gin.Context) {
	category := 0
	if v := c.Query("category"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !entity.ValidCategory(n) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category must be between 1 and 5"})
			return
		}
		category = n
	}

	symbols, err := h.uc.ListActiveSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		if category != 0 && s.CategoryID != category {
			continue
		}
		out = append(out, dto.SymbolItem{
			Code:       s.Code,
			Name:       s.Name,
			Sector:     s.Sector,
			CategoryID: s.CategoryID,
			Category:   h.categories[s.CategoryID],
		})
	}
	c.JSON(http.StatusOK, out)
}
