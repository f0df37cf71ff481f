// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/marketdata/transport/http/dto"
)

// BarsUsecase はアーカイブ照会のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type BarsUsecase interface {
	Stored(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Bar, error)
}

// BarsHandler はバーデータのHTTPリクエストを処理します。
type BarsHandler struct {
	uc BarsUsecase
}

// NewBarsHandler は新しい BarsHandler を生成します。
func NewBarsHandler(uc BarsUsecase) *BarsHandler {
	return &BarsHandler{uc: uc}
}

// GetBars はアーカイブされたバーをJSONで返します。
//
// エンドポイント例:
// GET /bars/:code?interval=1d&outputsize=200
func (h *BarsHandler) GetBars(c *gin.Context) {
	code := c.Param("code")
	interval := c.DefaultQuery("interval", entity.Interval1d)
	// 不正な値は0になり、usecase側でデフォルトに置き換えられる
	outputsize, _ := strconv.Atoi(c.DefaultQuery("outputsize", "200"))

	bars, err := h.uc.Stored(c.Request.Context(), code, interval, outputsize)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.BarResponse, 0, len(bars))
	for _, b := range bars {
		out = append(out, dto.BarResponse{
			Time:   b.Time.UTC().Format(time.RFC3339),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	c.JSON(http.StatusOK, out)
}
