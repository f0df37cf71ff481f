// Package handler はscoringフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_signals/internal/feature/scoring/domain/entity"
	"stock_signals/internal/feature/scoring/transport/http/dto"
	"stock_signals/internal/feature/scoring/usecase"
	symusecase "stock_signals/internal/feature/symbollist/usecase"
)

// ScoringUsecase はスコアリングのユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ScoringUsecase interface {
	Score(ctx context.Context, symbol string) (*entity.TickerScore, error)
	ScoreAll(ctx context.Context) (usecase.RunSummary, error)
	Latest(ctx context.Context, symbol string) ([]entity.TickerScore, error)
	Purge(ctx context.Context, days int) (int64, error)
	RemoveInstrument(ctx context.Context, symbol string) error
	AddInstrument(ctx context.Context, code string, categoryID int) (*entity.TickerScore, error)
}

// ScoreHandler はスコア関連のHTTPリクエストを処理します。
type ScoreHandler struct {
	uc ScoringUsecase
}

// NewScoreHandler は新しい ScoreHandler を生成します。
func NewScoreHandler(uc ScoringUsecase) *ScoreHandler {
	return &ScoreHandler{uc: uc}
}

// List は銘柄ごとの最新スナップショットを返します。
//
// エンドポイント例:
// GET /scores?symbol=AAPL
func (h *ScoreHandler) List(c *gin.Context) {
	scores, err := h.uc.Latest(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.ScoreResponse, 0, len(scores))
	for i := range scores {
		out = append(out, toResponse(&scores[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Run は全銘柄のスコアリングを実行して保存します。
func (h *ScoreHandler) Run(c *gin.Context) {
	sum, err := h.uc.ScoreAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Live は保存せずにその場でスコアを計算します。
//
// エンドポイント例:
// GET /scores/AAPL/live
func (h *ScoreHandler) Live(c *gin.Context) {
	ts, err := h.uc.Score(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(ts))
}

// AddInstrument は銘柄を登録し、初回スコアを保存します。
func (h *ScoreHandler) AddInstrument(c *gin.Context) {
	var req dto.AddInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ts, err := h.uc.AddInstrument(c.Request.Context(), req.Code, req.CategoryID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(ts))
}

// RemoveInstrument は銘柄のスナップショットを論理削除し、銘柄を無効化します。
func (h *ScoreHandler) RemoveInstrument(c *gin.Context) {
	if err := h.uc.RemoveInstrument(c.Request.Context(), c.Param("code")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PurgeOld は指定日数より古いスナップショットを削除します。
//
// エンドポイント例:
// DELETE /scores/old?days=3
func (h *ScoreHandler) PurgeOld(c *gin.Context) {
	days := 0
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
			return
		}
		days = n
	}
	n, err := h.uc.Purge(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrEmptySymbol),
		errors.Is(err, usecase.ErrInvalidRetention),
		errors.Is(err, symusecase.ErrInvalidCategory),
		errors.Is(err, symusecase.ErrEmptyCode):
		status = http.StatusBadRequest
	case errors.Is(err, symusecase.ErrSymbolNotFound):
		status = http.StatusNotFound
	case errors.Is(err, symusecase.ErrSymbolExists):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func toResponse(ts *entity.TickerScore) dto.ScoreResponse {
	tfs := make(map[string]dto.TimeframeResponse, len(entity.All))
	for _, interval := range entity.All {
		tf := ts.Timeframe(interval)
		tfs[interval] = dto.TimeframeResponse{Score: tf.Score, Squeeze: string(tf.Squeeze), Available: tf.Available}
	}
	return dto.ScoreResponse{
		Symbol:       ts.Symbol,
		Name:         ts.Name,
		Sector:       ts.Sector,
		CategoryID:   ts.CategoryID,
		Timeframes:   tfs,
		LongScore:    ts.LongScore,
		ShortScore:   ts.ShortScore,
		LongRank:     string(ts.LongRank),
		ShortRank:    string(ts.ShortRank),
		Trend:        string(ts.Trend),
		ScoreChange:  dto.ScoreChangeResponse{Direction: string(ts.ScoreChange.Direction), Delta: ts.ScoreChange.Delta},
		CurrentPrice: ts.CurrentPrice,
		AsOf:         ts.AsOf.UTC().Format(time.RFC3339),
	}
}
