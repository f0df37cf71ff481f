// Package handler はtradesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	signalusecase "stock_signals/internal/feature/signals/usecase"
	"stock_signals/internal/feature/trades/domain/entity"
	"stock_signals/internal/feature/trades/transport/http/dto"
	"stock_signals/internal/feature/trades/usecase"
)

// TradeBook はトレードブック照会のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type TradeBook interface {
	List(ctx context.Context, f usecase.Filter) ([]entity.Position, error)
}

// BacktestRunner はバックテスト実行のユースケースインターフェースです。
type BacktestRunner interface {
	Run(ctx context.Context, req usecase.BacktestRequest) (usecase.BacktestSummary, error)
}

// TradeHandler はトレード関連のHTTPリクエストを処理します。
type TradeHandler struct {
	book   TradeBook
	runner BacktestRunner
}

// NewTradeHandler は新しい TradeHandler を生成します。
func NewTradeHandler(book TradeBook, runner BacktestRunner) *TradeHandler {
	return &TradeHandler{book: book, runner: runner}
}

// List はトレードブックを返します。
//
// エンドポイント例:
// GET /trades?symbol=AAPL&status=Ongoing&back_testing=false
// GET /trades?back_testing=true&run_id=<backtest run id>
func (h *TradeHandler) List(c *gin.Context) {
	f := usecase.Filter{
		Symbol:   c.Query("symbol"),
		Interval: c.Query("interval"),
		Status:   entity.Status(c.Query("status")),
		RunID:    c.Query("run_id"),
	}
	if f.Status != "" && f.Status != entity.StatusOngoing && f.Status != entity.StatusClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be Ongoing or Closed"})
		return
	}
	if v := c.Query("back_testing"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "back_testing must be a boolean"})
			return
		}
		f.BackTesting = &b
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		f.Limit = n
	}

	ps, err := h.book.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toResponses(ps))
}

// Backtest はバックテストを実行してサマリーを返します。
//
// エンドポイント例:
// POST /backtest {"symbol":"AAPL","interval":"1d","quantity":10}
func (h *TradeHandler) Backtest(c *gin.Context) {
	var req dto.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sum, err := h.runner.Run(c.Request.Context(), usecase.BacktestRequest{
		Symbol:     req.Symbol,
		Interval:   req.Interval,
		Quantity:   req.Quantity,
		Strategies: req.Strategies,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptySymbol),
			errors.Is(err, usecase.ErrInvalidQuantity),
			errors.Is(err, signalusecase.ErrUnknownStrategy):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, dto.BacktestResponse{
		RunID:     sum.RunID,
		Symbol:    sum.Symbol,
		Interval:  sum.Interval,
		Bars:      sum.Bars,
		Trades:    sum.Trades,
		Open:      sum.Open,
		Wins:      sum.Wins,
		Losses:    sum.Losses,
		TotalPnL:  sum.TotalPnL,
		WinRate:   sum.WinRate,
		Positions: toResponses(sum.Positions),
	})
}

func toResponses(ps []entity.Position) []dto.PositionResponse {
	out := make([]dto.PositionResponse, 0, len(ps))
	for _, p := range ps {
		r := dto.PositionResponse{
			ID:          p.ID,
			Symbol:      p.Symbol,
			Interval:    p.Interval,
			Direction:   string(p.Direction),
			BackTesting: p.BackTesting,
			RunID:       p.RunID,
			Indicator:   p.Indicator,
			EntryPrice:  p.EntryPrice,
			EntryTime:   p.EntryTime.UTC().Format(time.RFC3339),
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
			s := p.ExitTime.UTC().Format(time.RFC3339)
			r.ExitTime = &s
		}
		out = append(out, r)
	}
	return out
}
