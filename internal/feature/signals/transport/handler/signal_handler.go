// Package handler はsignalsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock_signals/internal/feature/indicators"
	"stock_signals/internal/feature/signals/domain/entity"
	"stock_signals/internal/feature/signals/transport/http/dto"
	"stock_signals/internal/feature/signals/usecase"
)

// SignalUsecase はシグナル評価のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SignalUsecase interface {
	Evaluate(ctx context.Context, symbol, interval string) ([]entity.Event, error)
	Chart(ctx context.Context, symbol, interval string) (usecase.Chart, error)
}

// SignalHandler はシグナル照会のHTTPリクエストを処理します。
type SignalHandler struct {
	uc SignalUsecase
}

// NewSignalHandler は新しい SignalHandler を生成します。
func NewSignalHandler(uc SignalUsecase) *SignalHandler {
	return &SignalHandler{uc: uc}
}

// GetSignals は銘柄のシグナルを評価して返します。取引は発生しません。
//
// エンドポイント例:
// GET /signals/:code?interval=15m
func (h *SignalHandler) GetSignals(c *gin.Context) {
	code := c.Param("code")
	interval := c.DefaultQuery("interval", "15m")

	events, err := h.uc.Evaluate(c.Request.Context(), code, interval)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptySymbol) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SignalsResponse{Symbol: code, Interval: interval, Events: toEvents(events)})
}

// GetChart は銘柄のバーと指標をバーごとに返します。チャート描画用です。
//
// エンドポイント例:
// GET /chart/:code?interval=1h
func (h *SignalHandler) GetChart(c *gin.Context) {
	code := c.Param("code")
	interval := c.DefaultQuery("interval", "15m")

	ch, err := h.uc.Chart(c.Request.Context(), code, interval)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptySymbol) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	f := ch.Frame
	rows := make([]dto.ChartRow, 0, len(ch.Bars))
	for i, b := range ch.Bars {
		row := dto.ChartRow{
			Time:       b.Time.UTC().Format(time.RFC3339),
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			Volume:     b.Volume,
			MACD:       value(f.At(indicators.ColMACD, i)),
			MACDSignal: value(f.At(indicators.ColMACDSignal, i)),
			MACDHist:   value(f.At(indicators.ColMACDHist, i)),
			Momentum:   value(f.At(indicators.ColMomentum, i)),
			AO:         value(f.At(indicators.ColAO, i)),
			WaveAFast:  value(f.At(indicators.ColWaveAFast, i)),
			WaveASlow:  value(f.At(indicators.ColWaveASlow, i)),
			VWAP:       value(f.At(indicators.ColVWAP, i)),
			VWAPUpper:  value(f.At(indicators.ColVWAPUpper, i)),
			VWAPLower:  value(f.At(indicators.ColVWAPLower, i)),
			ATR:        value(f.At(indicators.ColATRBand, i)),
		}
		if i < len(f.Squeeze) {
			row.Squeeze = string(f.Squeeze[i])
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, dto.ChartResponse{Symbol: ch.Symbol, Interval: ch.Interval, Rows: rows, Events: toEvents(ch.Events)})
}

func toEvents(events []entity.Event) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.EventResponse{
			Time:     e.Time.UTC().Format(time.RFC3339),
			Kind:     string(e.Kind),
			Strategy: string(e.Strategy),
			Price:    e.Price,
		})
	}
	return out
}

// value は未計算 (NaN) を nil にします。JSON では null になります。
func value(v float64) *float64 {
	if !indicators.Available(v) {
		return nil
	}
	return &v
}
