package handler_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stock_signals/internal/feature/indicators"
	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/signals/domain/entity"
	"stock_signals/internal/feature/signals/transport/handler"
	"stock_signals/internal/feature/signals/usecase"
)

type mockSignalUsecase struct {
	EvaluateFunc func(ctx context.Context, symbol, interval string) ([]entity.Event, error)
	ChartFunc    func(ctx context.Context, symbol, interval string) (usecase.Chart, error)
}

func (m *mockSignalUsecase) Evaluate(ctx context.Context, symbol, interval string) ([]entity.Event, error) {
	return m.EvaluateFunc(ctx, symbol, interval)
}

func (m *mockSignalUsecase) Chart(ctx context.Context, symbol, interval string) (usecase.Chart, error) {
	return m.ChartFunc(ctx, symbol, interval)
}

func TestSignalHandler_GetSignals(t *testing.T) {
	gin.SetMode(gin.TestMode)

	at := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		evaluate       func(ctx context.Context, symbol, interval string) ([]entity.Event, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: events are returned",
			url:  "/signals/AAPL?interval=1h",
			evaluate: func(ctx context.Context, symbol, interval string) ([]entity.Event, error) {
				assert.Equal(t, "AAPL", symbol)
				assert.Equal(t, "1h", interval)
				return []entity.Event{{Time: at, Kind: entity.TrendCrossUp, Strategy: entity.StrategyTrend, Price: 101.5}}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"symbol":"AAPL","interval":"1h","events":[{"time":"2024-03-01T15:00:00Z","kind":"trend_cross_up","strategy":"trend","price":101.5}]}`,
		},
		{
			name: "success: default interval and no events",
			url:  "/signals/MSFT",
			evaluate: func(ctx context.Context, symbol, interval string) ([]entity.Event, error) {
				assert.Equal(t, "15m", interval)
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"symbol":"MSFT","interval":"15m","events":[]}`,
		},
		{
			name: "failure: empty symbol",
			url:  "/signals/%20",
			evaluate: func(ctx context.Context, symbol, interval string) ([]entity.Event, error) {
				return nil, usecase.ErrEmptySymbol
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"symbol is required"}`,
		},
		{
			name: "failure: upstream error",
			url:  "/signals/AAPL",
			evaluate: func(ctx context.Context, symbol, interval string) ([]entity.Event, error) {
				return nil, fmt.Errorf("failed to fetch bars: %w", errors.New("timeout"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"failed to fetch bars: timeout"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewSignalHandler(&mockSignalUsecase{EvaluateFunc: tt.evaluate})

			router := gin.New()
			router.GET("/signals/:code", h.GetSignals)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestSignalHandler_GetChart(t *testing.T) {
	gin.SetMode(gin.TestMode)

	at := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	nan := math.NaN()
	chart := usecase.Chart{
		Symbol:   "AAPL",
		Interval: "1h",
		Bars: []mdentity.Bar{
			{Time: at, Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000},
			{Time: at.Add(time.Hour), Open: 101, High: 104, Low: 100, Close: 103, Volume: 1500},
		},
		Frame: indicators.Frame{
			Len: 2,
			Columns: map[string][]float64{
				indicators.ColMACD:       {nan, 1.25},
				indicators.ColMACDSignal: {nan, 1},
				indicators.ColMACDHist:   {nan, 0.25},
				indicators.ColMomentum:   {nan, -0.5},
				indicators.ColAO:         {nan, 2},
				indicators.ColVWAP:       {100.5, 101},
				indicators.ColATRBand:    {nan, 3},
			},
			Squeeze: []indicators.SqueezeLevel{indicators.SqueezeUnavailable, indicators.SqueezeMid},
		},
		Events: []entity.Event{{Time: at.Add(time.Hour), Kind: entity.PullbackUp, Strategy: entity.StrategyPullback, Price: 103}},
	}

	tests := []struct {
		name           string
		url            string
		chart          func(ctx context.Context, symbol, interval string) (usecase.Chart, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: rows carry indicators and unavailable values are null",
			url:  "/chart/AAPL?interval=1h",
			chart: func(ctx context.Context, symbol, interval string) (usecase.Chart, error) {
				assert.Equal(t, "AAPL", symbol)
				assert.Equal(t, "1h", interval)
				return chart, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"symbol":"AAPL","interval":"1h","rows":[
				{"time":"2024-03-01T15:00:00Z","open":100,"high":102,"low":99,"close":101,"volume":1000,
				 "macd":null,"macd_signal":null,"macd_hist":null,"momentum":null,"ao":null,
				 "wave_a_fast":null,"wave_a_slow":null,"vwap":100.5,"vwap_upper":null,"vwap_lower":null,"atr1":null},
				{"time":"2024-03-01T16:00:00Z","open":101,"high":104,"low":100,"close":103,"volume":1500,
				 "macd":1.25,"macd_signal":1,"macd_hist":0.25,"momentum":-0.5,"ao":2,"squeeze":"mid",
				 "wave_a_fast":null,"wave_a_slow":null,"vwap":101,"vwap_upper":null,"vwap_lower":null,"atr1":3}],
				"events":[{"time":"2024-03-01T16:00:00Z","kind":"pullback_up","strategy":"pullback","price":103}]}`,
		},
		{
			name: "success: default interval and empty series",
			url:  "/chart/MSFT",
			chart: func(ctx context.Context, symbol, interval string) (usecase.Chart, error) {
				assert.Equal(t, "15m", interval)
				return usecase.Chart{Symbol: symbol, Interval: interval}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"symbol":"MSFT","interval":"15m","rows":[],"events":[]}`,
		},
		{
			name: "failure: empty symbol",
			url:  "/chart/%20",
			chart: func(ctx context.Context, symbol, interval string) (usecase.Chart, error) {
				return usecase.Chart{}, usecase.ErrEmptySymbol
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"symbol is required"}`,
		},
		{
			name: "failure: upstream error",
			url:  "/chart/AAPL",
			chart: func(ctx context.Context, symbol, interval string) (usecase.Chart, error) {
				return usecase.Chart{}, fmt.Errorf("failed to fetch bars: %w", errors.New("timeout"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"failed to fetch bars: timeout"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewSignalHandler(&mockSignalUsecase{ChartFunc: tt.chart})

			router := gin.New()
			router.GET("/chart/:code", h.GetChart)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
