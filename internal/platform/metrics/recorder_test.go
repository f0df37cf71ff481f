package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/marketdata/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestRecorder_Counters(t *testing.T) {
	t.Parallel()

	r := New()
	r.ScoreRunFinished(21, 2, 3*time.Second)
	r.SignalEmitted("ripster", "SignalUp")
	r.SignalEmitted("ripster", "SignalUp")
	r.ScanFinished(10, 1, time.Second)
	r.TradeOpened("long", "ripster")
	r.TradeClosed("long", "Target achieved")

	assert.Equal(t, 21.0, testutil.ToFloat64(r.scoreRuns.WithLabelValues("scored")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.scoreRuns.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.signalsEmitted.WithLabelValues("ripster", "SignalUp")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.scans.WithLabelValues("scanned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.tradesOpened.WithLabelValues("long", "ripster")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.tradesClosed.WithLabelValues("long", "Target achieved")))
}

func TestRecorder_IndependentRegistries(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.SignalEmitted("squeeze", "SignalDown")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.signalsEmitted.WithLabelValues("squeeze", "SignalDown")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.signalsEmitted.WithLabelValues("squeeze", "SignalDown")))
}

type stubProvider struct {
	err error
}

func (s stubProvider) GetBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]entity.Bar, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []entity.Bar{{Symbol: symbol, Interval: interval}}, nil
}

func TestInstrumentedBarProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantErrors float64
	}{
		{name: "success: call recorded", err: nil, wantErrors: 0},
		{name: "success: no data is not a failure", err: usecase.ErrNoData, wantErrors: 0},
		{name: "failure: provider error counted", err: errors.New("timeout"), wantErrors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := New()
			p := InstrumentBarProvider(stubProvider{err: tt.err}, r)
			_, err := p.GetBars(context.Background(), "AAPL", "1d", time.Time{}, time.Time{})
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantErrors, testutil.ToFloat64(r.providerErrors.WithLabelValues("1d")))
			assert.Equal(t, 1, testutil.CollectAndCount(r.providerLatency))
		})
	}
}

func TestRecorder_HandlerAndMiddleware(t *testing.T) {
	t.Parallel()

	r := New()
	engine := gin.New()
	engine.Use(r.GinMiddleware())
	engine.GET("/scores/:code/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/metrics", gin.WrapH(r.Handler()))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scores/AAPL/live", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/scores/:code/live", "GET", "200")))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stock_signals_http_requests_total")
}
