// Package metrics implements the pipeline recorders on top of Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	scoreusecase "stock_signals/internal/feature/scoring/usecase"
	signalusecase "stock_signals/internal/feature/signals/usecase"
	tradeusecase "stock_signals/internal/feature/trades/usecase"
)

const namespace = "stock_signals"

// Recorder implements the scoring, signal and trade recorders using Prometheus.
// Each Recorder owns its registry so tests can create independent instances.
type Recorder struct {
	registry *prometheus.Registry

	scoreRuns        *prometheus.CounterVec
	scoreRunDuration prometheus.Histogram
	signalsEmitted   *prometheus.CounterVec
	scans            *prometheus.CounterVec
	scanDuration     prometheus.Histogram
	tradesOpened     *prometheus.CounterVec
	tradesClosed     *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	providerErrors   *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

var (
	_ scoreusecase.Recorder  = (*Recorder)(nil)
	_ signalusecase.Recorder = (*Recorder)(nil)
	_ tradeusecase.Recorder  = (*Recorder)(nil)
)

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		scoreRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "tickers_total",
			Help:      "Tickers processed by score runs, by outcome",
		}, []string{"outcome"}),
		scoreRunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full score run",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		signalsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signals",
			Name:      "emitted_total",
			Help:      "Signal events emitted by strategy and kind",
		}, []string{"strategy", "kind"}),
		scans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signals",
			Name:      "scanned_total",
			Help:      "Symbols scanned, by outcome",
		}, []string{"outcome"}),
		scanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "signals",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a full signal scan",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		tradesOpened: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trades",
			Name:      "opened_total",
			Help:      "Positions opened by direction and indicator",
		}, []string{"direction", "indicator"}),
		tradesClosed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trades",
			Name:      "closed_total",
			Help:      "Positions closed by direction and remark",
		}, []string{"direction", "remark"}),
		providerLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "provider_duration_seconds",
			Help:      "Latency of market data provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"interval"}),
		providerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "provider_errors_total",
			Help:      "Failed market data provider calls",
		}, []string{"interval"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route", "method"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ScoreRunFinished records the outcome of a score run.
func (r *Recorder) ScoreRunFinished(scored, failed int, elapsed time.Duration) {
	r.scoreRuns.WithLabelValues("scored").Add(float64(scored))
	r.scoreRuns.WithLabelValues("failed").Add(float64(failed))
	r.scoreRunDuration.Observe(elapsed.Seconds())
}

// SignalEmitted records one emitted signal event.
func (r *Recorder) SignalEmitted(strategy, kind string) {
	r.signalsEmitted.WithLabelValues(strategy, kind).Inc()
}

// ScanFinished records the outcome of a signal scan.
func (r *Recorder) ScanFinished(scanned, failed int, elapsed time.Duration) {
	r.scans.WithLabelValues("scanned").Add(float64(scanned))
	r.scans.WithLabelValues("failed").Add(float64(failed))
	r.scanDuration.Observe(elapsed.Seconds())
}

// TradeOpened records an opened position.
func (r *Recorder) TradeOpened(direction, indicator string) {
	r.tradesOpened.WithLabelValues(direction, indicator).Inc()
}

// TradeClosed records a closed position.
func (r *Recorder) TradeClosed(direction, remark string) {
	r.tradesClosed.WithLabelValues(direction, remark).Inc()
}

// ProviderCall records the latency of one provider call.
func (r *Recorder) ProviderCall(interval string, elapsed time.Duration, err error) {
	r.providerLatency.WithLabelValues(interval).Observe(elapsed.Seconds())
	if err != nil {
		r.providerErrors.WithLabelValues(interval).Inc()
	}
}
