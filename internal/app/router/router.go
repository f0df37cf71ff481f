// Package router はHTTPルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	"stock_signals/internal/app/di"
	healthhandler "stock_signals/internal/platform/http/handler"
	jwtmw "stock_signals/internal/platform/jwt"
	"stock_signals/internal/platform/logger"
	"stock_signals/internal/platform/metrics"
	"stock_signals/internal/platform/ws"
)

// NewRouter は全エンドポイントを登録した gin.Engine を返します。
func NewRouter(h di.Handlers, rec *metrics.Recorder, hub *ws.Hub, checks map[string]healthhandler.Check) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(), rec.GinMiddleware())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", healthhandler.Health)
	r.HEAD("/healthz", healthhandler.Health)
	r.OPTIONS("/healthz", healthhandler.Health)
	r.GET("/readyz", healthhandler.Ready(checks))
	r.GET("/metrics", gin.WrapH(rec.Handler()))
	r.GET("/ws/signals", hub.Serve)

	// ログイン（JWT 発行）
	r.POST("/login", h.Auth.Login)

	r.GET("/symbols", h.Symbols.List)
	r.GET("/bars/:code", h.Bars.GetBars)
	r.GET("/scores", h.Scores.List)
	r.POST("/scores/run", h.Scores.Run)
	r.GET("/scores/:code/live", h.Scores.Live)
	r.GET("/signals/:code", h.Signals.GetSignals)
	r.GET("/chart/:code", h.Signals.GetChart)
	r.GET("/trades", h.Trades.List)

	// 認証必須のルート
	// → リクエストヘッダーに operator ロールの JWT が必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.POST("/instruments", h.Scores.AddInstrument)
		auth.DELETE("/instruments/:code", h.Scores.RemoveInstrument)
		auth.DELETE("/scores/old", h.Scores.PurgeOld)
		// バックテストはポジション行を書き込むため operator のみ
		auth.POST("/backtest", h.Trades.Backtest)
	}

	return r
}

// NewWorkerRouter は detached モードの worker 用ルーターです。
// ジョブが配信するイベントとメトリクスを同じプロセスから公開します。
func NewWorkerRouter(rec *metrics.Recorder, hub *ws.Hub, checks map[string]healthhandler.Check) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(), rec.GinMiddleware())

	r.GET("/healthz", healthhandler.Health)
	r.GET("/readyz", healthhandler.Ready(checks))
	r.GET("/metrics", gin.WrapH(rec.Handler()))
	r.GET("/ws/signals", hub.Serve)

	return r
}
