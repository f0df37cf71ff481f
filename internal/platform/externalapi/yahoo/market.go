package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/marketdata/usecase"
)

// Yahoo は 1h を "60m" として受け付けます。他の時間足はそのまま渡せます。
var intervalMap = map[string]string{
	entity.Interval15m: "15m",
	entity.Interval30m: "30m",
	entity.Interval90m: "90m",
	entity.Interval1h:  "60m",
	entity.Interval1d:  "1d",
	entity.Interval5d:  "5d",
	entity.Interval1wk: "1wk",
}

// YahooMarket はYahoo Financeのチャートエンドポイントからバーを取得するBarProvider実装です。
type YahooMarket struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

var _ usecase.BarProvider = (*YahooMarket)(nil)

// NewYahooMarket は新しい YahooMarket を作成します。
func NewYahooMarket(cfg Config, client *http.Client) *YahooMarket {
	return &YahooMarket{cfg: cfg, client: client, now: time.Now}
}

func (y *YahooMarket) ticker(symbol string) string {
	if mapped, ok := y.cfg.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// GetBars は [start, end] の確定済みバーを時刻の昇順で返します。
// Yahoo のタイムスタンプはバーの始値時刻なので、時間足の長さを足して終値時刻にします。
// 値が null のスロット（休場など）と、終値時刻が現在より後の未確定バーは除外します。
func (y *YahooMarket) GetBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]entity.Bar, error) {
	yInterval, ok := intervalMap[interval]
	if !ok {
		return nil, fmt.Errorf("yahoo %s: %w", interval, usecase.ErrUnsupportedInterval)
	}

	q := url.Values{}
	q.Set("interval", yInterval)
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("includePrePost", "false")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		strings.TrimRight(y.cfg.BaseURL, "/"), url.PathEscape(y.ticker(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", y.cfg.UserAgent)

	res, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	// 上場廃止・不明なティッカーは 404 で返る
	if res.StatusCode == http.StatusNotFound {
		return nil, usecase.ErrNoData
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo http %d", res.StatusCode)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, usecase.ErrNoData
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, usecase.ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]entity.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, ok1 := at(quote.Open, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		c, ok4 := at(quote.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		v, _ := at(quote.Volume, i)
		bars = append(bars, entity.Bar{
			Symbol:   symbol,
			Interval: interval,
			Time:     entity.CloseTime(time.Unix(ts, 0), interval),
			Open:     o,
			High:     h,
			Low:      l,
			Close:    c,
			Volume:   v,
		})
	}
	if len(bars) == 0 {
		return nil, usecase.ErrNoData
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && out[len(out)-1].Time.Equal(b.Time) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	out = entity.ClosedOnly(out, y.now())
	if len(out) == 0 {
		return nil, usecase.ErrNoData
	}
	return out, nil
}
