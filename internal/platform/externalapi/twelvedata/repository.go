package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/marketdata/usecase"
	"stock_signals/internal/platform/externalapi/twelvedata/dto"
)

// 時間足の変換表。Twelve Data は 90m と 5d を提供しません。
var intervalMap = map[string]string{
	entity.Interval15m: "15min",
	entity.Interval30m: "30min",
	entity.Interval1h:  "1h",
	entity.Interval1d:  "1day",
	entity.Interval1wk: "1week",
}

const dateTimeLayout = "2006-01-02 15:04:05"

// TwelveDataMarket はTwelve Data外部APIからバーを取得するBarProvider実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

// TwelveDataMarketがBarProviderを実装していることをコンパイル時に検証します。
var _ usecase.BarProvider = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client, now: time.Now}
}

// GetBars はTwelve Data APIから [start, end] の時系列を取得し、時刻の昇順で返します。
// datetime はバーの開始時刻なので終値時刻に変換し、未確定のバーは除外します。
func (t *TwelveDataMarket) GetBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]entity.Bar, error) {
	tdInterval, ok := intervalMap[interval]
	if !ok {
		return nil, fmt.Errorf("twelvedata %s: %w", interval, usecase.ErrUnsupportedInterval)
	}

	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", tdInterval)
	q.Set("start_date", start.UTC().Format(dateTimeLayout))
	q.Set("end_date", end.UTC().Format(dateTimeLayout))
	q.Set("timezone", "UTC")
	q.Set("outputsize", strconv.Itoa(usecase.MaxOutputSize))
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	// URLを生成
	u := fmt.Sprintf("%s/time_series?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		// 期間内にデータがない場合は 400 + "No data is available" が返る
		if strings.Contains(strings.ToLower(body.Message), "no data") {
			return nil, usecase.ErrNoData
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}
	if len(body.Values) == 0 {
		return nil, usecase.ErrNoData
	}

	bars := make([]entity.Bar, 0, len(body.Values))
	for _, v := range body.Values {
		b, err := toBar(v)
		if err != nil {
			return nil, err
		}
		b.Symbol = symbol
		b.Interval = interval
		b.Time = entity.CloseTime(b.Time, interval)
		bars = append(bars, b)
	}

	// APIは新しい順で返すため昇順に並べ替え、重複時刻を除去
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && out[len(out)-1].Time.Equal(b.Time) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	out = entity.ClosedOnly(out, t.now())
	if len(out) == 0 {
		return nil, usecase.ErrNoData
	}
	return out, nil
}

func toBar(v dto.TimeSeriesValue) (entity.Bar, error) {
	// タイムスタンプをパース
	tm, err := time.Parse(dateTimeLayout, v.Datetime)
	if err != nil {
		tm, err = time.Parse("2006-01-02", v.Datetime)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
	}
	o, err := strconv.ParseFloat(v.Open, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse open %q: %w", v.Open, err)
	}
	h, err := strconv.ParseFloat(v.High, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse high %q: %w", v.High, err)
	}
	l, err := strconv.ParseFloat(v.Low, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse low %q: %w", v.Low, err)
	}
	c, err := strconv.ParseFloat(v.Close, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse close %q: %w", v.Close, err)
	}
	// 為替・指数は出来高を返さない
	var vol float64
	if v.Volume != "" {
		vol, err = strconv.ParseFloat(v.Volume, 64)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
	}
	return entity.Bar{Time: tm.UTC(), Open: o, High: h, Low: l, Close: c, Volume: vol}, nil
}
