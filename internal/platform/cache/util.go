package cache

import (
	"time"

	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
)

// IntradayTTL は日中足のキャッシュ有効期間です。
const IntradayTTL = 5 * time.Minute

// marketLocation は日足確定の基準となるタイムゾーンです。
var marketLocation = loadLocation("America/New_York", -5*60*60)

func loadLocation(name string, fallbackOffset int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, fallbackOffset)
	}
	return loc
}

// TimeUntilNext8AM は now から次の午前8時（ニューヨーク時間）までの期間を返します。
func TimeUntilNext8AM(now time.Time) time.Duration {
	local := now.In(marketLocation)
	next8am := time.Date(local.Year(), local.Month(), local.Day(), 8, 0, 0, 0, marketLocation)

	// 今日の午前8時が既に過ぎている場合は翌日の午前8時を使用
	if !local.Before(next8am) {
		next8am = next8am.AddDate(0, 0, 1)
	}
	return next8am.Sub(local)
}

// TTLFor は時間足ごとのキャッシュ有効期間を返します。
// 日中足は5分、日足以上は次の午前8時（ニューヨーク時間）までです。
func TTLFor(interval string, now time.Time) time.Duration {
	if mdentity.IsIntraday(interval) {
		return IntradayTTL
	}
	return TimeUntilNext8AM(now)
}
