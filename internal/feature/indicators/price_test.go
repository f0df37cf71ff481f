package indicators_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"stock_signals/internal/feature/indicators"
	"stock_signals/internal/feature/marketdata/domain/entity"
)

func TestTrueRangeAndATR(t *testing.T) {
	t.Parallel()

	bars := []entity.Bar{
		{High: 10, Low: 8, Close: 9},
		{High: 12, Low: 10, Close: 11},
		{High: 11, Low: 9, Close: 10},
		{High: 13, Low: 10, Close: 12},
	}

	assertSeries(t, []float64{nan, 3, 2, 3}, indicators.TrueRange(bars))
	assertSeries(t, []float64{nan, nan, 2.5, 2.75}, indicators.ATR(bars, 2))
	assertSeries(t, []float64{9, 11, 10, 11.5}, indicators.HL2(bars))
}

func TestATR_ShortInput(t *testing.T) {
	t.Parallel()

	got := indicators.ATR([]entity.Bar{{High: 1, Low: 0, Close: 1}}, 14)
	assert.Len(t, got, 1)
	assert.True(t, math.IsNaN(got[0]))
	assert.Empty(t, indicators.TrueRange(nil))
}

func TestTrueRange_Gaps(t *testing.T) {
	t.Parallel()

	bars := []entity.Bar{
		{High: 21, Low: 19, Close: 20},
		// ギャップダウン: 前日終値との差の絶対値が採用される
		{High: 12, Low: 10, Close: 11},
		// ギャップアップ
		{High: 18, Low: 17, Close: 17.5},
	}

	assertSeries(t, []float64{nan, 10, 7}, indicators.TrueRange(bars))
}
