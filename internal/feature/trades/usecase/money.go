package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"stock_signals/internal/feature/trades/domain/entity"
)

// Stop-loss and target multipliers relative to the entry price.
var (
	longStoploss  = decimal.RequireFromString("0.9")
	longTarget    = decimal.RequireFromString("1.3")
	shortStoploss = decimal.RequireFromString("1.1")
	shortTarget   = decimal.RequireFromString("0.7")
	hundred       = decimal.NewFromInt(100)
)

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Levels returns the stop-loss and target for an entry, rounded to cents.
func Levels(dir entity.Direction, entry float64) (stoploss, target float64) {
	p := decimal.NewFromFloat(entry)
	if dir == entity.Short {
		return round2(p.Mul(shortStoploss)), round2(p.Mul(shortTarget))
	}
	return round2(p.Mul(longStoploss)), round2(p.Mul(longTarget))
}

// settle fills the exit fields and P&L of p.
// pnl is per unit, ROI is quantity·pnl and ProfitPct is ROI over capital.
func settle(p *entity.Position, exit float64, remark string, at time.Time) {
	entry := decimal.NewFromFloat(p.EntryPrice)
	out := decimal.NewFromFloat(exit)
	pnl := out.Sub(entry)
	if p.Direction == entity.Short {
		pnl = entry.Sub(out)
	}
	pnl = pnl.Round(2)
	roi := pnl.Mul(decimal.NewFromFloat(p.Quantity))

	p.PnL = pnl.InexactFloat64()
	p.ROI = round2(roi)
	if p.Capital > 0 {
		p.ProfitPct = round2(roi.Div(decimal.NewFromFloat(p.Capital)).Mul(hundred))
	}
	p.ExitPrice = &exit
	exitTime := at
	p.ExitTime = &exitTime
	p.Status = entity.StatusClosed
	p.Remarks = remark
}
