package usecase

import (
	"stock_signals/internal/feature/signals/domain/entity"
	tradeentity "stock_signals/internal/feature/trades/domain/entity"
)

// ActionFor maps a signal kind to the lifecycle action it triggers.
// RSI and VWAP exits only close positions; every other kind opens on its side.
func ActionFor(k entity.Kind) tradeentity.Action {
	switch k {
	case entity.RSIExitDown, entity.VWAPExitDown:
		return tradeentity.ActionWarningSignalDown
	case entity.RSIExitUp, entity.VWAPExitUp:
		return tradeentity.ActionWarningSignalUp
	}
	if k.Up() {
		return tradeentity.ActionSignalUp
	}
	return tradeentity.ActionSignalDown
}
