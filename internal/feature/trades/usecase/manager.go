package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock_signals/internal/feature/trades/domain/entity"
	"stock_signals/internal/shared/keylock"
)

// Goの慣例に従い、インターフェースは利用者側で定義します

// PositionStore is the transactional view of the position table.
type PositionStore interface {
	// FindOngoing returns the ongoing position for key, or nil when there is none.
	FindOngoing(ctx context.Context, key entity.Key) (*entity.Position, error)
	// ExistsEntry reports whether a position for key was already opened at entryTime.
	ExistsEntry(ctx context.Context, key entity.Key, entryTime time.Time) (bool, error)
	Create(ctx context.Context, p *entity.Position) error
	Update(ctx context.Context, p *entity.Position) error
}

// PositionRepository persists positions.
type PositionRepository interface {
	// WithinTx runs fn inside a single transaction.
	WithinTx(ctx context.Context, fn func(store PositionStore) error) error
	// List returns positions newest first. Rows are never deleted.
	List(ctx context.Context, f Filter) ([]entity.Position, error)
}

// Recorder receives lifecycle metrics.
type Recorder interface {
	TradeOpened(direction, indicator string)
	TradeClosed(direction, remark string)
}

// Manager drives the position lifecycle per (symbol, interval, direction, backtesting, run).
// It is the only writer of positions.
type Manager struct {
	repo     PositionRepository
	locks    *keylock.Striped
	recorder Recorder
}

// NewManager は新しい Manager を生成します。recorder は nil でも構いません。
func NewManager(repo PositionRepository, recorder Recorder) *Manager {
	return &Manager{repo: repo, locks: keylock.New(keylock.DefaultStripes), recorder: recorder}
}

func lockKey(k entity.Key) string {
	return strings.Join([]string{k.Symbol, k.Interval, string(k.Direction), strconv.FormatBool(k.BackTesting), k.RunID}, "|")
}

// OnSignal applies a signal and returns the positions it opened or closed.
// An empty result means the signal was a no-op for the current state.
func (m *Manager) OnSignal(ctx context.Context, sig entity.Signal) ([]entity.Position, error) {
	if err := validate(sig); err != nil {
		return nil, err
	}

	var (
		closeDir   entity.Direction
		closeNote  string
		openDir    entity.Direction
		shouldOpen bool
	)
	switch sig.Action {
	case entity.ActionSignalUp:
		closeDir, closeNote, openDir, shouldOpen = entity.Short, entity.RemarkSignalUp, entity.Long, true
	case entity.ActionSignalDown:
		closeDir, closeNote, openDir, shouldOpen = entity.Long, entity.RemarkSignalDown, entity.Short, true
	case entity.ActionWarningSignalUp:
		closeDir, closeNote = entity.Short, entity.RemarkWarningSignalUp
	case entity.ActionWarningSignalDown:
		closeDir, closeNote = entity.Long, entity.RemarkWarningSignalDown
	}

	var out []entity.Position
	closeKey := entity.Key{Symbol: sig.Symbol, Interval: sig.Interval, Direction: closeDir, BackTesting: sig.BackTesting, RunID: sig.RunID}
	closed, err := m.closeOngoing(ctx, closeKey, sig.Price, sig.Time, func(p *entity.Position) (string, bool) {
		return closeNote, !sig.Time.Before(p.EntryTime)
	})
	if err != nil {
		return nil, err
	}
	if closed != nil {
		out = append(out, *closed)
	}

	if shouldOpen {
		openKey := entity.Key{Symbol: sig.Symbol, Interval: sig.Interval, Direction: openDir, BackTesting: sig.BackTesting, RunID: sig.RunID}
		opened, err := m.open(ctx, openKey, sig)
		if err != nil {
			return out, err
		}
		if opened != nil {
			out = append(out, *opened)
		}
	}
	return out, nil
}

// OnPrice checks the ongoing position for key against its target and
// stop-loss and closes it on a hit. It returns nil when nothing was closed.
func (m *Manager) OnPrice(ctx context.Context, key entity.Key, price float64, at time.Time) (*entity.Position, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	return m.closeOngoing(ctx, key, price, at, func(p *entity.Position) (string, bool) {
		if at.Before(p.EntryTime) {
			return "", false
		}
		remark := riskRemark(p, price)
		return remark, remark != ""
	})
}

// riskRemark returns the close remark when price hits the target or stop-loss.
func riskRemark(p *entity.Position, price float64) string {
	if p.Direction == entity.Short {
		switch {
		case price <= p.Target:
			return entity.RemarkTargetAchieved
		case price >= p.Stoploss:
			return entity.RemarkStoplossTriggered
		}
		return ""
	}
	switch {
	case price >= p.Target:
		return entity.RemarkTargetAchieved
	case price <= p.Stoploss:
		return entity.RemarkStoplossTriggered
	}
	return ""
}

// closeOngoing closes the ongoing position for key when decide accepts it.
// decide returns the close remark.
func (m *Manager) closeOngoing(
	ctx context.Context,
	key entity.Key,
	price float64,
	at time.Time,
	decide func(p *entity.Position) (remark string, ok bool),
) (*entity.Position, error) {
	unlock := m.locks.Lock(lockKey(key))
	defer unlock()

	var closed *entity.Position
	err := m.repo.WithinTx(ctx, func(store PositionStore) error {
		p, err := store.FindOngoing(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to find ongoing position: %w", err)
		}
		if p == nil {
			return nil
		}
		remark, ok := decide(p)
		if !ok {
			return nil
		}
		settle(p, price, remark, at)
		if err := store.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to close position: %w", err)
		}
		closed = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if closed != nil {
		slog.Info("position closed",
			"symbol", closed.Symbol, "interval", closed.Interval, "direction", closed.Direction,
			"remarks", closed.Remarks, "pnl", closed.PnL, "back_testing", closed.BackTesting)
		if m.recorder != nil {
			m.recorder.TradeClosed(string(closed.Direction), closed.Remarks)
		}
	}
	return closed, nil
}

// open creates a position for key unless one is ongoing or one was already
// opened at the same entry time.
func (m *Manager) open(ctx context.Context, key entity.Key, sig entity.Signal) (*entity.Position, error) {
	unlock := m.locks.Lock(lockKey(key))
	defer unlock()

	var opened *entity.Position
	err := m.repo.WithinTx(ctx, func(store PositionStore) error {
		ongoing, err := store.FindOngoing(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to find ongoing position: %w", err)
		}
		if ongoing != nil {
			return nil
		}
		exists, err := store.ExistsEntry(ctx, key, sig.Time)
		if err != nil {
			return fmt.Errorf("failed to check entry: %w", err)
		}
		if exists {
			return nil
		}

		sl, target := Levels(key.Direction, sig.Price)
		p := &entity.Position{
			Symbol:      key.Symbol,
			Interval:    key.Interval,
			Direction:   key.Direction,
			BackTesting: key.BackTesting,
			RunID:       key.RunID,
			Indicator:   sig.Indicator,
			EntryPrice:  sig.Price,
			EntryTime:   sig.Time,
			Stoploss:    sl,
			Target:      target,
			Quantity:    sig.Quantity,
			Capital:     round2(decimal.NewFromFloat(sig.Quantity).Mul(decimal.NewFromFloat(sig.Price))),
			Status:      entity.StatusOngoing,
		}
		if err := store.Create(ctx, p); err != nil {
			return err
		}
		opened = p
		return nil
	})
	if errors.Is(err, ErrDuplicatePosition) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open position: %w", err)
	}
	if opened != nil {
		slog.Info("position opened",
			"symbol", opened.Symbol, "interval", opened.Interval, "direction", opened.Direction,
			"entry_price", opened.EntryPrice, "indicator", opened.Indicator, "back_testing", opened.BackTesting)
		if m.recorder != nil {
			m.recorder.TradeOpened(string(opened.Direction), opened.Indicator)
		}
	}
	return opened, nil
}

// List returns the trade book.
func (m *Manager) List(ctx context.Context, f Filter) ([]entity.Position, error) {
	ps, err := m.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return ps, nil
}

func validate(sig entity.Signal) error {
	switch {
	case strings.TrimSpace(sig.Symbol) == "":
		return ErrEmptySymbol
	case !sig.Action.Valid():
		return ErrInvalidAction
	case sig.Price <= 0:
		return ErrInvalidPrice
	case sig.Quantity <= 0:
		return ErrInvalidQuantity
	}
	return nil
}
