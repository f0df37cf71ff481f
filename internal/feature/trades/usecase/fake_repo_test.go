package usecase_test

import (
	"context"
	"sync"
	"time"

	"stock_signals/internal/feature/trades/domain/entity"
	"stock_signals/internal/feature/trades/usecase"
)

// fakeRepo はPositionRepositoryのインメモリ実装です。
// WithinTx はエラー時にスナップショットへ戻すことでロールバックを再現します。
type fakeRepo struct {
	mu        sync.Mutex
	rows      []entity.Position
	nextID    uint
	CreateErr error
	ListErr   error
}

func (r *fakeRepo) WithinTx(ctx context.Context, fn func(store usecase.PositionStore) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := append([]entity.Position(nil), r.rows...)
	if err := fn(&fakeStore{r: r}); err != nil {
		r.rows = snapshot
		return err
	}
	return nil
}

func (r *fakeRepo) List(ctx context.Context, f usecase.Filter) ([]entity.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	var out []entity.Position
	for _, p := range r.rows {
		if f.Symbol != "" && p.Symbol != f.Symbol {
			continue
		}
		if f.Interval != "" && p.Interval != f.Interval {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.BackTesting != nil && p.BackTesting != *f.BackTesting {
			continue
		}
		if f.RunID != "" && p.RunID != f.RunID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// all はテスト用に全行のコピーを返します。
func (r *fakeRepo) all() []entity.Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Position(nil), r.rows...)
}

type fakeStore struct {
	r *fakeRepo
}

func (s *fakeStore) FindOngoing(ctx context.Context, key entity.Key) (*entity.Position, error) {
	for i := len(s.r.rows) - 1; i >= 0; i-- {
		p := s.r.rows[i]
		if p.Key() == key && p.IsOngoing() {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ExistsEntry(ctx context.Context, key entity.Key, entryTime time.Time) (bool, error) {
	for _, p := range s.r.rows {
		if p.Key() == key && p.EntryTime.Equal(entryTime) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Create(ctx context.Context, p *entity.Position) error {
	if s.r.CreateErr != nil {
		return s.r.CreateErr
	}
	s.r.nextID++
	p.ID = s.r.nextID
	s.r.rows = append(s.r.rows, *p)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, p *entity.Position) error {
	for i := range s.r.rows {
		if s.r.rows[i].ID == p.ID {
			s.r.rows[i] = *p
			return nil
		}
	}
	return nil
}
