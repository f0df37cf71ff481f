package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdentity "stock_signals/internal/feature/marketdata/domain/entity"
	"stock_signals/internal/feature/scoring/domain/entity"
	symentity "stock_signals/internal/feature/symbollist/domain/entity"
	symusecase "stock_signals/internal/feature/symbollist/usecase"
)

var testNow = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

// mockBars はBarsFetcherのモック実装です。
type mockBars struct {
	RecentFunc func(ctx context.Context, symbol, interval string) ([]mdentity.Bar, error)

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func (m *mockBars) Recent(ctx context.Context, symbol, interval string) ([]mdentity.Bar, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, symbol, interval)
	}
	return nil, nil
}

// fakeScores はScoreRepositoryのインメモリ実装です。
type fakeScores struct {
	mu        sync.Mutex
	prev      map[string]*entity.TickerScore
	upserts   []entity.TickerScore
	UpsertErr map[string]error
	deleted   map[string]int64
	cutoff    time.Time
}

func newFakeScores() *fakeScores {
	return &fakeScores{prev: map[string]*entity.TickerScore{}, UpsertErr: map[string]error{}, deleted: map[string]int64{}}
}

func (f *fakeScores) Upsert(ctx context.Context, s *entity.TickerScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.UpsertErr[s.Symbol]; err != nil {
		return err
	}
	f.upserts = append(f.upserts, *s)
	return nil
}

func (f *fakeScores) Previous(ctx context.Context, symbol string, before time.Time) (*entity.TickerScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prev[symbol], nil
}

func (f *fakeScores) Latest(ctx context.Context, symbol string) ([]entity.TickerScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts, nil
}

func (f *fakeScores) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 2, nil
}

func (f *fakeScores) SoftDelete(ctx context.Context, symbol string) (int64, error) {
	return f.deleted[symbol], nil
}

// mockDirectory はSymbolDirectoryのモック実装です。
type mockDirectory struct {
	symbols       map[string]symentity.Symbol
	AddErr        error
	DeactivateErr error

	addCalls        int
	deactivateCalls int
}

func (m *mockDirectory) Get(ctx context.Context, code string) (*symentity.Symbol, error) {
	s, ok := m.symbols[code]
	if !ok {
		return nil, symusecase.ErrSymbolNotFound
	}
	return &s, nil
}

func (m *mockDirectory) ListActiveSymbols(ctx context.Context) ([]symentity.Symbol, error) {
	out := make([]symentity.Symbol, 0, len(m.symbols))
	for i := 0; i < len(m.symbols); i++ {
		out = append(out, m.symbols[fmt.Sprintf("S%02d", i)])
	}
	return out, nil
}

func (m *mockDirectory) Add(ctx context.Context, s *symentity.Symbol) error {
	m.addCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	s.ID = 42
	s.IsActive = true
	return nil
}

func (m *mockDirectory) Deactivate(ctx context.Context, code string) error {
	m.deactivateCalls++
	return m.DeactivateErr
}

type mockRecorder struct {
	scored, failed int
	calls          int
}

func (m *mockRecorder) ScoreRunFinished(scored, failed int, elapsed time.Duration) {
	m.scored, m.failed = scored, failed
	m.calls++
}

func newScoring(bars *mockBars, repo *fakeScores, dir *mockDirectory, rec Recorder) *ScoringUsecase {
	u := NewScoringUsecase(bars, repo, dir, rec, Config{})
	u.now = func() time.Time { return testNow }
	return u
}

// trendingFor は 15m と 1d のみ上昇トレンドを返し、1wk は取得エラーとなるフェッチャーです。
func trendingFor(ctx context.Context, symbol, interval string) ([]mdentity.Bar, error) {
	switch interval {
	case mdentity.Interval15m, mdentity.Interval1d:
		return compounding(260, 1.01), nil
	case mdentity.Interval1wk:
		return nil, errors.New("upstream timeout")
	}
	return nil, nil
}

func TestScoringUsecase_Score(t *testing.T) {
	t.Parallel()

	dir := &mockDirectory{symbols: map[string]symentity.Symbol{
		"AAPL": {Code: "AAPL", Name: "Apple Inc.", Sector: "Technology", CategoryID: 1},
	}}
	u := newScoring(&mockBars{RecentFunc: trendingFor}, newFakeScores(), dir, nil)

	ts, err := u.Score(context.Background(), " aapl ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", ts.Symbol)
	assert.Equal(t, "Apple Inc.", ts.Name)
	assert.Equal(t, "Technology", ts.Sector)
	assert.Equal(t, 30, ts.LongScore)
	assert.Equal(t, 15, ts.ShortScore)
	assert.Equal(t, entity.RankB, ts.LongRank)
	assert.Equal(t, entity.RankA, ts.ShortRank)
	assert.Equal(t, entity.TrendUp, ts.Trend)
	assert.Len(t, ts.Timeframes, len(entity.All))
	assert.True(t, ts.Timeframe(mdentity.Interval1d).Available)
	assert.False(t, ts.Timeframe(mdentity.Interval1wk).Available, "fetch error counts as unavailable")
	assert.False(t, ts.Timeframe(mdentity.Interval30m).Available, "empty series counts as unavailable")

	last, _ := mdentity.Last(compounding(260, 1.01))
	assert.InDelta(t, last.Close, ts.CurrentPrice, 1e-9)
	assert.Equal(t, testNow, ts.AsOf)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), ts.Day)
}

func TestScoringUsecase_Score_UnknownSymbol(t *testing.T) {
	t.Parallel()

	u := newScoring(&mockBars{}, newFakeScores(), &mockDirectory{}, nil)

	ts, err := u.Score(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Equal(t, "XYZ", ts.Name)
	assert.Equal(t, 0, ts.LongScore)
	assert.Equal(t, entity.RankB, ts.LongRank)
	assert.Equal(t, entity.TrendNone, ts.Trend)

	_, err = u.Score(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptySymbol)
}

func TestScoringUsecase_ScoreAndStore(t *testing.T) {
	t.Parallel()

	repo := newFakeScores()
	repo.prev["AAPL"] = &entity.TickerScore{Symbol: "AAPL", LongScore: 10}
	u := newScoring(&mockBars{RecentFunc: trendingFor}, repo, &mockDirectory{}, nil)

	ts, err := u.ScoreAndStore(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, entity.ScoreChange{Direction: entity.TrendUp, Delta: 20}, ts.ScoreChange)
	require.Len(t, repo.upserts, 1)
	assert.Equal(t, ts.ScoreChange, repo.upserts[0].ScoreChange)
}

func TestScoringUsecase_ScoreAll(t *testing.T) {
	t.Parallel()

	symbols := map[string]symentity.Symbol{}
	for i := 0; i < 23; i++ {
		code := fmt.Sprintf("S%02d", i)
		symbols[code] = symentity.Symbol{Code: code, Name: code, CategoryID: 1}
	}
	bars := &mockBars{RecentFunc: func(ctx context.Context, symbol, interval string) ([]mdentity.Bar, error) {
		if symbol == "S03" && interval == mdentity.Interval1wk {
			panic("malformed payload")
		}
		time.Sleep(time.Millisecond)
		return compounding(60, 1.01), nil
	}}
	repo := newFakeScores()
	repo.UpsertErr["S07"] = errors.New("connection reset")
	rec := &mockRecorder{}
	u := newScoring(bars, repo, &mockDirectory{symbols: symbols}, rec)

	sum, err := u.ScoreAll(context.Background())
	require.NoError(t, err)

	// S03 は 1wk だけが panic し、残りの時間足で採点・保存される
	assert.Equal(t, RunSummary{Scored: 22, Failed: 1}, sum)
	assert.Len(t, repo.upserts, 22)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 22, rec.scored)
	assert.Equal(t, 1, rec.failed)
	for _, s := range repo.upserts {
		if s.Symbol != "S03" {
			continue
		}
		assert.False(t, s.Timeframe(mdentity.Interval1wk).Available)
		assert.True(t, s.Timeframe(mdentity.Interval1d).Available)
	}
	assert.LessOrEqual(t, bars.maxInFlight.Load(), int64(DefaultBatchSize), "at most one batch in flight")
}

func TestScoringUsecase_Score_PanicInOneTimeframe(t *testing.T) {
	t.Parallel()

	bars := &mockBars{RecentFunc: func(ctx context.Context, symbol, interval string) ([]mdentity.Bar, error) {
		if interval == mdentity.Interval15m {
			panic("truncated series")
		}
		return trendingFor(ctx, symbol, interval)
	}}
	u := newScoring(bars, newFakeScores(), &mockDirectory{}, nil)

	ts, err := u.Score(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.False(t, ts.Timeframe(mdentity.Interval15m).Available)
	assert.True(t, ts.Timeframe(mdentity.Interval1d).Available)
	assert.Equal(t, 15, ts.LongScore)
	last, _ := mdentity.Last(compounding(260, 1.01))
	assert.InDelta(t, last.Close, ts.CurrentPrice, 1e-9)
}

func TestScoringUsecase_ScoreAll_Cancelled(t *testing.T) {
	t.Parallel()

	symbols := map[string]symentity.Symbol{"S00": {Code: "S00"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := newFakeScores()
	u := newScoring(&mockBars{}, repo, &mockDirectory{symbols: symbols}, nil)

	sum, err := u.ScoreAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, RunSummary{}, sum)
	assert.Empty(t, repo.upserts)
}

func TestScoringUsecase_Purge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		days       int
		wantCutoff time.Time
		wantErr    error
	}{
		{name: "success: zero uses the default retention", days: 0, wantCutoff: testNow.Add(-3 * 24 * time.Hour)},
		{name: "success: explicit window", days: 7, wantCutoff: testNow.Add(-7 * 24 * time.Hour)},
		{name: "failure: negative window", days: -1, wantErr: ErrInvalidRetention},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeScores()
			u := newScoring(&mockBars{}, repo, &mockDirectory{}, nil)

			n, err := u.Purge(context.Background(), tt.days)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)
			assert.Equal(t, tt.wantCutoff, repo.cutoff)
		})
	}
}

func TestScoringUsecase_RemoveInstrument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		symbol        string
		deleted       int64
		deactivateErr error
		wantErr       error
	}{
		{name: "success: snapshots deleted and symbol deactivated", symbol: "AAPL", deleted: 3},
		{name: "success: snapshots deleted for a symbol outside the universe", symbol: "OLD", deleted: 2, deactivateErr: symusecase.ErrSymbolNotFound},
		{name: "failure: nothing to remove", symbol: "XYZ", deactivateErr: symusecase.ErrSymbolNotFound, wantErr: symusecase.ErrSymbolNotFound},
		{name: "failure: empty symbol", symbol: "", wantErr: ErrEmptySymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeScores()
			repo.deleted[tt.symbol] = tt.deleted
			dir := &mockDirectory{DeactivateErr: tt.deactivateErr}
			u := newScoring(&mockBars{}, repo, dir, nil)

			err := u.RemoveInstrument(context.Background(), tt.symbol)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, dir.deactivateCalls)
		})
	}
}

func TestScoringUsecase_AddInstrument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		code        string
		category    int
		addErr      error
		wantErr     error
		wantAdd     int
		wantUpserts int
	}{
		{name: "success: registers and scores", code: "nvda", category: 1, wantAdd: 1, wantUpserts: 1},
		{name: "failure: category out of range", code: "NVDA", category: 0, wantErr: symusecase.ErrInvalidCategory},
		{name: "failure: category above range", code: "NVDA", category: 6, wantErr: symusecase.ErrInvalidCategory},
		{name: "failure: already tracked", code: "AAPL", category: 1, addErr: symusecase.ErrSymbolExists, wantErr: symusecase.ErrSymbolExists, wantAdd: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeScores()
			dir := &mockDirectory{AddErr: tt.addErr}
			u := newScoring(&mockBars{RecentFunc: trendingFor}, repo, dir, nil)

			ts, err := u.AddInstrument(context.Background(), tt.code, tt.category)
			assert.Equal(t, tt.wantAdd, dir.addCalls)
			assert.Len(t, repo.upserts, tt.wantUpserts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "NVDA", ts.Symbol)
			assert.Equal(t, tt.category, ts.CategoryID)
			assert.Equal(t, 30, ts.LongScore)
		})
	}
}
