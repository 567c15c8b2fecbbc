package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "signals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSignal(id string) *model.Signal {
	return &model.Signal{
		ID:           id,
		Symbol:       "BTCUSDT",
		Direction:    model.Long,
		EntryPrice:   50000,
		StopLoss:     49000,
		TP1:          50500,
		TP2:          51000,
		TP3:          51500,
		Status:       model.StatusActive,
		QualityScore: 72,
		Allocation:   model.DefaultAllocation,
		EntryTime:    time.Now().Truncate(time.Second),
	}
}

func TestSQLiteStore_InsertAndLoadActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sig := sampleSignal("BTCUSDT_1_aaaa")
	require.NoError(t, s.Insert(ctx, sig))

	loaded, err := s.LoadActive(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, sig.ID, got.ID)
	assert.Equal(t, sig.Symbol, got.Symbol)
	assert.Equal(t, model.Long, got.Direction)
	assert.Equal(t, sig.EntryPrice, got.EntryPrice)
	assert.Equal(t, sig.StopLoss, got.StopLoss)
	assert.Equal(t, sig.TP3, got.TP3)
	assert.Equal(t, sig.QualityScore, got.QualityScore)
	assert.Equal(t, model.StatusActive, got.Status)
	assert.True(t, sig.EntryTime.Equal(got.EntryTime))
	assert.True(t, got.CloseTime.IsZero())
}

func TestSQLiteStore_DuplicateInsertFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleSignal("dup")))
	assert.Error(t, s.Insert(ctx, sampleSignal("dup")))
}

func TestSQLiteStore_ProgressUpdateKeepsStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sig := sampleSignal("BTCUSDT_2_bbbb")
	require.NoError(t, s.Insert(ctx, sig))

	sig.TP1Hit = true
	sig.CurrentROI = 1.75
	require.NoError(t, s.Update(ctx, sig, false))

	loaded, err := s.LoadActive(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1, "non-final update must not leave ACTIVE")
	assert.True(t, loaded[0].TP1Hit)
	assert.InDelta(t, 1.75, loaded[0].CurrentROI, 1e-9)
}

func TestSQLiteStore_FinalUpdateArchives(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sig := sampleSignal("BTCUSDT_3_cccc")
	require.NoError(t, s.Insert(ctx, sig))

	sig.TP1Hit, sig.TP2Hit, sig.TP3Hit = true, true, true
	sig.Status = model.StatusCompleted
	sig.CurrentROI = 2.0
	sig.CloseTime = time.Now().Truncate(time.Second)
	require.NoError(t, s.Update(ctx, sig, true))

	active, err := s.LoadActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	completed, err := s.LoadCompleted(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, model.StatusCompleted, completed[0].Status)
	assert.InDelta(t, 2.0, completed[0].CurrentROI, 1e-9)
	assert.True(t, sig.CloseTime.Equal(completed[0].CloseTime))
}

func TestSQLiteStore_LoadCompletedHonorsCutoff(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recent := sampleSignal("recent")
	stale := sampleSignal("stale")
	require.NoError(t, s.Insert(ctx, recent))
	require.NoError(t, s.Insert(ctx, stale))

	recent.Status = model.StatusStopped
	recent.CloseTime = time.Now()
	require.NoError(t, s.Update(ctx, recent, true))

	stale.Status = model.StatusCompleted
	stale.CloseTime = time.Now().AddDate(0, 0, -30)
	require.NoError(t, s.Update(ctx, stale, true))

	completed, err := s.LoadCompleted(ctx, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "recent", completed[0].ID)
}

func TestIsLocked(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{errors.New("SQLITE_BUSY: database busy"), true},
		{errors.New("UNIQUE constraint failed: signals.signal_id"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isLocked(tt.err), "%v", tt.err)
	}
}
