package progress

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/delve/internal/game/hooks"
)

type mockStore struct {
	mu     sync.Mutex
	saved  []Event
	failed int
	err    error
}

func (m *mockStore) SaveEvents(_ context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		m.failed++
		return m.err
	}
	m.saved = append(m.saved, events...)
	return nil
}

func TestLedger_Totals(t *testing.T) {
	t.Parallel()

	l := NewLedger("run-1", nil)
	l.Record(hooks.ProgressEvent{UnitID: 1, Kind: hooks.ProgressDamageDealt, Amount: 15})
	l.Record(hooks.ProgressEvent{UnitID: 1, Kind: hooks.ProgressDamageDealt, Amount: 7})
	l.Record(hooks.ProgressEvent{UnitID: 1, Kind: hooks.ProgressKills, Amount: 1})
	l.Record(hooks.ProgressEvent{UnitID: 2, Kind: hooks.ProgressDeaths, Amount: 1})
	l.Record(hooks.ProgressEvent{UnitID: 2, Kind: hooks.ProgressHealing, Amount: 0})

	assert.Equal(t, Totals{DamageDealt: 22, Kills: 1}, l.Totals(1))
	assert.Equal(t, Totals{Deaths: 1}, l.Totals(2))
	assert.Equal(t, Totals{}, l.Totals(3))
	assert.Equal(t, []uint32{1, 2}, l.Units())
	assert.Equal(t, 4, l.Pending(), "zero amounts are dropped")
}

func TestLedger_Flush(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	l := NewLedger("run-2", store)
	l.Record(hooks.ProgressEvent{UnitID: 1, Kind: hooks.ProgressGold, Amount: 5})
	l.Record(hooks.ProgressEvent{UnitID: 1, Kind: hooks.ProgressXP, Amount: 10})

	require.NoError(t, l.Flush(context.Background()))
	assert.Zero(t, l.Pending())
	require.Len(t, store.saved, 2)
	assert.Equal(t, Event{RunID: "run-2", UnitID: 1, Kind: hooks.ProgressGold, Amount: 5}, store.saved[0])

	require.NoError(t, l.Flush(context.Background()), "empty flush is a no-op")
	assert.Len(t, store.saved, 2)
}

func TestLedger_FlushFailureKeepsEvents(t *testing.T) {
	t.Parallel()

	store := &mockStore{err: errors.New("connection refused")}
	l := NewLedger("run-3", store)
	l.Record(hooks.ProgressEvent{UnitID: 4, Kind: hooks.ProgressKills, Amount: 1})

	err := l.Flush(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.err)
	assert.Equal(t, 1, l.Pending())

	store.err = nil
	require.NoError(t, l.Flush(context.Background()))
	assert.Len(t, store.saved, 1)
	assert.Equal(t, Totals{Kills: 1}, l.Totals(4), "totals are not double counted")
}

func TestLedger_ConcurrentRecord(t *testing.T) {
	t.Parallel()

	l := NewLedger("run-4", nil)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				l.Record(hooks.ProgressEvent{UnitID: 1, Kind: hooks.ProgressDamageDealt, Amount: 1})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), l.Totals(1).DamageDealt)
}
