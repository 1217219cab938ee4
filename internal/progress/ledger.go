// Package progress aggregates progression deltas reported by the combat core
// and hands them to a persistent store in batches.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/delve/internal/game/hooks"
)

// Event is one buffered progression delta of a run.
type Event struct {
	RunID  string
	UnitID uint32
	Kind   hooks.ProgressKind
	Amount int64
}

// Store persists progression events.
type Store interface {
	SaveEvents(ctx context.Context, events []Event) error
}

// Totals are the aggregated deltas of one unit.
type Totals struct {
	Gold        int64
	XP          int64
	DamageDealt int64
	Kills       int64
	Deaths      int64
	Healing     int64
}

// Add accumulates one delta.
func (t *Totals) Add(kind hooks.ProgressKind, amount int64) {
	switch kind {
	case hooks.ProgressGold:
		t.Gold += amount
	case hooks.ProgressXP:
		t.XP += amount
	case hooks.ProgressDamageDealt:
		t.DamageDealt += amount
	case hooks.ProgressKills:
		t.Kills += amount
	case hooks.ProgressDeaths:
		t.Deaths += amount
	case hooks.ProgressHealing:
		t.Healing += amount
	}
}

// Ledger — накопитель событий прогрессии одного забега.
//
// Record never blocks on the store: events are buffered until Flush.
// Safe for concurrent use.
type Ledger struct {
	runID string
	store Store

	mu      sync.Mutex
	totals  map[uint32]*Totals
	pending []Event
}

// NewLedger creates a Ledger for a run. store may be nil: events are then
// aggregated and dropped on Flush.
func NewLedger(runID string, store Store) *Ledger {
	return &Ledger{
		runID:  runID,
		store:  store,
		totals: make(map[uint32]*Totals),
	}
}

// Record implements hooks.ProgressSink.
func (l *Ledger) Record(ev hooks.ProgressEvent) {
	if ev.Amount == 0 {
		return
	}
	l.mu.Lock()
	t, ok := l.totals[ev.UnitID]
	if !ok {
		t = &Totals{}
		l.totals[ev.UnitID] = t
	}
	t.Add(ev.Kind, ev.Amount)
	l.pending = append(l.pending, Event{RunID: l.runID, UnitID: ev.UnitID, Kind: ev.Kind, Amount: ev.Amount})
	l.mu.Unlock()
}

// Totals returns a copy of the aggregated deltas of a unit.
func (l *Ledger) Totals(unitID uint32) Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.totals[unitID]; ok {
		return *t
	}
	return Totals{}
}

// Units returns the ids with recorded events, sorted.
func (l *Ledger) Units() []uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]uint32, 0, len(l.totals))
	for id := range l.totals {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Pending returns the number of events not yet flushed.
func (l *Ledger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Flush hands buffered events to the store. On failure the events stay
// buffered for the next Flush.
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if l.store == nil {
		return nil
	}
	if err := l.store.SaveEvents(ctx, batch); err != nil {
		l.mu.Lock()
		l.pending = append(batch, l.pending...)
		l.mu.Unlock()
		return fmt.Errorf("flushing %d progress events of run %s: %w", len(batch), l.runID, err)
	}

	slog.Debug("progress flushed", "run", l.runID, "events", len(batch))
	return nil
}
