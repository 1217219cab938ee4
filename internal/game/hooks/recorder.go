package hooks

import (
	"context"
	"sync"

	"github.com/udisondev/delve/internal/model"
)

// Recorder captures every call. Used by tests and the simulator.
type Recorder struct {
	mu       sync.Mutex
	effects  []VisualEffect
	logs     []LogEntry
	progress []ProgressEvent
	defeats  []BossDefeat
	loot     []LootResult

	// LootFn, when set, answers RollLoot.
	LootFn func(killer, victim *model.Unit) LootResult
}

// NewRecorder создаёт пустой Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Effect(e VisualEffect) {
	r.mu.Lock()
	r.effects = append(r.effects, e)
	r.mu.Unlock()
}

func (r *Recorder) Log(e LogEntry) {
	r.mu.Lock()
	r.logs = append(r.logs, e)
	r.mu.Unlock()
}

func (r *Recorder) Record(ev ProgressEvent) {
	r.mu.Lock()
	r.progress = append(r.progress, ev)
	r.mu.Unlock()
}

func (r *Recorder) BossDefeated(_ context.Context, d BossDefeat) error {
	r.mu.Lock()
	r.defeats = append(r.defeats, d)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) RollLoot(_ context.Context, killer, victim *model.Unit) LootResult {
	res := LootResult{}
	if r.LootFn != nil {
		res = r.LootFn(killer, victim)
	}
	r.mu.Lock()
	r.loot = append(r.loot, res)
	r.mu.Unlock()
	return res
}

// Effects returns a copy of the recorded visual effects.
func (r *Recorder) Effects() []VisualEffect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]VisualEffect(nil), r.effects...)
}

// Logs returns a copy of the recorded log entries.
func (r *Recorder) Logs() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogEntry(nil), r.logs...)
}

// Progress returns a copy of the recorded progression events.
func (r *Recorder) Progress() []ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProgressEvent(nil), r.progress...)
}

// Defeats returns a copy of the recorded boss defeats.
func (r *Recorder) Defeats() []BossDefeat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BossDefeat(nil), r.defeats...)
}

// Loot returns a copy of the loot results handed out.
func (r *Recorder) Loot() []LootResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LootResult(nil), r.loot...)
}

// LogsOfKind filters recorded log entries by kind.
func (r *Recorder) LogsOfKind(kind LogKind) []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []LogEntry
	for _, e := range r.logs {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.effects = r.effects[:0]
	r.logs = r.logs[:0]
	r.progress = r.progress[:0]
	r.defeats = r.defeats[:0]
	r.loot = r.loot[:0]
	r.mu.Unlock()
}
