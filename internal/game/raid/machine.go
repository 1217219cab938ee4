// Package raid drives boss phase transitions and tracks raid progress.
package raid

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/model"
)

// ErrNotBoss is returned by Register for a unit whose template has no phases.
var ErrNotBoss = errors.New("monster template has no boss phases")

// Lookup resolves monster templates.
type Lookup interface {
	Monster(id string) *data.MonsterTemplate
}

// Spawner creates an add for a boss and puts it on the battlefield.
type Spawner interface {
	SpawnAdd(boss *model.Unit, tmpl *data.MonsterTemplate, stats model.Stats) *model.Unit
}

// Config — настройки фазовой машины.
type Config struct {
	// AddScaling is the per-level stat scaling of summoned adds (half of the
	// normal monster scaling).
	AddScaling float64
	// EnrageBonus is the outgoing damage bonus of an enraged boss.
	EnrageBonus float64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{AddScaling: 0.05, EnrageBonus: 0.5}
}

// State is the phase state of one boss instance.
type State struct {
	BossID   uint32
	Template string
	Phase    int
	// Triggered[i] is true once phase i has started.
	Triggered []bool
	// ImmuneUntil is the last round of the immunity window (0 = none).
	ImmuneUntil int
	Enraged     bool
	Adds        []uint32
}

type boss struct {
	unit   *model.Unit
	phases []data.BossPhase
	state  State
}

// Machine owns the phase state of every boss in one combat session.
//
// Not safe for concurrent use.
type Machine struct {
	cfg     Config
	reg     Lookup
	spawner Spawner
	round   func() int
	events  hooks.EventSink
	bosses  map[uint32]*boss
}

// NewMachine создаёт Machine. round returns the session's current round and
// drives immunity windows.
func NewMachine(cfg Config, reg Lookup, spawner Spawner, round func() int, events hooks.EventSink) *Machine {
	if events == nil {
		events = hooks.Nop{}
	}
	return &Machine{
		cfg:     cfg,
		reg:     reg,
		spawner: spawner,
		round:   round,
		events:  events,
		bosses:  make(map[uint32]*boss, 2),
	}
}

// Register starts tracking u. Phase 0 is active immediately and its start
// action runs once.
func (m *Machine) Register(u *model.Unit) error {
	tmpl := m.reg.Monster(u.TemplateID)
	if tmpl == nil || tmpl.Boss == nil || len(tmpl.Boss.Phases) == 0 {
		return fmt.Errorf("register %s (%d): %w", u.TemplateID, u.ID, ErrNotBoss)
	}
	if err := data.ValidatePhases(tmpl.Boss.Phases); err != nil {
		return fmt.Errorf("register %s: %w", u.TemplateID, err)
	}
	if u.Boss == nil {
		u.Boss = &model.BossInfo{Role: model.BossRole(tmpl.Boss.Role), RaidID: tmpl.Boss.RaidID}
	}
	b := &boss{
		unit:   u,
		phases: tmpl.Boss.Phases,
		state: State{
			BossID:    u.ID,
			Template:  tmpl.ID,
			Triggered: make([]bool, len(tmpl.Boss.Phases)),
		},
	}
	m.bosses[u.ID] = b
	m.enter(b, 0)
	return nil
}

// OnDamage scans forward from the current phase and starts every phase whose
// threshold the boss hp is now at or below. Each phase starts at most once.
func (m *Machine) OnDamage(u *model.Unit) {
	b, ok := m.bosses[u.ID]
	if !ok || !u.IsAlive() {
		return
	}
	pct := u.HPPercent() * 100
	for i := b.state.Phase + 1; i < len(b.phases); i++ {
		if b.state.Triggered[i] {
			continue
		}
		if pct > b.phases[i].Threshold {
			break
		}
		m.enter(b, i)
	}
}

func (m *Machine) enter(b *boss, i int) {
	ph := &b.phases[i]
	b.state.Phase = i
	b.state.Triggered[i] = true
	b.unit.Boss.Phase = i
	if ph.Enraged {
		b.state.Enraged = true
		b.unit.Boss.Enraged = true
	}

	slog.Info("boss phase started",
		"boss", b.unit.ID,
		"template", b.state.Template,
		"phase", i,
		"hp", b.unit.HP())

	if ph.Message != "" {
		m.events.Log(hooks.LogEntry{Kind: hooks.LogSystem, Round: m.round(), ActorID: b.unit.ID, Message: ph.Message})
	}
	m.events.Effect(hooks.VisualEffect{Kind: "phase", SourceID: b.unit.ID, TargetID: b.unit.ID, Value: int32(i)})

	if ph.OnStart == nil {
		return
	}
	if ph.OnStart.Immunity > 0 {
		b.state.ImmuneUntil = max(b.state.ImmuneUntil, m.round()+int(ph.OnStart.Immunity))
	}
	if s := ph.OnStart.Summon; s != nil {
		m.summon(b, s)
	}
}

func (m *Machine) summon(b *boss, s *data.SummonAction) {
	tmpl := m.reg.Monster(s.Monster)
	if tmpl == nil || m.spawner == nil {
		slog.Warn("boss summon skipped", "boss", b.unit.ID, "monster", s.Monster)
		return
	}
	stats := tmpl.Scaled(b.unit.Level, m.cfg.AddScaling)
	for range max(s.Count, 1) {
		add := m.spawner.SpawnAdd(b.unit, tmpl, stats)
		if add == nil {
			continue
		}
		b.state.Adds = append(b.state.Adds, add.ID)
	}
	b.unit.Boss.SummonType = s.Monster
}

// IsImmune reports whether damage to u is nullified this round.
func (m *Machine) IsImmune(u *model.Unit) bool {
	b, ok := m.bosses[u.ID]
	return ok && b.state.ImmuneUntil > 0 && m.round() <= b.state.ImmuneUntil
}

// Abilities returns the ability ids of u's current phase, or u's own list if
// the phase does not override it.
func (m *Machine) Abilities(u *model.Unit) []string {
	b, ok := m.bosses[u.ID]
	if !ok {
		return u.Abilities
	}
	if ab := b.phases[b.state.Phase].Abilities; ab != nil {
		return ab
	}
	return u.Abilities
}

// Modifiers returns the current phase's outgoing damage bonus (enrage
// included) and incoming damage reduction.
func (m *Machine) Modifiers(u *model.Unit) (damageBonus, damageReduction float64) {
	b, ok := m.bosses[u.ID]
	if !ok {
		return 0, 0
	}
	mod := b.phases[b.state.Phase].Modifier
	damageBonus = mod.DamageMultiplier
	if b.state.Enraged {
		damageBonus += m.cfg.EnrageBonus
	}
	return damageBonus, mod.DamageReduction
}

// State returns a copy of the boss state.
func (m *Machine) State(id uint32) (State, bool) {
	b, ok := m.bosses[id]
	if !ok {
		return State{}, false
	}
	st := b.state
	st.Triggered = slices.Clone(b.state.Triggered)
	st.Adds = slices.Clone(b.state.Adds)
	return st, true
}

// Bosses returns the ids of tracked bosses in ascending order.
func (m *Machine) Bosses() []uint32 {
	ids := make([]uint32, 0, len(m.bosses))
	for id := range m.bosses {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Check verifies phase invariants: the unit mirrors the machine, the current
// phase has been triggered and no later phase has.
func (m *Machine) Check() error {
	for _, id := range m.Bosses() {
		b := m.bosses[id]
		st := &b.state
		if b.unit.Boss.Phase != st.Phase {
			return fmt.Errorf("boss %d: unit phase %d differs from machine phase %d", id, b.unit.Boss.Phase, st.Phase)
		}
		if !st.Triggered[st.Phase] {
			return fmt.Errorf("boss %d: current phase %d not triggered", id, st.Phase)
		}
		for i := st.Phase + 1; i < len(st.Triggered); i++ {
			if st.Triggered[i] {
				return fmt.Errorf("boss %d: phase %d triggered ahead of current %d", id, i, st.Phase)
			}
		}
	}
	return nil
}

// Reset forgets every boss.
func (m *Machine) Reset() {
	clear(m.bosses)
}
