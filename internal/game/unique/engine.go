package unique

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/model"
)

// handler applies one unique to the accumulator. It may mutate only the
// hero's own proc state.
type handler func(def *data.UniqueDef, hero *model.Unit, st *ProcState, sit passive.Situation, b *passive.Bonuses)

var handlers = map[data.UniqueKind]handler{
	data.UniqueEveryNth: func(d *data.UniqueDef, _ *model.Unit, st *ProcState, _ passive.Situation, b *passive.Bonuses) {
		every := max(d.Every, 1)
		if st.Attacks > 0 && st.Attacks%every == 0 {
			b.DamageMultiplier += d.Value
		}
	},
	data.UniqueKillStacks: func(d *data.UniqueDef, _ *model.Unit, st *ProcState, _ passive.Situation, b *passive.Bonuses) {
		stacks := st.KillStacks
		if d.MaxStacks > 0 {
			stacks = min(stacks, d.MaxStacks)
		}
		b.DamageMultiplier += d.Value * float64(stacks)
	},
	data.UniqueRoomStacks: func(d *data.UniqueDef, _ *model.Unit, st *ProcState, _ passive.Situation, b *passive.Bonuses) {
		b.DamageReduction += d.Value * float64(st.RoomStacks)
		if d.MaxStacks <= 0 || st.RoomStacks < d.MaxStacks {
			st.RoomStacks++
		}
	},
	data.UniqueCheatDeath: func(d *data.UniqueDef, _ *model.Unit, st *ProcState, _ passive.Situation, b *passive.Bonuses) {
		if !st.PhoenixUsed {
			b.Phoenix = max(b.Phoenix, d.Value)
		}
	},
	data.UniqueInvisibleOnKill: func(d *data.UniqueDef, _ *model.Unit, st *ProcState, _ passive.Situation, _ *passive.Bonuses) {
		st.InvisibleTurns = max(st.InvisibleTurns, max(d.Turns, 1))
	},
	data.UniqueCritLifesteal: func(d *data.UniqueDef, _ *model.Unit, _ *ProcState, _ passive.Situation, b *passive.Bonuses) {
		b.Lifesteal += d.Value
	},
	data.UniqueThorns: func(d *data.UniqueDef, _ *model.Unit, _ *ProcState, _ passive.Situation, b *passive.Bonuses) {
		b.ReflectFlat += int32(d.Value)
	},
	data.UniqueBerserk: func(d *data.UniqueDef, hero *model.Unit, _ *ProcState, _ passive.Situation, b *passive.Bonuses) {
		if hero.HPPercent() <= d.Threshold {
			b.DamageMultiplier += d.Value
		}
	},
	data.UniqueFirstStrike: func(d *data.UniqueDef, _ *model.Unit, st *ProcState, _ passive.Situation, b *passive.Bonuses) {
		if !st.FirstStrikeUsed {
			st.FirstStrikeUsed = true
			b.DamageMultiplier += d.Value
		}
	},
}

func init() {
	for k := data.UniqueKind(0); int(k) < data.UniqueKindCount(); k++ {
		if handlers[k] == nil {
			panic(fmt.Sprintf("unique: no handler for kind %s", k))
		}
	}
}

// Lookup resolves unique ids.
type Lookup interface {
	Unique(id string) *data.UniqueDef
}

// Engine evaluates a hero's unique items for a trigger.
type Engine struct {
	reg    Lookup
	states *Registry
}

// NewEngine создаёт Engine поверх справочника и состояния проков.
func NewEngine(reg Lookup, states *Registry) *Engine {
	return &Engine{reg: reg, states: states}
}

// States returns the proc state registry.
func (e *Engine) States() *Registry { return e.states }

// Evaluate runs the hero's uniques bound to trigger. Attack and kill triggers
// also advance the hero's attack and kill counters, once per call.
func (e *Engine) Evaluate(trigger data.Trigger, hero *model.Unit, sit passive.Situation, b *passive.Bonuses) {
	if len(hero.Uniques) == 0 {
		return
	}
	st := e.states.State(hero.ID)
	switch trigger {
	case data.TriggerAttack:
		st.Attacks++
	case data.TriggerKill:
		st.KillStacks++
	}

	for _, id := range hero.Uniques {
		def := e.reg.Unique(id)
		if def == nil {
			slog.Debug("unknown unique skipped", "hero", hero.ID, "unique", id)
			continue
		}
		if def.Kind.Trigger() != trigger {
			continue
		}
		handlers[def.Kind](def, hero, st, sit, b)
	}
}

// Attack evaluates on_attack and, below passive.LowHPLine, on_low_hp.
func (e *Engine) Attack(hero *model.Unit, sit passive.Situation, b *passive.Bonuses) {
	e.Evaluate(data.TriggerAttack, hero, sit, b)
	if hero.HPPercent() < passive.LowHPLine {
		e.Evaluate(data.TriggerLowHP, hero, sit, b)
	}
}

// TakeInvisibility returns and clears pending invisibility turns of a hero.
func (e *Engine) TakeInvisibility(heroID uint32) int32 {
	st, ok := e.states.Peek(heroID)
	if !ok || st.InvisibleTurns == 0 {
		return 0
	}
	turns := st.InvisibleTurns
	st.InvisibleTurns = 0
	return turns
}
