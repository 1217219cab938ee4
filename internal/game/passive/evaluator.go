package passive

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/model"
)

// Situation is the context a trigger is evaluated in.
type Situation struct {
	Target      *model.Unit
	Distance    int32
	FirstAttack bool
	KillStreak  int
}

// LowHPLine is the hp fraction under which on_low_hp passives are evaluated.
const LowHPLine = 0.5

// handler mutates the accumulator for one passive. Handlers have no other side effects.
type handler func(def *data.PassiveDef, u *model.Unit, sit Situation, b *Bonuses)

var handlers = map[data.PassiveKind]handler{
	data.PassiveDamageMultiplier: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.DamageMultiplier += d.Value
	},
	data.PassiveDamageReduction: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.DamageReduction += d.Value
	},
	data.PassiveCritChance: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.CritChance += d.Value
	},
	data.PassiveCritDamage: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.CritDamage += d.Value
	},
	data.PassiveLifesteal: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.Lifesteal += d.Value
	},
	data.PassiveDoubleAttack: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.DoubleAttack += d.Value
	},
	data.PassiveCleave: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.Cleave += d.Value
	},
	data.PassiveDodge: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.Dodge += d.Value
	},
	data.PassiveReflectPercent: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.ReflectPercent += d.Value
	},
	data.PassiveReflectFlat: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.ReflectFlat += int32(d.Value)
	},
	data.PassiveHealingBonus: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.HealingBonus += d.Value
	},
	data.PassiveThreat: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.Threat += d.Value
	},
	data.PassiveExecute: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.ExecuteThreshold = max(b.ExecuteThreshold, d.Value)
	},
	data.PassiveFirstStrike: func(d *data.PassiveDef, _ *model.Unit, sit Situation, b *Bonuses) {
		if sit.FirstAttack {
			b.DamageMultiplier += d.Value
		}
	},
	data.PassiveRangedBonus: func(d *data.PassiveDef, _ *model.Unit, sit Situation, b *Bonuses) {
		minDist := int32(d.Threshold)
		if minDist <= 0 {
			minDist = 2
		}
		if sit.Distance >= minDist {
			b.DamageMultiplier += d.Value
		}
	},
	data.PassiveKillStreak: func(d *data.PassiveDef, _ *model.Unit, sit Situation, b *Bonuses) {
		b.DamageMultiplier += d.Value * float64(sit.KillStreak)
	},
	data.PassiveLowHPRage: func(d *data.PassiveDef, u *model.Unit, _ Situation, b *Bonuses) {
		threshold := d.Threshold
		if threshold <= 0 {
			threshold = 0.3
		}
		if u.HPPercent() <= threshold {
			b.DamageMultiplier += d.Value
		}
	},
	data.PassiveDOTArmor: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.DOTArmor += d.Value
	},
	data.PassiveSpeedBoost: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.SpeedBoost += d.Value
	},
	data.PassiveAlwaysFirst: func(_ *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.AlwaysFirst = true
	},
	data.PassiveCooldownReduction: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.CooldownReduction += d.Value
	},
	data.PassivePhoenix: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.Phoenix = max(b.Phoenix, d.Value)
	},
	data.PassiveMartyr: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.Martyr = max(b.Martyr, d.Value)
	},
	data.PassiveVengeance: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.Vengeance = max(b.Vengeance, d.Value)
		turns := int32(d.Threshold)
		if turns <= 0 {
			turns = 3
		}
		b.VengeanceDuration = max(b.VengeanceDuration, turns)
	},
	data.PassiveRegen: func(d *data.PassiveDef, _ *model.Unit, _ Situation, b *Bonuses) {
		b.Regen += d.Value
	},
}

func init() {
	for k := data.PassiveKind(0); int(k) < data.PassiveKindCount(); k++ {
		if handlers[k] == nil {
			panic(fmt.Sprintf("passive: no handler for kind %s", k))
		}
	}
}

// Lookup resolves passive ids.
type Lookup interface {
	Passive(id string) *data.PassiveDef
}

// Evaluator evaluates a unit's passives for one trigger.
type Evaluator struct {
	reg Lookup
}

// NewEvaluator создаёт Evaluator поверх справочника пассивок.
func NewEvaluator(reg Lookup) *Evaluator {
	return &Evaluator{reg: reg}
}

// Evaluate runs every passive of u bound to trigger into b. Unknown ids are skipped.
func (e *Evaluator) Evaluate(trigger data.Trigger, u *model.Unit, sit Situation, b *Bonuses) {
	for _, id := range u.Passives {
		def := e.reg.Passive(id)
		if def == nil {
			slog.Debug("unknown passive skipped", "unit", u.ID, "passive", id)
			continue
		}
		if def.Trigger != trigger {
			continue
		}
		handlers[def.Kind](def, u, sit, b)
	}
}

// Attack evaluates on_attack and, below LowHPLine, on_low_hp.
func (e *Evaluator) Attack(u *model.Unit, sit Situation, b *Bonuses) {
	e.Evaluate(data.TriggerAttack, u, sit, b)
	if u.HPPercent() < LowHPLine {
		e.Evaluate(data.TriggerLowHP, u, sit, b)
	}
}

// Has reports whether u carries a passive of the given kind under any trigger.
func (e *Evaluator) Has(u *model.Unit, kind data.PassiveKind) bool {
	for _, id := range u.Passives {
		if def := e.reg.Passive(id); def != nil && def.Kind == kind {
			return true
		}
	}
	return false
}
