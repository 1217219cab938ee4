package passive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/model"
	"github.com/udisondev/delve/internal/testutil"
)

func newRegistry(defs ...*data.PassiveDef) *data.Registry {
	reg := data.NewRegistry()
	for _, d := range defs {
		reg.AddPassive(d)
	}
	return reg
}

func TestHandlers_Exhaustive(t *testing.T) {
	for k := data.PassiveKind(0); int(k) < data.PassiveKindCount(); k++ {
		assert.NotNil(t, handlers[k], "kind %s", k)
	}
	assert.Len(t, handlers, data.PassiveKindCount())
}

func TestEvaluate_FiltersByTrigger(t *testing.T) {
	reg := newRegistry(
		&data.PassiveDef{ID: "brute", Kind: data.PassiveDamageMultiplier, Trigger: data.TriggerAttack, Value: 0.1},
		&data.PassiveDef{ID: "skin", Kind: data.PassiveDamageReduction, Trigger: data.TriggerDefend, Value: 0.2},
		&data.PassiveDef{ID: "crit", Kind: data.PassiveCritChance, Trigger: data.TriggerAttack, Value: 0.05},
	)
	u := testutil.NewHero(1, "h", 100, 10, 5, 10)
	u.Passives = []string{"brute", "skin", "crit", "missing"}

	e := NewEvaluator(reg)
	var b Bonuses
	e.Evaluate(data.TriggerAttack, u, Situation{}, &b)
	assert.InDelta(t, 0.1, b.DamageMultiplier, 1e-9)
	assert.InDelta(t, 0.05, b.CritChance, 1e-9)
	assert.Zero(t, b.DamageReduction)

	b.Reset()
	e.Evaluate(data.TriggerDefend, u, Situation{}, &b)
	assert.InDelta(t, 0.2, b.DamageReduction, 1e-9)
	assert.Zero(t, b.DamageMultiplier)
}

func TestEvaluate_SituationalHandlers(t *testing.T) {
	reg := newRegistry(
		&data.PassiveDef{ID: "ambush", Kind: data.PassiveFirstStrike, Trigger: data.TriggerAttack, Value: 0.5},
		&data.PassiveDef{ID: "sniper", Kind: data.PassiveRangedBonus, Trigger: data.TriggerAttack, Value: 0.2, Threshold: 3},
		&data.PassiveDef{ID: "streak", Kind: data.PassiveKillStreak, Trigger: data.TriggerAttack, Value: 0.1},
	)
	u := testutil.NewHero(1, "h", 100, 10, 5, 10)
	u.Passives = []string{"ambush", "sniper", "streak"}
	e := NewEvaluator(reg)

	tests := []struct {
		name string
		sit  Situation
		want float64
	}{
		{"nothing applies", Situation{Distance: 1}, 0},
		{"first attack", Situation{FirstAttack: true, Distance: 1}, 0.5},
		{"at range", Situation{Distance: 3}, 0.2},
		{"kill streak", Situation{KillStreak: 3, Distance: 1}, 0.3},
		{"all", Situation{FirstAttack: true, Distance: 4, KillStreak: 1}, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bonuses
			e.Evaluate(data.TriggerAttack, u, tt.sit, &b)
			assert.InDelta(t, tt.want, b.DamageMultiplier, 1e-9)
		})
	}
}

func TestAttack_LowHP(t *testing.T) {
	reg := newRegistry(
		&data.PassiveDef{ID: "rage", Kind: data.PassiveLowHPRage, Trigger: data.TriggerLowHP, Value: 0.4, Threshold: 0.3},
	)
	u := testutil.NewHero(1, "h", 100, 10, 5, 10)
	u.Passives = []string{"rage"}
	e := NewEvaluator(reg)

	var b Bonuses
	e.Attack(u, Situation{}, &b)
	assert.Zero(t, b.DamageMultiplier)

	u.SetHP(40) // below the evaluation line, above the rage threshold
	e.Attack(u, Situation{}, &b)
	assert.Zero(t, b.DamageMultiplier)

	u.SetHP(30)
	e.Attack(u, Situation{}, &b)
	assert.InDelta(t, 0.4, b.DamageMultiplier, 1e-9)
}

func TestEvaluate_DeathChainKinds(t *testing.T) {
	reg := newRegistry(
		&data.PassiveDef{ID: "phoenix", Kind: data.PassivePhoenix, Trigger: data.TriggerLethal, Value: 0.3},
		&data.PassiveDef{ID: "martyr", Kind: data.PassiveMartyr, Trigger: data.TriggerLethal, Value: 0.5},
		&data.PassiveDef{ID: "avenger", Kind: data.PassiveVengeance, Trigger: data.TriggerLethal, Value: 0.15},
	)
	u := testutil.NewHero(1, "h", 100, 10, 5, 10)
	u.Passives = []string{"phoenix", "martyr", "avenger"}
	e := NewEvaluator(reg)

	var b Bonuses
	e.Evaluate(data.TriggerLethal, u, Situation{}, &b)
	assert.InDelta(t, 0.3, b.Phoenix, 1e-9)
	assert.InDelta(t, 0.5, b.Martyr, 1e-9)
	assert.InDelta(t, 0.15, b.Vengeance, 1e-9)
	assert.Equal(t, int32(3), b.VengeanceDuration)

	assert.True(t, e.Has(u, data.PassiveMartyr))
	assert.False(t, e.Has(u, data.PassiveRegen))
}

func TestBonuses_Clamp(t *testing.T) {
	b := Bonuses{DamageReduction: 1.3, Dodge: -0.1, DamageMultiplier: 1.5, ReflectFlat: 3}
	b.Clamp()

	assert.InDelta(t, 1.0, b.DamageReduction, 1e-9)
	assert.Zero(t, b.Dodge)
	assert.InDelta(t, 1.5, b.DamageMultiplier, 1e-9, "damage multiplier is not a percent stack")
	assert.Equal(t, int32(3), b.ReflectFlat)
}

func TestApply_ReactiveBuffs(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 5, 10)
	u.SetHP(50)

	healed := Apply(u, &Bonuses{DamageMultiplier: 0.1, SpeedBoost: 0.2, Regen: 0.05}, ReactiveTurns)
	assert.Equal(t, int32(5), healed)
	assert.InDelta(t, 0.1, u.BuffValue(model.BuffDamageBonus), 1e-9)
	assert.InDelta(t, 0.2, u.BuffValue(model.BuffSpeedBonus), 1e-9)
	assert.Equal(t, ReactiveTurns, u.Buffs[model.BuffSpeedBonus].Remaining)
	assert.False(t, u.HasBuff(model.BuffDamageReduction))
}

func TestApplyEncounter_KeepsTimedBuffsSeparate(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 5, 10)

	ApplyEncounter(u, &Bonuses{DamageMultiplier: 0.05, DamageReduction: 0.7})
	ApplyEncounter(u, &Bonuses{DamageReduction: 0.6})
	assert.InDelta(t, 1.0, u.Encounter.DamageReduction, 1e-9)
	assert.Empty(t, u.Buffs, "encounter bonuses do not occupy timed buff slots")

	u.SetBuff(model.BuffDamageBonus, model.Buff{Value: 0.5, Remaining: 2})
	assert.Equal(t, int32(2), u.Buffs[model.BuffDamageBonus].Remaining)
	assert.InDelta(t, 0.55, u.Modifier(model.BuffDamageBonus), 1e-9)

	u.ClearBuffs()
	assert.Zero(t, u.Modifier(model.BuffDamageBonus))
}
