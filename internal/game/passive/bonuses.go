// Package passive evaluates trigger-keyed passive effects into a Bonuses
// accumulator. Every data.PassiveKind has exactly one handler.
package passive

import "github.com/udisondev/delve/internal/model"

// Bonuses accumulates modifiers from passives and unique procs. Fractions are
// additive (0.1 = +10%).
type Bonuses struct {
	DamageMultiplier float64
	DamageReduction  float64
	CritChance       float64
	CritDamage       float64
	Lifesteal        float64
	DoubleAttack     float64
	Cleave           float64
	Dodge            float64
	ReflectPercent   float64
	ReflectFlat      int32
	HealingBonus     float64
	Threat           float64
	ExecuteThreshold float64

	SpeedBoost        float64
	AlwaysFirst       bool
	CooldownReduction float64
	DOTArmor          float64
	Regen             float64

	// Death chain. Phoenix and Martyr are revive/redirect fractions, 0 = none.
	Phoenix           float64
	Martyr            float64
	Vengeance         float64
	VengeanceDuration int32
}

// Reset zeroes the accumulator for reuse.
func (b *Bonuses) Reset() { *b = Bonuses{} }

// Clamp caps percentage stacks at 100%.
func (b *Bonuses) Clamp() {
	b.DamageReduction = clamp01(b.DamageReduction)
	b.CritChance = clamp01(b.CritChance)
	b.Lifesteal = clamp01(b.Lifesteal)
	b.DoubleAttack = clamp01(b.DoubleAttack)
	b.Cleave = clamp01(b.Cleave)
	b.Dodge = clamp01(b.Dodge)
	b.ReflectPercent = clamp01(b.ReflectPercent)
	b.Phoenix = clamp01(b.Phoenix)
	b.Martyr = clamp01(b.Martyr)
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// ReactiveTurns is how long on_kill / on_damage_taken buffs last.
const ReactiveTurns int32 = 2

// Apply converts reactive bonuses into timed buffs on u and heals regen
// immediately. Returns the amount healed.
func Apply(u *model.Unit, b *Bonuses, duration int32) int32 {
	c := *b
	c.Clamp()
	set := func(kind model.BuffKind, v float64) {
		if v > 0 {
			u.SetBuff(kind, model.Buff{Value: v, Remaining: duration})
		}
	}
	set(model.BuffDamageBonus, c.DamageMultiplier)
	set(model.BuffDamageReduction, c.DamageReduction)
	set(model.BuffEvasion, c.Dodge)
	set(model.BuffSpeedBonus, c.SpeedBoost)
	return regen(u, c.Regen)
}

// ApplyEncounter adds on_combat_start / on_room_start bonuses to the
// encounter-long modifiers of u. Returns the amount healed by regen.
func ApplyEncounter(u *model.Unit, b *Bonuses) int32 {
	c := *b
	c.Clamp()
	e := &u.Encounter
	e.DamageBonus += max(c.DamageMultiplier, 0)
	e.DamageReduction = clamp01(e.DamageReduction + c.DamageReduction)
	e.Evasion = clamp01(e.Evasion + c.Dodge)
	e.SpeedBonus += max(c.SpeedBoost, 0)
	return regen(u, c.Regen)
}

func regen(u *model.Unit, frac float64) int32 {
	if frac <= 0 {
		return 0
	}
	return u.Heal(int32(float64(u.Stats.MaxHP) * frac))
}
