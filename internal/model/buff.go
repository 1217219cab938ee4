package model

// BuffKind names a timed modifier stored in Unit.Buffs.
type BuffKind string

const (
	BuffDamageBonus      BuffKind = "damage_bonus"
	BuffDamageReduction  BuffKind = "damage_reduction"
	BuffSpeedBonus       BuffKind = "speed_bonus"
	BuffEvasion          BuffKind = "evasion"
	BuffTaunt            BuffKind = "taunt"
	BuffVulnerability    BuffKind = "vulnerability"
	BuffWeakness         BuffKind = "weakness"
	BuffHealOverTime     BuffKind = "heal_over_time"
	BuffAoEAttacks       BuffKind = "aoe_attacks"
	BuffExtraTurn        BuffKind = "extra_turn"
	BuffDOTImmune        BuffKind = "dot_immune"
	BuffCCImmune         BuffKind = "cc_immune"
	BuffHealingReduction BuffKind = "healing_reduction"
	BuffShield           BuffKind = "shield"
	BuffAttackDown       BuffKind = "attack_down"
	BuffDamageAmplify    BuffKind = "damage_amplify"
	BuffInvisible        BuffKind = "invisible"
)

// Buff is a timed modifier. Value semantics depend on the kind: fractions for
// percentage buffs (0.2 = 20%), absolute amounts for heal_over_time.
type Buff struct {
	Value     float64
	Remaining int32

	// FinalTickBonus multiplies the last heal_over_time tick (0 = none).
	FinalTickBonus float64
}

// EncounterBonus holds passive modifiers granted at encounter start. They last
// until the unit leaves the encounter and never merge with timed buffs.
type EncounterBonus struct {
	DamageBonus     float64
	DamageReduction float64
	Evasion         float64
	SpeedBonus      float64
}

// Vengeance is a damage bonus stacked per fallen ally with its own timer.
type Vengeance struct {
	Stacks    int32
	PerStack  float64
	Remaining int32
}

// Bonus returns the current vengeance damage bonus as a fraction.
func (v Vengeance) Bonus() float64 {
	if v.Remaining <= 0 {
		return 0
	}
	return float64(v.Stacks) * v.PerStack
}

// SetBuff installs or refreshes a buff. An existing buff keeps the larger
// value and the longer remaining duration.
func (u *Unit) SetBuff(kind BuffKind, b Buff) {
	if b.Remaining <= 0 {
		return
	}
	if u.Buffs == nil {
		u.Buffs = make(map[BuffKind]*Buff, 4)
	}
	if cur, ok := u.Buffs[kind]; ok {
		cur.Value = max(cur.Value, b.Value)
		cur.Remaining = max(cur.Remaining, b.Remaining)
		cur.FinalTickBonus = max(cur.FinalTickBonus, b.FinalTickBonus)
		return
	}
	nb := b
	u.Buffs[kind] = &nb
}

// HasBuff reports whether the buff is present with time left.
func (u *Unit) HasBuff(kind BuffKind) bool {
	b, ok := u.Buffs[kind]
	return ok && b.Remaining > 0
}

// BuffValue returns the buff value, or 0 if absent.
func (u *Unit) BuffValue(kind BuffKind) float64 {
	if b, ok := u.Buffs[kind]; ok && b.Remaining > 0 {
		return b.Value
	}
	return 0
}

// Modifier returns the timed buff value of kind plus the matching encounter
// bonus.
func (u *Unit) Modifier(kind BuffKind) float64 {
	v := u.BuffValue(kind)
	switch kind {
	case BuffDamageBonus:
		v += u.Encounter.DamageBonus
	case BuffDamageReduction:
		v += u.Encounter.DamageReduction
	case BuffEvasion:
		v += u.Encounter.Evasion
	case BuffSpeedBonus:
		v += u.Encounter.SpeedBonus
	}
	return v
}

// RemoveBuff deletes a buff.
func (u *Unit) RemoveBuff(kind BuffKind) {
	delete(u.Buffs, kind)
	if kind == BuffShield {
		u.Shield = 0
	}
}

// ClearBuffs drops every buff, encounter bonus, vengeance stacks and shield,
// reusing the map.
func (u *Unit) ClearBuffs() {
	clear(u.Buffs)
	u.Encounter = EncounterBonus{}
	u.Vengeance = Vengeance{}
	u.Shield = 0
}
