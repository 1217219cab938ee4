package data

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/delve/internal/model"
)

// ErrUnknownEffect is returned by the loader for an effect type it cannot decode.
var ErrUnknownEffect = errors.New("unknown effect type")

// EffectKind enumerates the closed set of skill/ability effects.
type EffectKind int8

const (
	EffectDamage EffectKind = iota
	EffectHeal
	EffectShield
	EffectBuff
	EffectDebuff
	EffectDot
	EffectHot

	effectKindCount
)

var effectKindNames = [...]string{
	EffectDamage: "damage",
	EffectHeal:   "heal",
	EffectShield: "shield",
	EffectBuff:   "buff",
	EffectDebuff: "debuff",
	EffectDot:    "dot",
	EffectHot:    "hot",
}

func (k EffectKind) String() string {
	if int(k) < len(effectKindNames) {
		return effectKindNames[k]
	}
	return "unknown"
}

// AllEffectKinds lists every effect kind; dispatch tables are checked against it.
func AllEffectKinds() []EffectKind {
	kinds := make([]EffectKind, 0, effectKindCount)
	for k := EffectKind(0); k < effectKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Effect is one of DamageEffect, HealEffect, ShieldEffect, BuffEffect,
// DebuffEffect, DotEffect or HotEffect.
type Effect interface {
	Kind() EffectKind
}

// DamageEffect deals attack-based damage, optionally several hits.
type DamageEffect struct {
	Multiplier float64 `yaml:"multiplier"`
	Hits       int32   `yaml:"hits"`
	ArmorPen   float64 `yaml:"armor_pen"`

	// ExecuteThreshold is a target hp fraction; at or below it the hit is
	// multiplied by ExecuteMultiplier.
	ExecuteThreshold  float64 `yaml:"execute_threshold"`
	ExecuteMultiplier float64 `yaml:"execute_multiplier"`
}

// HealEffect restores a percentage of the target's max hp.
type HealEffect struct {
	Percent float64 `yaml:"percent"`
}

// ShieldEffect grants an absorb pool sized from the caster's max hp.
type ShieldEffect struct {
	Percent  float64 `yaml:"percent"`
	Duration int32   `yaml:"duration"`
}

// BuffEffect installs a timed buff on the targets.
type BuffEffect struct {
	Buff     model.BuffKind `yaml:"buff"`
	Value    float64        `yaml:"value"`
	Duration int32          `yaml:"duration"`
}

// DebuffKind names a negative modifier. Some map to target buffs, the rest to
// status effects.
type DebuffKind string

const (
	DebuffAttackDown    DebuffKind = "attack_down"
	DebuffDamageAmplify DebuffKind = "damage_amplify"
	DebuffVulnerability DebuffKind = "vulnerability"
	DebuffWeakness      DebuffKind = "weakness"
	DebuffStun          DebuffKind = "stun"
	DebuffFreeze        DebuffKind = "freeze"
	DebuffSlow          DebuffKind = "slow"
	DebuffMark          DebuffKind = "mark"
	DebuffHealBlock     DebuffKind = "heal_block"
)

func (k DebuffKind) valid() bool {
	switch k {
	case DebuffAttackDown, DebuffDamageAmplify, DebuffVulnerability, DebuffWeakness,
		DebuffStun, DebuffFreeze, DebuffSlow, DebuffMark, DebuffHealBlock:
		return true
	}
	return false
}

// DebuffEffect applies a debuff for Duration turns.
type DebuffEffect struct {
	Debuff   DebuffKind `yaml:"debuff"`
	Value    float64    `yaml:"value"`
	Duration int32      `yaml:"duration"`
}

// DotEffect applies damage over time; per-tick damage is Multiplier × caster
// attack at apply time.
type DotEffect struct {
	Multiplier float64 `yaml:"multiplier"`
	Duration   int32   `yaml:"duration"`
}

// HotEffect heals Percent of the target's max hp every turn. Variants with a
// final-tick bonus run on the buff tracker, plain ones are status effects.
type HotEffect struct {
	Percent        float64 `yaml:"percent"`
	Duration       int32   `yaml:"duration"`
	FinalTickBonus float64 `yaml:"final_tick_bonus"`
}

func (DamageEffect) Kind() EffectKind { return EffectDamage }
func (HealEffect) Kind() EffectKind   { return EffectHeal }
func (ShieldEffect) Kind() EffectKind { return EffectShield }
func (BuffEffect) Kind() EffectKind   { return EffectBuff }
func (DebuffEffect) Kind() EffectKind { return EffectDebuff }
func (DotEffect) Kind() EffectKind    { return EffectDot }
func (HotEffect) Kind() EffectKind    { return EffectHot }

// HitCount returns the number of hits, at least one.
func (e DamageEffect) HitCount() int32 { return max(e.Hits, 1) }

// Effective returns multiplier × hit count.
func (e DamageEffect) Effective() float64 { return e.Multiplier * float64(e.HitCount()) }

// EffectList decodes a YAML sequence of `{type: ..., ...}` maps into typed effects.
type EffectList []Effect

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *EffectList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: effects must be a sequence", node.Line)
	}
	out := make(EffectList, 0, len(node.Content))
	for _, item := range node.Content {
		eff, err := decodeEffect(item)
		if err != nil {
			return err
		}
		out = append(out, eff)
	}
	*l = out
	return nil
}

func decodeEffect(node *yaml.Node) (Effect, error) {
	var head struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}

	var (
		eff Effect
		err error
	)
	switch head.Type {
	case "damage":
		var e DamageEffect
		err = node.Decode(&e)
		if e.Multiplier == 0 {
			e.Multiplier = 1
		}
		eff = e
	case "heal":
		var e HealEffect
		err = node.Decode(&e)
		eff = e
	case "shield":
		var e ShieldEffect
		err = node.Decode(&e)
		eff = e
	case "buff":
		var e BuffEffect
		err = node.Decode(&e)
		eff = e
	case "debuff":
		var e DebuffEffect
		err = node.Decode(&e)
		if err == nil && !e.Debuff.valid() {
			err = fmt.Errorf("unknown debuff %q", e.Debuff)
		}
		eff = e
	case "dot":
		var e DotEffect
		err = node.Decode(&e)
		eff = e
	case "hot":
		var e HotEffect
		err = node.Decode(&e)
		eff = e
	default:
		return nil, fmt.Errorf("line %d: %w %q", node.Line, ErrUnknownEffect, head.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("line %d: decoding %s effect: %w", node.Line, head.Type, err)
	}
	return eff, nil
}
