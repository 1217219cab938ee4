package data

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/delve/internal/model"
)

// TargetSelector определяет, на кого действует скилл.
type TargetSelector int8

const (
	TargetSelf TargetSelector = iota
	TargetLowestHPAlly
	TargetAllAllies
	TargetSingleEnemy
	TargetAllEnemies
)

var targetSelectorNames = [...]string{
	TargetSelf:         "self",
	TargetLowestHPAlly: "lowest_hp_ally",
	TargetAllAllies:    "all_allies",
	TargetSingleEnemy:  "single_enemy",
	TargetAllEnemies:   "all_enemies",
}

func (t TargetSelector) String() string {
	if int(t) < len(targetSelectorNames) {
		return targetSelectorNames[t]
	}
	return "unknown"
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TargetSelector) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeEnum[TargetSelector](node, targetSelectorNames[:], "target")
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// IsOffensive returns true if the selector targets enemies.
func (t TargetSelector) IsOffensive() bool {
	return t == TargetSingleEnemy || t == TargetAllEnemies
}

// defensiveBuffs are the buff kinds that count as party-wide defensive buffs.
var defensiveBuffs = map[model.BuffKind]bool{
	model.BuffDamageReduction: true,
	model.BuffEvasion:         true,
	model.BuffShield:          true,
	model.BuffDOTImmune:       true,
	model.BuffCCImmune:        true,
}

// SkillDefinition — описание активного скилла героя. Read-only reference data.
type SkillDefinition struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Target   TargetSelector `yaml:"target"`
	Effects  EffectList     `yaml:"effects"`
	Cooldown int32          `yaml:"cooldown"`
}

// HasEffect reports whether the skill carries an effect of the given kind.
func (s *SkillDefinition) HasEffect(kind EffectKind) bool {
	return hasEffect(s.Effects, kind)
}

// IsHeal reports whether the skill heals.
func (s *SkillDefinition) IsHeal() bool {
	return s.HasEffect(EffectHeal) || s.HasEffect(EffectHot)
}

// IsShield reports whether the skill grants a shield.
func (s *SkillDefinition) IsShield() bool {
	return s.HasEffect(EffectShield)
}

// IsDamage reports whether the skill deals direct damage.
func (s *SkillDefinition) IsDamage() bool {
	return s.Target.IsOffensive() && s.HasEffect(EffectDamage)
}

// IsAoEDamage reports whether the skill damages all enemies.
func (s *SkillDefinition) IsAoEDamage() bool {
	return s.Target == TargetAllEnemies && s.HasEffect(EffectDamage)
}

// IsExecute reports whether any damage effect has an execute threshold.
func (s *SkillDefinition) IsExecute() bool {
	for _, e := range s.Effects {
		if d, ok := e.(DamageEffect); ok && d.ExecuteThreshold > 0 {
			return true
		}
	}
	return false
}

// IsPartyDefensiveBuff reports whether the skill buffs every ally defensively.
func (s *SkillDefinition) IsPartyDefensiveBuff() bool {
	if s.Target != TargetAllAllies {
		return false
	}
	for _, e := range s.Effects {
		switch e := e.(type) {
		case BuffEffect:
			if defensiveBuffs[e.Buff] {
				return true
			}
		case ShieldEffect:
			return true
		}
	}
	return false
}

// IsControlDebuff reports whether the skill applies an attack-reduction,
// damage-amplification or stun debuff.
func (s *SkillDefinition) IsControlDebuff() bool {
	for _, e := range s.Effects {
		if d, ok := e.(DebuffEffect); ok {
			switch d.Debuff {
			case DebuffAttackDown, DebuffDamageAmplify, DebuffStun:
				return true
			}
		}
	}
	return false
}

// IsDot reports whether the skill applies damage over time.
func (s *SkillDefinition) IsDot() bool {
	return s.HasEffect(EffectDot)
}

// EffectiveMultiplier returns the best multiplier × hit count across damage effects.
func (s *SkillDefinition) EffectiveMultiplier() float64 {
	best := 0.0
	for _, e := range s.Effects {
		if d, ok := e.(DamageEffect); ok {
			best = max(best, d.Effective())
		}
	}
	return best
}

func hasEffect(effects EffectList, kind EffectKind) bool {
	for _, e := range effects {
		if e.Kind() == kind {
			return true
		}
	}
	return false
}

// decodeEnum decodes a YAML scalar into an index of names.
func decodeEnum[T ~int8](node *yaml.Node, names []string, what string) (T, error) {
	var s string
	if err := node.Decode(&s); err != nil {
		return 0, fmt.Errorf("line %d: %s: %w", node.Line, what, err)
	}
	for i, name := range names {
		if name == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("line %d: unknown %s %q", node.Line, what, s)
}
