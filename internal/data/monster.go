package data

import (
	"math"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/delve/internal/model"
)

// MonsterAbility — способность монстра. Conditions narrow when the AI may pick it.
type MonsterAbility struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Target   TargetSelector `yaml:"target"`
	Effects  EffectList     `yaml:"effects"`
	Cooldown int32          `yaml:"cooldown"`

	MinRound int32   `yaml:"min_round"`
	BelowHP  float64 `yaml:"below_hp"` // own hp fraction; 0 = no condition
	BossOnly bool    `yaml:"boss_only"`
	Phases   []int   `yaml:"phases"` // allowed boss phase indices; empty = any
	Chance   float64 `yaml:"chance"` // 0 = always
}

// AllowedInPhase reports whether the ability may be used in the given phase.
func (a *MonsterAbility) AllowedInPhase(phase int) bool {
	return len(a.Phases) == 0 || slices.Contains(a.Phases, phase)
}

// BaseStats are level-1 template stats before scaling.
type BaseStats struct {
	MaxHP   int32 `yaml:"max_hp"`
	Attack  int32 `yaml:"attack"`
	Defense int32 `yaml:"defense"`
	Speed   int32 `yaml:"speed"`
}

// MonsterTemplate — шаблон монстра.
type MonsterTemplate struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Stats       BaseStats     `yaml:"stats"`
	AttackRange int32         `yaml:"attack_range"`
	Abilities   []string      `yaml:"abilities"`
	Passives    []string      `yaml:"passives"`
	Boss        *BossTemplate `yaml:"boss"`
}

// Scaled returns stats for the given level. Each level above 1 adds
// `scaling` of the base value (0.1 = +10% per level).
func (t *MonsterTemplate) Scaled(level int32, scaling float64) model.Stats {
	return t.Stats.Scaled(level, scaling)
}

// Scaled returns the stats at a level; speed does not scale.
func (s BaseStats) Scaled(level int32, scaling float64) model.Stats {
	factor := 1 + float64(max(level-1, 0))*scaling
	scale := func(v int32) int32 {
		return max(int32(math.Floor(float64(v)*factor)), 1)
	}
	maxHP := scale(s.MaxHP)
	return model.Stats{
		HP:      maxHP,
		MaxHP:   maxHP,
		Attack:  scale(s.Attack),
		Defense: max(int32(math.Floor(float64(s.Defense)*factor)), 0),
		Speed:   s.Speed,
	}
}

// BossTemplate holds the ordered phase list of a boss.
type BossTemplate struct {
	Role   BossRoleName `yaml:"role"`
	RaidID string       `yaml:"raid"`
	Phases []BossPhase  `yaml:"phases"`
}

// BossRoleName decodes model.BossRole from "", "wing" or "final".
type BossRoleName model.BossRole

var bossRoleNames = [...]string{
	model.BossRoleNone:  "none",
	model.BossRoleWing:  "wing",
	model.BossRoleFinal: "final",
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *BossRoleName) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeEnum[BossRoleName](node, bossRoleNames[:], "boss role")
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// BossPhase — фаза босса. Threshold is a percentage of max hp (100, 50, 20...).
type BossPhase struct {
	Threshold float64       `yaml:"threshold"`
	Abilities []string      `yaml:"abilities"` // nil keeps the template's list
	Modifier  PhaseModifier `yaml:"modifier"`
	OnStart   *PhaseAction  `yaml:"on_start"`
	Enraged   bool          `yaml:"enraged"`
	Message   string        `yaml:"message"`
}

// PhaseModifier overrides the boss's passive modifiers while the phase is active.
type PhaseModifier struct {
	DamageMultiplier float64 `yaml:"damage_multiplier"` // additive fraction
	DamageReduction  float64 `yaml:"damage_reduction"`
}

// PhaseAction runs once when its phase starts.
type PhaseAction struct {
	Summon   *SummonAction `yaml:"summon"`
	Immunity int32         `yaml:"immunity"` // turns of damage immunity
}

// SummonAction spawns Count adds of the Monster template.
type SummonAction struct {
	Monster string `yaml:"monster"`
	Count   int    `yaml:"count"`
}
