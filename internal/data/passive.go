package data

import "gopkg.in/yaml.v3"

// Trigger is a point in the turn at which passives and unique procs are evaluated.
type Trigger int8

const (
	TriggerAttack Trigger = iota
	TriggerDefend
	TriggerKill
	TriggerHit
	TriggerCrit
	TriggerDamageTaken
	TriggerTurnStart
	TriggerCombatStart
	TriggerRoomStart
	TriggerLethal
	TriggerLowHP

	triggerCount
)

var triggerNames = [...]string{
	TriggerAttack:      "on_attack",
	TriggerDefend:      "on_defend",
	TriggerKill:        "on_kill",
	TriggerHit:         "on_hit",
	TriggerCrit:        "on_crit",
	TriggerDamageTaken: "on_damage_taken",
	TriggerTurnStart:   "on_turn_start",
	TriggerCombatStart: "on_combat_start",
	TriggerRoomStart:   "on_room_start",
	TriggerLethal:      "on_lethal",
	TriggerLowHP:       "on_low_hp",
}

func (t Trigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return "unknown"
}

// UnmarshalYAML implements yaml.Unmarshaler. "on_death" is accepted as an alias of on_lethal.
func (t *Trigger) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "on_death" {
		*t = TriggerLethal
		return nil
	}
	v, err := decodeEnum[Trigger](node, triggerNames[:], "trigger")
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PassiveKind enumerates passive effect types. Every kind has exactly one
// handler in the passive evaluator.
type PassiveKind int8

const (
	PassiveDamageMultiplier PassiveKind = iota
	PassiveDamageReduction
	PassiveCritChance
	PassiveCritDamage
	PassiveLifesteal
	PassiveDoubleAttack
	PassiveCleave
	PassiveDodge
	PassiveReflectPercent
	PassiveReflectFlat
	PassiveHealingBonus
	PassiveThreat
	PassiveExecute
	PassiveFirstStrike
	PassiveRangedBonus
	PassiveKillStreak
	PassiveLowHPRage
	PassiveDOTArmor
	PassiveSpeedBoost
	PassiveAlwaysFirst
	PassiveCooldownReduction
	PassivePhoenix
	PassiveMartyr
	PassiveVengeance
	PassiveRegen

	passiveKindCount
)

var passiveKindNames = [...]string{
	PassiveDamageMultiplier:  "damage_multiplier",
	PassiveDamageReduction:   "damage_reduction",
	PassiveCritChance:        "crit_chance",
	PassiveCritDamage:        "crit_damage",
	PassiveLifesteal:         "lifesteal",
	PassiveDoubleAttack:      "double_attack",
	PassiveCleave:            "cleave",
	PassiveDodge:             "dodge",
	PassiveReflectPercent:    "reflect_percent",
	PassiveReflectFlat:       "reflect_flat",
	PassiveHealingBonus:      "healing_bonus",
	PassiveThreat:            "threat",
	PassiveExecute:           "execute",
	PassiveFirstStrike:       "first_strike",
	PassiveRangedBonus:       "ranged_bonus",
	PassiveKillStreak:        "kill_streak",
	PassiveLowHPRage:         "low_hp_rage",
	PassiveDOTArmor:          "dot_armor",
	PassiveSpeedBoost:        "speed_boost",
	PassiveAlwaysFirst:       "always_first",
	PassiveCooldownReduction: "cooldown_reduction",
	PassivePhoenix:           "phoenix",
	PassiveMartyr:            "martyr",
	PassiveVengeance:         "vengeance",
	PassiveRegen:             "regen",
}

func (k PassiveKind) String() string {
	if int(k) < len(passiveKindNames) {
		return passiveKindNames[k]
	}
	return "unknown"
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *PassiveKind) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeEnum[PassiveKind](node, passiveKindNames[:], "passive kind")
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// PassiveKindCount returns the number of passive kinds.
func PassiveKindCount() int { return int(passiveKindCount) }

// TriggerCount returns the number of triggers.
func TriggerCount() int { return int(triggerCount) }

// PassiveDef — пассивный эффект (класс героя, монстр, снаряжение).
// Threshold is kind specific: hp fraction for low_hp_rage, tiles for ranged_bonus.
type PassiveDef struct {
	ID        string      `yaml:"id"`
	Name      string      `yaml:"name"`
	Kind      PassiveKind `yaml:"kind"`
	Trigger   Trigger     `yaml:"trigger"`
	Value     float64     `yaml:"value"`
	Threshold float64     `yaml:"threshold"`
}
