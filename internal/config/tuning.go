package config

import (
	"github.com/udisondev/delve/internal/game/combat"
	"github.com/udisondev/delve/internal/game/raid"
	"github.com/udisondev/delve/internal/game/revive"
	"github.com/udisondev/delve/internal/game/session"
)

// Combat holds the damage pipeline tuning.
type Combat struct {
	VarianceLow          float64 `yaml:"variance_low" env:"DELVE_COMBAT_VARIANCE_LOW"`
	VarianceHigh         float64 `yaml:"variance_high" env:"DELVE_COMBAT_VARIANCE_HIGH"`
	CritChanceBase       float64 `yaml:"crit_chance_base" env:"DELVE_COMBAT_CRIT_CHANCE_BASE"`
	CritChanceDPS        float64 `yaml:"crit_chance_dps" env:"DELVE_COMBAT_CRIT_CHANCE_DPS"`
	CritMultiplier       float64 `yaml:"crit_multiplier" env:"DELVE_COMBAT_CRIT_MULTIPLIER"`
	DodgeThreshold       int32   `yaml:"dodge_threshold" env:"DELVE_COMBAT_DODGE_THRESHOLD"`
	DodgePerPoint        float64 `yaml:"dodge_per_point" env:"DELVE_COMBAT_DODGE_PER_POINT"`
	DodgeDiffPerPoint    float64 `yaml:"dodge_diff_per_point" env:"DELVE_COMBAT_DODGE_DIFF_PER_POINT"`
	DodgeCap             float64 `yaml:"dodge_cap" env:"DELVE_COMBAT_DODGE_CAP"`
	DoubleAttackPerPoint float64 `yaml:"double_attack_per_point" env:"DELVE_COMBAT_DOUBLE_ATTACK_PER_POINT"`
	DoubleAttackCap      float64 `yaml:"double_attack_cap" env:"DELVE_COMBAT_DOUBLE_ATTACK_CAP"`
	ExecuteMultiplier    float64 `yaml:"execute_multiplier" env:"DELVE_COMBAT_EXECUTE_MULTIPLIER"`

	MonsterScaling     float64 `yaml:"monster_scaling" env:"DELVE_COMBAT_MONSTER_SCALING"`
	HeroScaling        float64 `yaml:"hero_scaling" env:"DELVE_COMBAT_HERO_SCALING"`
	XPPerLevel         int64   `yaml:"xp_per_level" env:"DELVE_COMBAT_XP_PER_LEVEL"`
	GoldPerLevel       int64   `yaml:"gold_per_level" env:"DELVE_COMBAT_GOLD_PER_LEVEL"`
	MaxVengeanceStacks int32   `yaml:"max_vengeance_stacks" env:"DELVE_COMBAT_MAX_VENGEANCE_STACKS"`
}

// Revive holds the death chain tuning.
type Revive struct {
	ScrollPercent float64 `yaml:"scroll_percent" env:"DELVE_REVIVE_SCROLL_PERCENT"`
}

// Boss holds the raid phase tuning.
type Boss struct {
	AddScaling  float64 `yaml:"add_scaling" env:"DELVE_BOSS_ADD_SCALING"`
	EnrageBonus float64 `yaml:"enrage_bonus" env:"DELVE_BOSS_ENRAGE_BONUS"`
}

// DefaultCombat mirrors the engine defaults.
func DefaultCombat() Combat {
	c := combat.DefaultConfig()
	s := session.DefaultConfig()
	return Combat{
		VarianceLow:          c.VarianceLow,
		VarianceHigh:         c.VarianceHigh,
		CritChanceBase:       c.CritChanceBase,
		CritChanceDPS:        c.CritChanceDPS,
		CritMultiplier:       c.CritMultiplier,
		DodgeThreshold:       c.DodgeThreshold,
		DodgePerPoint:        c.DodgePerPoint,
		DodgeDiffPerPoint:    c.DodgeDiffPerPoint,
		DodgeCap:             c.DodgeCap,
		DoubleAttackPerPoint: c.DoubleAttackPerPoint,
		DoubleAttackCap:      c.DoubleAttackCap,
		ExecuteMultiplier:    c.ExecuteMultiplier,
		MonsterScaling:       s.MonsterScaling,
		HeroScaling:          s.HeroScaling,
		XPPerLevel:           s.XPPerLevel,
		GoldPerLevel:         s.GoldPerLevel,
		MaxVengeanceStacks:   s.MaxVengeanceStacks,
	}
}

// DefaultRevive mirrors revive.DefaultConfig.
func DefaultRevive() Revive {
	return Revive{ScrollPercent: revive.DefaultConfig().ScrollPercent}
}

// DefaultBoss mirrors raid.DefaultConfig.
func DefaultBoss() Boss {
	r := raid.DefaultConfig()
	return Boss{AddScaling: r.AddScaling, EnrageBonus: r.EnrageBonus}
}

// Session converts the tuning groups into the engine configuration.
func (d Delve) Session() session.Config {
	c := d.Combat
	return session.Config{
		Combat: combat.Config{
			VarianceLow:          c.VarianceLow,
			VarianceHigh:         c.VarianceHigh,
			CritChanceBase:       c.CritChanceBase,
			CritChanceDPS:        c.CritChanceDPS,
			CritMultiplier:       c.CritMultiplier,
			DodgeThreshold:       c.DodgeThreshold,
			DodgePerPoint:        c.DodgePerPoint,
			DodgeDiffPerPoint:    c.DodgeDiffPerPoint,
			DodgeCap:             c.DodgeCap,
			DoubleAttackPerPoint: c.DoubleAttackPerPoint,
			DoubleAttackCap:      c.DoubleAttackCap,
			ExecuteMultiplier:    c.ExecuteMultiplier,
			EnrageBonus:          d.Boss.EnrageBonus,
		},
		Revive: revive.Config{ScrollPercent: d.Revive.ScrollPercent},
		Raid: raid.Config{
			AddScaling:  d.Boss.AddScaling,
			EnrageBonus: d.Boss.EnrageBonus,
		},
		MonsterScaling:     c.MonsterScaling,
		HeroScaling:        c.HeroScaling,
		XPPerLevel:         c.XPPerLevel,
		GoldPerLevel:       c.GoldPerLevel,
		MaxVengeanceStacks: c.MaxVengeanceStacks,
	}
}
