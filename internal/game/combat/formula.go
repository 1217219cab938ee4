package combat

import (
	"math"

	"github.com/udisondev/delve/internal/game/dice"
)

// Config — настройки формул урона.
type Config struct {
	// Variance band of every hit, [VarianceLow, VarianceHigh).
	VarianceLow  float64
	VarianceHigh float64

	// Crit chance baselines; DPS-flagged heroes use CritChanceDPS.
	CritChanceBase float64
	CritChanceDPS  float64
	CritMultiplier float64

	// Dodge: DodgePerPoint per speed point above DodgeThreshold plus
	// DodgeDiffPerPoint per point of speed over the attacker, capped at DodgeCap.
	DodgeThreshold    int32
	DodgePerPoint     float64
	DodgeDiffPerPoint float64
	DodgeCap          float64

	// Double attack: DoubleAttackPerPoint per point of speed over the defender.
	DoubleAttackPerPoint float64
	DoubleAttackCap      float64

	// ExecuteMultiplier applies when an execute threshold carries no own multiplier.
	ExecuteMultiplier float64
	// EnrageBonus is the flat damage bonus of an enraged boss.
	EnrageBonus float64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		VarianceLow:          0.85,
		VarianceHigh:         1.15,
		CritChanceBase:       0.05,
		CritChanceDPS:        0.15,
		CritMultiplier:       1.5,
		DodgeThreshold:       10,
		DodgePerPoint:        0.01,
		DodgeDiffPerPoint:    0.01,
		DodgeCap:             0.4,
		DoubleAttackPerPoint: 0.02,
		DoubleAttackCap:      0.3,
		ExecuteMultiplier:    2.0,
		EnrageBonus:          0.5,
	}
}

// BaseDamage returns attack - defense*0.5, with armorPen (0..1) scaling
// defense down first. May be negative; CalcDamage floors the result.
func BaseDamage(attack, defense int32, armorPen float64) float64 {
	def := float64(defense) * (1 - min(max(armorPen, 0), 1))
	return float64(attack) - def*0.5
}

// CalcDamage returns max(1, floor(base × multiplier × variance)).
func CalcDamage(base, multiplier, variance float64) int32 {
	dmg := math.Floor(base * multiplier * variance)
	if dmg < 1 {
		return 1
	}
	if dmg > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(dmg)
}

// RollVariance rolls the variance factor.
func RollVariance(cfg Config, src dice.Source) float64 {
	return dice.Between(src, cfg.VarianceLow, cfg.VarianceHigh)
}

// DodgeChance is non-decreasing in the defender's speed and in the speed
// differential, capped at cfg.DodgeCap. bonus adds evasion before the cap.
func DodgeChance(cfg Config, defenderSpeed, attackerSpeed int32, bonus float64) float64 {
	chance := float64(max(defenderSpeed-cfg.DodgeThreshold, 0)) * cfg.DodgePerPoint
	chance += float64(max(defenderSpeed-attackerSpeed, 0)) * cfg.DodgeDiffPerPoint
	chance += bonus
	return min(max(chance, 0), cfg.DodgeCap)
}

// DoubleAttackChance is non-decreasing in attacker speed minus defender
// speed, capped at cfg.DoubleAttackCap.
func DoubleAttackChance(cfg Config, attackerSpeed, defenderSpeed int32, bonus float64) float64 {
	chance := float64(max(attackerSpeed-defenderSpeed, 0))*cfg.DoubleAttackPerPoint + bonus
	return min(max(chance, 0), cfg.DoubleAttackCap)
}

// CritChance returns the crit chance for an attacker.
func CritChance(cfg Config, dps bool, bonus float64) float64 {
	base := cfg.CritChanceBase
	if dps {
		base = cfg.CritChanceDPS
	}
	return min(max(base+bonus, 0), 1)
}
