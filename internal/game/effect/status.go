// Package effect runs the per-turn bookkeeping of a unit: status effects
// (DOT, HOT, crowd control), timed buffs, cooldowns and summon lifetimes.
package effect

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/udisondev/delve/internal/model"
)

// maxStatuses caps active status effects per unit; the oldest is dropped.
const maxStatuses = 8

// LethalFunc resolves damage that would bring a unit to 0 hp. It applies the
// outcome and reports whether the unit is still alive.
type LethalFunc func(victim *model.Unit, damage int32, sourceID uint32) bool

// TurnStart is the result of evaluating statuses at the start of a turn.
type TurnStart struct {
	DOTDamage int32
	HOTHealed int32
	Skip      bool // stunned or frozen
	Died      bool // killed by a DOT; the rest of the turn must not run
}

// Processor evaluates status effects at turn start.
type Processor struct {
	// Lethal is called when a DOT tick would kill. Nil means plain death.
	Lethal LethalFunc
	// DOTArmor returns the armor-vs-DOT factor of a unit (0 = none).
	DOTArmor func(u *model.Unit) float64
	// HealingBonus returns the incoming healing bonus of a unit.
	HealingBonus func(u *model.Unit) float64
	// Immune reports whether damage to a unit is nullified. Immune units still
	// lose DOT duration.
	Immune func(u *model.Unit) bool
}

// ApplyStatus adds a status to the target honoring dot/cc immunity and the
// per-unit cap. Returns false if the effect was rejected.
func ApplyStatus(target *model.Unit, se model.StatusEffect) bool {
	if !target.IsAlive() || se.Remaining <= 0 {
		return false
	}
	if se.Kind == model.StatusDOT && target.HasBuff(model.BuffDOTImmune) {
		return false
	}
	if se.Kind.IsCrowdControl() && target.HasBuff(model.BuffCCImmune) {
		return false
	}
	if len(target.Statuses) >= maxStatuses && !hasSlot(target, se) {
		slog.Debug("status limit reached, removed oldest",
			"target", target.ID,
			"removed", target.Statuses[0].Kind.String())
		target.Statuses = append(target.Statuses[:0], target.Statuses[1:]...)
	}
	target.AddStatus(se)
	return true
}

// hasSlot reports whether se merges into an existing same-kind, same-source
// status.
func hasSlot(u *model.Unit, se model.StatusEffect) bool {
	for i := range u.Statuses {
		if u.Statuses[i].Kind == se.Kind && u.Statuses[i].SourceID == se.SourceID {
			return true
		}
	}
	return false
}

// StartTurn evaluates every status on u: DOT and HOT tick, crowd control
// marks the turn as skipped. Each evaluated effect loses exactly one turn and
// is removed at 0. A DOT death stops processing immediately.
func (p *Processor) StartTurn(u *model.Unit) TurnStart {
	var res TurnStart
	if !u.IsAlive() {
		res.Died = true
		return res
	}

	for i := range u.Statuses {
		se := &u.Statuses[i]
		switch se.Kind {
		case model.StatusDOT:
			if p.Immune != nil && p.Immune(u) {
				break
			}
			dmg := p.dotDamage(u, se)
			if dmg > 0 {
				res.DOTDamage += p.applyDOT(u, dmg, se.SourceID)
			}
		case model.StatusHOT:
			res.HOTHealed += u.Heal(p.healAmount(u, float64(se.Magnitude)*float64(max(se.Stacks, 1))))
		case model.StatusStun, model.StatusFreeze:
			if !u.HasBuff(model.BuffCCImmune) {
				res.Skip = true
			}
		case model.StatusSlow, model.StatusMark, model.StatusHealBlock:
			// read by initiative, damage and healing while active
		}
		se.Remaining--

		if !u.IsAlive() {
			res.Died = true
			break
		}
	}

	compact(u)
	return res
}

func (p *Processor) dotDamage(u *model.Unit, se *model.StatusEffect) int32 {
	if u.HasBuff(model.BuffDOTImmune) {
		return 0
	}
	dmg := float64(se.Magnitude) * float64(max(se.Stacks, 1))
	if p.DOTArmor != nil {
		if f := p.DOTArmor(u); f > 0 {
			dmg -= float64(u.Stats.Defense) * f
		}
	}
	return max(int32(math.Floor(dmg)), 1)
}

func (p *Processor) applyDOT(u *model.Unit, dmg int32, source uint32) int32 {
	if dmg < u.Stats.HP {
		return u.ReduceHP(dmg)
	}
	hp := u.Stats.HP
	if p.Lethal != nil {
		p.Lethal(u, dmg, source)
	} else {
		u.SetHP(0)
	}
	return hp
}

func (p *Processor) healAmount(u *model.Unit, base float64) int32 {
	bonus := 0.0
	if p.HealingBonus != nil {
		bonus = p.HealingBonus(u)
	}
	return ScaleHeal(u, base, bonus)
}

// compact drops expired statuses in place.
func compact(u *model.Unit) {
	kept := u.Statuses[:0]
	for _, se := range u.Statuses {
		if se.Remaining > 0 {
			kept = append(kept, se)
		}
	}
	u.Statuses = kept
}

// HealingReduction returns the summed healing reduction on u clamped to 1.
// Heal-block statuses carry a percentage, the buff a fraction.
func HealingReduction(u *model.Unit) float64 {
	r := float64(u.StatusMagnitude(model.StatusHealBlock))/100 + u.BuffValue(model.BuffHealingReduction)
	return min(max(r, 0), 1)
}

// ScaleHeal applies a healing bonus and the target's healing reduction to a
// raw amount. The result is not clamped to missing hp; Unit.Heal does that.
func ScaleHeal(u *model.Unit, amount, bonus float64) int32 {
	v := amount * (1 + bonus) * (1 - HealingReduction(u))
	return max(int32(math.Floor(v)), 0)
}

// CheckStatuses reports an invariant violation on u's status list.
func CheckStatuses(u *model.Unit) error {
	for _, se := range u.Statuses {
		if se.Remaining < 0 {
			return fmt.Errorf("unit %d: status %s has negative duration %d", u.ID, se.Kind, se.Remaining)
		}
	}
	for kind, b := range u.Buffs {
		if b.Remaining < 0 {
			return fmt.Errorf("unit %d: buff %s has negative duration %d", u.ID, kind, b.Remaining)
		}
	}
	return nil
}
