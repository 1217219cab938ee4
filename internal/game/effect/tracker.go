package effect

import (
	"log/slog"
	"math"
	"slices"

	"github.com/udisondev/delve/internal/model"
)

// BuffTick is the result of one Tracker.Tick.
type BuffTick struct {
	HOTHealed int32
	Faded     []model.BuffKind
}

// Tracker decrements timed buffs once per turn, before ability selection.
type Tracker struct {
	// HealingBonus returns the incoming healing bonus of a unit.
	HealingBonus func(u *model.Unit) float64

	faded []model.BuffKind
}

// Tick applies the heal_over_time buff, decrements every buff and the
// vengeance timer, and removes what reached 0. The returned Faded slice is
// reused by the next call.
func (t *Tracker) Tick(u *model.Unit) BuffTick {
	t.faded = t.faded[:0]
	var res BuffTick

	if b, ok := u.Buffs[model.BuffHealOverTime]; ok && b.Remaining > 0 && u.IsAlive() {
		amount := b.Value
		if b.Remaining == 1 && b.FinalTickBonus > 0 {
			amount *= b.FinalTickBonus
		}
		bonus := 0.0
		if t.HealingBonus != nil {
			bonus = t.HealingBonus(u)
		}
		res.HOTHealed = u.Heal(ScaleHeal(u, amount, bonus))
	}

	for kind, b := range u.Buffs {
		if kind == model.BuffExtraTurn {
			// consumed by EndTurn, not by time
			continue
		}
		b.Remaining--
		if b.Remaining <= 0 {
			t.faded = append(t.faded, kind)
		}
	}
	slices.Sort(t.faded)
	for _, kind := range t.faded {
		u.RemoveBuff(kind)
		slog.Debug("effect faded", "unit", u.ID, "buff", string(kind))
	}

	if u.Vengeance.Remaining > 0 {
		u.Vengeance.Remaining--
		if u.Vengeance.Remaining == 0 {
			u.Vengeance.Stacks = 0
			t.faded = append(t.faded, "vengeance")
		}
	}

	res.Faded = t.faded
	return res
}

// EndTurn consumes an extra_turn buff and reports whether the unit acts again.
func EndTurn(u *model.Unit) bool {
	if !u.HasBuff(model.BuffExtraTurn) || !u.IsAlive() {
		return false
	}
	u.RemoveBuff(model.BuffExtraTurn)
	return true
}

// TickCooldowns decrements every cooldown of u by one, removing those at 0.
// A cooldown of N stamped on turn T makes the ability usable again on turn T+N.
func TickCooldowns(u *model.Unit) {
	for id, cd := range u.Cooldowns {
		if cd <= 1 {
			delete(u.Cooldowns, id)
			continue
		}
		u.Cooldowns[id] = cd - 1
	}
}

// ReduceCooldown returns base minus reduction, floored at 0.
func ReduceCooldown(base int32, reduction float64) int32 {
	return max(base-int32(math.Floor(reduction)), 0)
}

// TickSummon counts down a temporary summon at the start of its own turn and
// reports whether it expired. Expired summons drop to 0 hp without death hooks.
func TickSummon(u *model.Unit) bool {
	if u.Summon == nil || u.Summon.TurnsRemaining <= 0 {
		return false
	}
	u.Summon.TurnsRemaining--
	if u.Summon.TurnsRemaining > 0 {
		return false
	}
	u.SetHP(0)
	u.ClearBuffs()
	u.ClearStatuses()
	return true
}

// Strip removes every transient modifier from u (abandon, death).
func Strip(u *model.Unit) {
	u.ClearBuffs()
	u.ClearStatuses()
}

// GrantShield installs an absorb pool, keeping the larger of old and new.
func GrantShield(u *model.Unit, amount, duration int32) {
	if amount <= 0 || duration <= 0 {
		return
	}
	u.SetBuff(model.BuffShield, model.Buff{Value: float64(amount), Remaining: duration})
	u.Shield = max(u.Shield, amount)
}

// AddVengeance adds one stack and refreshes the timer.
func AddVengeance(u *model.Unit, perStack float64, duration int32, maxStacks int32) {
	v := &u.Vengeance
	if maxStacks <= 0 || v.Stacks < maxStacks {
		v.Stacks++
	}
	v.PerStack = perStack
	v.Remaining = max(v.Remaining, duration)
}
