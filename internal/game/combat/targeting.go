package combat

import (
	"cmp"
	"slices"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/model"
)

// Battlefield is the read view of a combat session the resolver works on.
type Battlefield interface {
	// Enemies returns living units hostile to u.
	Enemies(u *model.Unit) []*model.Unit
	// Allies returns living units on u's side, u included.
	Allies(u *model.Unit) []*model.Unit
	// Distance returns the tile distance between two units (0 if unknown).
	Distance(a, b *model.Unit) int32
	// LineOfSight reports whether a can see b.
	LineOfSight(a, b *model.Unit) bool
	// BeginAttack returns the trigger context for attacker hitting target and
	// records that attacker has attacked this encounter.
	BeginAttack(attacker, target *model.Unit) passive.Situation
	// HealingBonus returns the healing bonus u has this turn.
	HealingBonus(u *model.Unit) float64
	// Round returns the current round number.
	Round() int
}

// candidate is a target with its precomputed sort keys.
type candidate struct {
	u      *model.Unit
	dist   int32
	threat float64
}

// SelectTarget picks the enemy attacker should hit. Rules, in order:
//  1. enemies with an active taunt are the only candidates;
//  2. invisible enemies are skipped unless every candidate is invisible;
//  3. enemies in line of sight are preferred;
//  4. nearest first, then highest threat, then lowest current hp, then lowest id.
func SelectTarget(attacker *model.Unit, enemies []*model.Unit, bf Battlefield, passives *passive.Evaluator) *model.Unit {
	pool := make([]*model.Unit, 0, len(enemies))
	for _, e := range enemies {
		if e.IsAlive() && !e.SameSide(attacker) {
			pool = append(pool, e)
		}
	}
	if len(pool) == 0 {
		return nil
	}

	pool = narrow(pool, func(u *model.Unit) bool { return u.HasBuff(model.BuffTaunt) })
	pool = narrow(pool, func(u *model.Unit) bool { return !u.HasBuff(model.BuffInvisible) })
	pool = narrow(pool, func(u *model.Unit) bool { return bf.LineOfSight(attacker, u) })

	cands := make([]candidate, len(pool))
	for i, u := range pool {
		c := candidate{u: u, dist: bf.Distance(attacker, u)}
		if passives != nil {
			var b passive.Bonuses
			passives.Evaluate(data.TriggerDefend, u, passive.Situation{Target: attacker}, &b)
			c.threat = b.Threat
		}
		cands[i] = c
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		if c := cmp.Compare(b.threat, a.threat); c != 0 {
			return c
		}
		if c := cmp.Compare(a.u.HP(), b.u.HP()); c != 0 {
			return c
		}
		return cmp.Compare(a.u.ID, b.u.ID)
	})
	return cands[0].u
}

// narrow keeps the units matching keep, unless none do.
func narrow(pool []*model.Unit, keep func(*model.Unit) bool) []*model.Unit {
	n := 0
	for _, u := range pool {
		if keep(u) {
			n++
		}
	}
	if n == 0 || n == len(pool) {
		return pool
	}
	out := make([]*model.Unit, 0, n)
	for _, u := range pool {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

// LowestHPAlly returns the living ally with the lowest hp fraction, ties by id.
func LowestHPAlly(allies []*model.Unit) *model.Unit {
	var best *model.Unit
	for _, a := range allies {
		if !a.IsAlive() {
			continue
		}
		if best == nil || a.HPPercent() < best.HPPercent() ||
			(a.HPPercent() == best.HPPercent() && a.ID < best.ID) {
			best = a
		}
	}
	return best
}
