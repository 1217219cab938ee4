package session

import (
	"slices"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/model"
)

// Enemies returns living units hostile to u, in encounter order.
func (s *Session) Enemies(u *model.Unit) []*model.Unit {
	out := make([]*model.Unit, 0, len(s.units))
	for _, o := range s.units {
		if o.IsAlive() && o.Side != u.Side {
			out = append(out, o)
		}
	}
	return out
}

// Allies returns living units on u's side, u included.
func (s *Session) Allies(u *model.Unit) []*model.Unit {
	out := make([]*model.Unit, 0, len(s.units))
	for _, o := range s.units {
		if o.IsAlive() && o.Side == u.Side {
			out = append(out, o)
		}
	}
	return out
}

// livingAllies supplies martyr candidates to the revive handler.
func (s *Session) livingAllies(victim *model.Unit) []*model.Unit {
	return s.Allies(victim)
}

// Distance is the Chebyshev tile distance, 0 if either position is unknown.
func (s *Session) Distance(a, b *model.Unit) int32 {
	pa, ok := s.hooks.Positioner.Position(a.ID)
	if !ok {
		return 0
	}
	pb, ok := s.hooks.Positioner.Position(b.ID)
	if !ok {
		return 0
	}
	return pa.Chebyshev(pb)
}

// LineOfSight asks the positioner; unknown positions see each other.
func (s *Session) LineOfSight(a, b *model.Unit) bool {
	pa, ok := s.hooks.Positioner.Position(a.ID)
	if !ok {
		return true
	}
	pb, ok := s.hooks.Positioner.Position(b.ID)
	if !ok {
		return true
	}
	return s.hooks.Positioner.LineOfSight(pa, pb)
}

// BeginAttack builds the on_attack context and marks the attacker's first
// attack of the encounter as spent.
func (s *Session) BeginAttack(attacker, target *model.Unit) passive.Situation {
	sit := passive.Situation{
		Target:      target,
		Distance:    s.Distance(attacker, target),
		FirstAttack: !s.attacked[attacker.ID],
		KillStreak:  s.streaks[attacker.ID],
	}
	s.attacked[attacker.ID] = true
	return sit
}

// HealingBonus returns the on_turn_start healing bonus of the current actor.
func (s *Session) HealingBonus(u *model.Unit) float64 {
	if u.ID != s.curID {
		return 0
	}
	return s.turnB.HealingBonus
}

func (s *Session) dotArmor(u *model.Unit) float64 {
	if u.ID != s.curID {
		return 0
	}
	return s.turnB.DOTArmor
}

// Round returns the current round number.
func (s *Session) Round() int { return s.order.Round() }

// SpawnAdd puts a boss add on the battlefield at the end of the current round.
func (s *Session) SpawnAdd(boss *model.Unit, tmpl *data.MonsterTemplate, stats model.Stats) *model.Unit {
	add := &model.Unit{
		ID:          s.nextID,
		Name:        tmpl.Name,
		Kind:        model.KindSummon,
		Side:        boss.Side,
		Level:       boss.Level,
		Stats:       stats,
		AttackRange: max(tmpl.AttackRange, 1),
		TemplateID:  tmpl.ID,
		Abilities:   slices.Clone(tmpl.Abilities),
		Passives:    slices.Clone(tmpl.Passives),
		Summon:      &model.SummonInfo{OwnerID: boss.ID, Kind: model.SummonUndead},
	}
	s.nextID++
	s.units = append(s.units, add)
	s.byID[add.ID] = add
	s.encounterStart(add)
	s.order.Insert(add)
	s.logf(hooks.LogSystem, boss, add, "%s summons %s", boss.Name, add.Name)
	return add
}
