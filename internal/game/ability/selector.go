// Package ability picks the skill a hero uses on its turn.
package ability

import (
	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/effect"
	"github.com/udisondev/delve/internal/model"
)

// HP lines used by the heuristic, as fractions of max hp.
const (
	CriticalHP = 0.25
	WoundedHP  = 0.5
	HurtHP     = 0.75
)

// Lookup resolves skill ids.
type Lookup interface {
	Skill(id string) *data.SkillDefinition
}

// Situation is what the hero sees when choosing.
type Situation struct {
	Hero        *model.Unit
	Allies      []*model.Unit // living, hero included
	Enemies     []*model.Unit // living
	BossPresent bool
}

// rule returns a skill or nil to fall through to the next rule.
type rule struct {
	name string
	pick func(sit *Situation, avail []*data.SkillDefinition) *data.SkillDefinition
}

// rules is the priority list; the first rule that returns a skill wins.
var rules = []rule{
	{"critical ally", func(sit *Situation, avail []*data.SkillDefinition) *data.SkillDefinition {
		if countBelow(sit.Allies, CriticalHP) == 0 {
			return nil
		}
		if s := first(avail, (*data.SkillDefinition).IsHeal); s != nil {
			return s
		}
		return first(avail, (*data.SkillDefinition).IsShield)
	}},
	{"party hurt", func(sit *Situation, avail []*data.SkillDefinition) *data.SkillDefinition {
		if countBelow(sit.Allies, HurtHP) < 2 {
			return nil
		}
		return first(avail, (*data.SkillDefinition).IsPartyDefensiveBuff)
	}},
	{"execute", func(sit *Situation, avail []*data.SkillDefinition) *data.SkillDefinition {
		if countBelow(sit.Enemies, CriticalHP) == 0 {
			return nil
		}
		return first(avail, (*data.SkillDefinition).IsExecute)
	}},
	{"crowd", func(sit *Situation, avail []*data.SkillDefinition) *data.SkillDefinition {
		if len(sit.Enemies) < 3 {
			return nil
		}
		return first(avail, (*data.SkillDefinition).IsAoEDamage)
	}},
	{"wounded ally", func(sit *Situation, avail []*data.SkillDefinition) *data.SkillDefinition {
		if countBelow(sit.Allies, WoundedHP) == 0 {
			return nil
		}
		return first(avail, (*data.SkillDefinition).IsHeal)
	}},
	{"boss debuff", func(sit *Situation, avail []*data.SkillDefinition) *data.SkillDefinition {
		if !sit.BossPresent {
			return nil
		}
		return first(avail, (*data.SkillDefinition).IsControlDebuff)
	}},
	{"pair", func(sit *Situation, avail []*data.SkillDefinition) *data.SkillDefinition {
		if len(sit.Enemies) < 2 {
			return nil
		}
		return first(avail, (*data.SkillDefinition).IsAoEDamage)
	}},
	{"strongest", func(sit *Situation, avail []*data.SkillDefinition) *data.SkillDefinition {
		if len(sit.Enemies) == 1 {
			single := func(s *data.SkillDefinition) bool { return s.IsDamage() && !s.IsAoEDamage() }
			if s := strongest(avail, single); s != nil {
				return s
			}
		}
		return strongest(avail, (*data.SkillDefinition).IsDamage)
	}},
	{"fallback", func(_ *Situation, avail []*data.SkillDefinition) *data.SkillDefinition {
		if s := first(avail, (*data.SkillDefinition).IsDot); s != nil {
			return s
		}
		if len(avail) > 0 {
			return avail[0]
		}
		return nil
	}},
}

// RuleNames returns the heuristic's rule names in priority order.
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

// Selector — выбор скилла героя.
type Selector struct {
	reg   Lookup
	avail []*data.SkillDefinition // reused between calls
}

// NewSelector creates a Selector over the given skill table.
func NewSelector(reg Lookup) *Selector {
	return &Selector{reg: reg}
}

// Select returns the skill the hero should use, or nil for a basic attack.
// Only known skills off cooldown are eligible. Select does not consume the
// cooldown; see ConsumeCooldown.
func (s *Selector) Select(sit Situation) *data.SkillDefinition {
	skill, _ := s.SelectRule(sit)
	return skill
}

// SelectRule is Select that also reports which rule matched ("" for none).
func (s *Selector) SelectRule(sit Situation) (*data.SkillDefinition, string) {
	s.avail = s.avail[:0]
	for _, id := range sit.Hero.Skills {
		def := s.reg.Skill(id)
		if def == nil || sit.Hero.Cooldown(id) > 0 {
			continue
		}
		s.avail = append(s.avail, def)
	}
	if len(s.avail) == 0 {
		return nil, ""
	}
	for _, r := range rules {
		if skill := r.pick(&sit, s.avail); skill != nil {
			return skill, r.name
		}
	}
	return nil, ""
}

// ConsumeCooldown stamps the skill's cooldown on u, shortened by reduction
// whole turns (floor 0).
func ConsumeCooldown(u *model.Unit, skill *data.SkillDefinition, reduction float64) {
	u.SetCooldown(skill.ID, effect.ReduceCooldown(skill.Cooldown, reduction))
}

func countBelow(units []*model.Unit, line float64) int {
	n := 0
	for _, u := range units {
		if u.IsAlive() && u.HPPercent() < line {
			n++
		}
	}
	return n
}

func first(avail []*data.SkillDefinition, ok func(*data.SkillDefinition) bool) *data.SkillDefinition {
	for _, s := range avail {
		if ok(s) {
			return s
		}
	}
	return nil
}

// strongest returns the matching skill with the highest effective
// multiplier; ties keep list order.
func strongest(avail []*data.SkillDefinition, ok func(*data.SkillDefinition) bool) *data.SkillDefinition {
	var best *data.SkillDefinition
	for _, s := range avail {
		if !ok(s) {
			continue
		}
		if best == nil || s.EffectiveMultiplier() > best.EffectiveMultiplier() {
			best = s
		}
	}
	return best
}
