package combat

import (
	"log/slog"
	"math"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/effect"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/model"
)

// Action is a skill or monster ability resolved against the battlefield.
type Action struct {
	ID      string
	Name    string
	Target  data.TargetSelector
	Effects data.EffectList
}

// SkillAction adapts a hero skill.
func SkillAction(s *data.SkillDefinition) Action {
	return Action{ID: s.ID, Name: s.Name, Target: s.Target, Effects: s.Effects}
}

// AbilityAction adapts a monster ability.
func AbilityAction(a *data.MonsterAbility) Action {
	return Action{ID: a.ID, Name: a.Name, Target: a.Target, Effects: a.Effects}
}

// UseSkill resolves a hero skill.
func (r *Resolver) UseSkill(caster *model.Unit, s *data.SkillDefinition) ActionResult {
	return r.Use(caster, SkillAction(s))
}

// UseAbility resolves a monster ability.
func (r *Resolver) UseAbility(caster *model.Unit, a *data.MonsterAbility) ActionResult {
	return r.Use(caster, AbilityAction(a))
}

// ActionResult is the outcome of Use.
type ActionResult struct {
	Targets []uint32
	Hits    []HitResult
	Healed  int32
	Applied int // status effects and buffs that landed
}

// Damage returns total damage dealt by the action.
func (r ActionResult) Damage() int32 {
	var total int32
	for _, h := range r.Hits {
		total += h.Damage
	}
	return total
}

// Targets resolves a selector to living units.
func (r *Resolver) Targets(caster *model.Unit, sel data.TargetSelector) []*model.Unit {
	switch sel {
	case data.TargetSelf:
		return []*model.Unit{caster}
	case data.TargetLowestHPAlly:
		if a := LowestHPAlly(r.bf.Allies(caster)); a != nil {
			return []*model.Unit{a}
		}
	case data.TargetAllAllies:
		return r.bf.Allies(caster)
	case data.TargetSingleEnemy:
		if e := SelectTarget(caster, r.bf.Enemies(caster), r.bf, r.passives); e != nil {
			return []*model.Unit{e}
		}
	case data.TargetAllEnemies:
		return r.bf.Enemies(caster)
	}
	return nil
}

// Use resolves every effect of the action on each selected target, in the
// order the effects are listed.
func (r *Resolver) Use(caster *model.Unit, a Action) ActionResult {
	var res ActionResult
	if !caster.IsAlive() {
		return res
	}
	targets := r.Targets(caster, a.Target)
	for _, t := range targets {
		res.Targets = append(res.Targets, t.ID)
	}
	for _, t := range targets {
		for _, e := range a.Effects {
			if !r.apply(caster, t, e, &res) {
				slog.Warn("unhandled effect", "action", a.ID, "kind", e.Kind().String())
			}
		}
	}

	if !r.quiet {
		var target *model.Unit
		if len(targets) == 1 {
			target = targets[0]
		}
		r.log(hooks.LogSkill, caster, target, "%s uses %s (damage %d, healed %d)", caster.Name, a.Name, res.Damage(), res.Healed)
	}
	return res
}

// apply dispatches one effect. Returns false for an effect type it does not know.
func (r *Resolver) apply(caster, t *model.Unit, eff data.Effect, res *ActionResult) bool {
	switch e := eff.(type) {
	case data.DamageEffect:
		if !t.IsAlive() {
			return true
		}
		spec := hitSpec{
			multiplier:        e.Multiplier,
			armorPen:          e.ArmorPen,
			executeThreshold:  e.ExecuteThreshold,
			executeMultiplier: e.ExecuteMultiplier,
		}
		var atkB passive.Bonuses
		r.attackBonuses(caster, t, &atkB)
		for range e.HitCount() {
			if !t.IsAlive() || !caster.IsAlive() {
				break
			}
			res.Hits = append(res.Hits, r.strike(caster, t, spec, &atkB))
		}

	case data.HealEffect:
		amount := float64(t.MaxHP()) * e.Percent
		res.Healed += r.ApplyHeal(caster, t, amount, r.bf.HealingBonus(caster))

	case data.ShieldEffect:
		if !t.IsAlive() {
			return true
		}
		amount := int32(math.Floor(float64(caster.MaxHP()) * e.Percent))
		effect.GrantShield(t, amount, e.Duration)
		r.emit("shield", caster, t, amount)
		res.Applied++

	case data.BuffEffect:
		if !t.IsAlive() {
			return true
		}
		if e.Buff == model.BuffShield {
			effect.GrantShield(t, int32(e.Value), e.Duration)
		} else {
			t.SetBuff(e.Buff, model.Buff{Value: e.Value, Remaining: e.Duration})
		}
		res.Applied++

	case data.DebuffEffect:
		if r.debuff(caster, t, e) {
			res.Applied++
		}

	case data.DotEffect:
		mag := max(int32(math.Floor(float64(caster.Stats.Attack)*e.Multiplier)), 1)
		if effect.ApplyStatus(t, model.StatusEffect{Kind: model.StatusDOT, Remaining: e.Duration, SourceID: caster.ID, Magnitude: mag}) {
			res.Applied++
		}

	case data.HotEffect:
		if !t.IsAlive() {
			return true
		}
		per := max(int32(math.Floor(float64(t.MaxHP())*e.Percent)), 1)
		if e.FinalTickBonus > 0 {
			t.SetBuff(model.BuffHealOverTime, model.Buff{Value: float64(per), Remaining: e.Duration, FinalTickBonus: e.FinalTickBonus})
		} else if !effect.ApplyStatus(t, model.StatusEffect{Kind: model.StatusHOT, Remaining: e.Duration, SourceID: caster.ID, Magnitude: per}) {
			return true
		}
		res.Applied++

	default:
		return false
	}
	return true
}

// debuff applies a debuff either as a target buff or as a status effect.
func (r *Resolver) debuff(caster, t *model.Unit, e data.DebuffEffect) bool {
	if !t.IsAlive() {
		return false
	}
	var buff model.BuffKind
	switch e.Debuff {
	case data.DebuffAttackDown:
		buff = model.BuffAttackDown
	case data.DebuffDamageAmplify:
		buff = model.BuffDamageAmplify
	case data.DebuffVulnerability:
		buff = model.BuffVulnerability
	case data.DebuffWeakness:
		buff = model.BuffWeakness
	}
	if buff != "" {
		t.SetBuff(buff, model.Buff{Value: e.Value, Remaining: e.Duration})
		return true
	}

	se := model.StatusEffect{Remaining: e.Duration, SourceID: caster.ID}
	switch e.Debuff {
	case data.DebuffStun:
		se.Kind = model.StatusStun
	case data.DebuffFreeze:
		se.Kind = model.StatusFreeze
	case data.DebuffSlow:
		se.Kind = model.StatusSlow
		se.Magnitude = int32(e.Value)
	case data.DebuffMark:
		se.Kind = model.StatusMark
		se.Magnitude = int32(math.Round(e.Value * 100))
	case data.DebuffHealBlock:
		se.Kind = model.StatusHealBlock
		se.Magnitude = int32(math.Round(e.Value * 100))
	default:
		return false
	}
	ok := effect.ApplyStatus(t, se)
	if ok {
		r.emit(se.Kind.String(), caster, t, se.Magnitude)
	}
	return ok
}
