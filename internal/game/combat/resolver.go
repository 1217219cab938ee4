// Package combat resolves attacks, skills and monster abilities: damage,
// crits, dodge, double attack, cleave, reflect, lifesteal, shields and heals.
package combat

import (
	"fmt"
	"math"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/dice"
	"github.com/udisondev/delve/internal/game/effect"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/game/revive"
	"github.com/udisondev/delve/internal/game/turnorder"
	"github.com/udisondev/delve/internal/game/unique"
	"github.com/udisondev/delve/internal/model"
)

// Phases is the boss phase machine as seen by the damage pipeline.
type Phases interface {
	// IsImmune reports whether damage to u is currently nullified.
	IsImmune(u *model.Unit) bool
	// Modifiers returns the outgoing damage bonus and incoming damage
	// reduction of u's current phase (enrage included).
	Modifiers(u *model.Unit) (damageBonus, damageReduction float64)
	// OnDamage is called after a boss took damage and survived.
	OnDamage(u *model.Unit)
}

// HitResult — результат одного удара.
type HitResult struct {
	AttackerID uint32
	TargetID   uint32
	Damage     int32
	Absorbed   int32
	Reflected  int32
	Healed     int32 // lifesteal
	Dodged     bool
	Crit       bool
	Immune     bool
	Killed     bool
}

// AttackResult is the outcome of a basic attack.
type AttackResult struct {
	Hits         []HitResult
	DoubleAttack bool
	Cleaved      int32
}

// DamageResult is the outcome of ApplyDamage.
type DamageResult struct {
	Dealt    int32
	Absorbed int32
	Immune   bool
	Killed   bool
	Outcome  *revive.Outcome
}

// hitSpec describes one hit of an attack or a damage effect.
type hitSpec struct {
	multiplier        float64
	armorPen          float64
	executeThreshold  float64
	executeMultiplier float64
}

var basicHit = hitSpec{multiplier: 1}

// Deps are the collaborators of a Resolver.
type Deps struct {
	Battlefield Battlefield
	Passives    *passive.Evaluator
	Uniques     *unique.Engine
	Revive      *revive.Handler
	Phases      Phases
	Hooks       hooks.Set
}

// Resolver applies combat actions to the units of one session.
type Resolver struct {
	cfg      Config
	src      dice.Source
	bf       Battlefield
	passives *passive.Evaluator
	uniques  *unique.Engine
	revive   *revive.Handler
	phases   Phases
	hooks    hooks.Set

	// quiet skips building log messages nobody reads.
	quiet bool
}

// NewResolver создаёт Resolver.
func NewResolver(cfg Config, src dice.Source, deps Deps) *Resolver {
	h := deps.Hooks.Normalize()
	_, quiet := h.Events.(hooks.Nop)
	return &Resolver{
		cfg:      cfg,
		src:      src,
		bf:       deps.Battlefield,
		passives: deps.Passives,
		uniques:  deps.Uniques,
		revive:   deps.Revive,
		phases:   deps.Phases,
		hooks:    h,
		quiet:    quiet,
	}
}

// Config returns the damage tuning.
func (r *Resolver) Config() Config { return r.cfg }

// Quiet reports whether log entries are discarded.
func (r *Resolver) Quiet() bool { return r.quiet }

// BasicAttack performs a basic attack with dodge, crit, cleave and double attack.
func (r *Resolver) BasicAttack(att, tgt *model.Unit) AttackResult {
	var res AttackResult
	if !att.IsAlive() || !tgt.IsAlive() {
		return res
	}

	var atkB passive.Bonuses
	r.attackBonuses(att, tgt, &atkB)

	first := r.strike(att, tgt, basicHit, &atkB)
	res.Hits = append(res.Hits, first)

	if !first.Dodged && first.Damage > 0 {
		cleave := min(atkB.Cleave+att.BuffValue(model.BuffAoEAttacks), 1)
		if cleave > 0 {
			amount := max(int32(math.Floor(float64(first.Damage)*cleave)), 1)
			for _, e := range r.bf.Enemies(att) {
				if e.ID == tgt.ID {
					continue
				}
				res.Cleaved += r.ApplyDamage(att, e, amount).Dealt
			}
		}
	}

	if att.IsAlive() && tgt.IsAlive() {
		as, _ := turnorder.BaseSpeed(att)
		ts, _ := turnorder.BaseSpeed(tgt)
		if dice.Chance(r.src, DoubleAttackChance(r.cfg, as, ts, atkB.DoubleAttack)) {
			res.DoubleAttack = true
			res.Hits = append(res.Hits, r.strike(att, tgt, basicHit, &atkB))
		}
	}

	r.logAttack(att, tgt, &res)
	return res
}

func (r *Resolver) attackBonuses(att, tgt *model.Unit, b *passive.Bonuses) {
	b.Reset()
	sit := r.bf.BeginAttack(att, tgt)
	r.passives.Attack(att, sit, b)
	r.uniques.Attack(att, sit, b)
	b.Clamp()
}

func (r *Resolver) triggerBonuses(trigger data.Trigger, u, other *model.Unit, b *passive.Bonuses) {
	sit := passive.Situation{Target: other}
	r.passives.Evaluate(trigger, u, sit, b)
	r.uniques.Evaluate(trigger, u, sit, b)
}

// strike resolves one hit: dodge, damage, crit, reflect and lifesteal.
func (r *Resolver) strike(att, tgt *model.Unit, spec hitSpec, atkB *passive.Bonuses) HitResult {
	res := HitResult{AttackerID: att.ID, TargetID: tgt.ID}
	if !tgt.IsAlive() || !att.IsAlive() {
		return res
	}

	var defB passive.Bonuses
	r.triggerBonuses(data.TriggerDefend, tgt, att, &defB)
	defB.Clamp()

	if !tgt.HasStatus(model.StatusStun) && !tgt.HasStatus(model.StatusFreeze) {
		ts, _ := turnorder.BaseSpeed(tgt)
		as, _ := turnorder.BaseSpeed(att)
		chance := DodgeChance(r.cfg, ts, as, defB.Dodge+tgt.Modifier(model.BuffEvasion))
		if dice.Chance(r.src, chance) {
			res.Dodged = true
			r.emit("dodge", att, tgt, 0)
			return res
		}
	}

	attack := float64(att.Stats.Attack) * (1 - min(att.BuffValue(model.BuffAttackDown), 1))
	base := BaseDamage(int32(attack), tgt.Stats.Defense, spec.armorPen)

	mult := spec.multiplier
	if threshold := max(spec.executeThreshold, atkB.ExecuteThreshold); threshold > 0 && tgt.HPPercent() <= threshold {
		em := spec.executeMultiplier
		if em <= 0 {
			em = r.cfg.ExecuteMultiplier
		}
		mult *= em
	}

	outgoing := 1 + atkB.DamageMultiplier + att.Modifier(model.BuffDamageBonus) +
		att.Vengeance.Bonus() - att.BuffValue(model.BuffWeakness)
	var reduction float64
	if r.phases != nil {
		bonus, _ := r.phases.Modifiers(att)
		outgoing += bonus
		_, red := r.phases.Modifiers(tgt)
		reduction += red
	}
	mult *= max(outgoing, 0)

	variance := RollVariance(r.cfg, r.src)

	lifesteal := atkB.Lifesteal
	if dice.Chance(r.src, CritChance(r.cfg, att.DPS, atkB.CritChance)) {
		res.Crit = true
		var critB passive.Bonuses
		r.triggerBonuses(data.TriggerCrit, att, tgt, &critB)
		mult *= r.cfg.CritMultiplier + critB.CritDamage + atkB.CritDamage
		lifesteal += critB.Lifesteal
	}

	incoming := 1 + tgt.BuffValue(model.BuffVulnerability) + tgt.BuffValue(model.BuffDamageAmplify) +
		float64(tgt.StatusMagnitude(model.StatusMark))/100
	reduction += defB.DamageReduction + tgt.Modifier(model.BuffDamageReduction)
	mult *= incoming * (1 - min(max(reduction, 0), 1))

	dmg := CalcDamage(base, mult, variance)
	d := r.ApplyDamage(att, tgt, dmg)
	res.Damage = d.Dealt
	res.Absorbed = d.Absorbed
	res.Immune = d.Immune
	res.Killed = d.Killed

	kind := "hit"
	switch {
	case d.Immune:
		kind = "immune"
	case res.Crit:
		kind = "crit"
	}
	r.emit(kind, att, tgt, d.Dealt)

	if d.Dealt <= 0 {
		return res
	}

	var hitB passive.Bonuses
	r.triggerBonuses(data.TriggerHit, att, tgt, &hitB)
	lifesteal += hitB.Lifesteal
	if lifesteal > 0 && att.IsAlive() {
		res.Healed = r.ApplyHeal(att, att, float64(d.Dealt)*min(lifesteal, 1), 0)
	}

	if tgt.IsAlive() && att.IsAlive() && (defB.ReflectPercent > 0 || defB.ReflectFlat > 0) {
		amount := int32(math.Floor(float64(d.Dealt)*min(defB.ReflectPercent, 1))) + defB.ReflectFlat
		if amount > 0 {
			res.Reflected = r.ApplyDamage(tgt, att, amount).Dealt
			r.emit("reflect", tgt, att, res.Reflected)
		}
	}
	return res
}

// ApplyDamage applies a final damage number to target: boss immunity, shield
// absorption, then hp. Damage that would kill goes through the death chain.
func (r *Resolver) ApplyDamage(source, target *model.Unit, amount int32) DamageResult {
	var res DamageResult
	if !target.IsAlive() || amount <= 0 {
		return res
	}
	if r.phases != nil && r.phases.IsImmune(target) {
		res.Immune = true
		return res
	}

	if target.Shield > 0 {
		res.Absorbed = min(target.Shield, amount)
		target.Shield -= res.Absorbed
		amount -= res.Absorbed
		if target.Shield == 0 {
			target.RemoveBuff(model.BuffShield)
		}
		if amount == 0 {
			return res
		}
	}

	hp := target.HP()
	if amount >= hp {
		out := r.revive.Resolve(target, amount, source.ID)
		res.Outcome = &out
		res.Killed = !target.IsAlive()
		if out.Kind == revive.Martyr {
			res.Dealt = hp - target.HP()
		} else {
			res.Dealt = hp
		}
	} else {
		res.Dealt = target.ReduceHP(amount)
	}

	if source.IsHero() && res.Dealt > 0 {
		r.hooks.Progress.Record(hooks.ProgressEvent{UnitID: source.ID, Kind: hooks.ProgressDamageDealt, Amount: int64(res.Dealt)})
	}

	if target.IsAlive() {
		if target.IsBoss() && r.phases != nil {
			r.phases.OnDamage(target)
		}
		if res.Dealt > 0 {
			var b passive.Bonuses
			r.triggerBonuses(data.TriggerDamageTaken, target, source, &b)
			passive.Apply(target, &b, passive.ReactiveTurns)
		}
	}
	return res
}

// ApplyHeal heals target by amount scaled by bonus and the target's healing
// reduction. Returns hp actually restored.
func (r *Resolver) ApplyHeal(healer, target *model.Unit, amount, bonus float64) int32 {
	if !target.IsAlive() || amount <= 0 {
		return 0
	}
	healed := target.Heal(effect.ScaleHeal(target, amount, bonus))
	if healed > 0 {
		if healer.IsHero() {
			r.hooks.Progress.Record(hooks.ProgressEvent{UnitID: healer.ID, Kind: hooks.ProgressHealing, Amount: int64(healed)})
		}
		r.emit("heal", healer, target, healed)
	}
	return healed
}

func (r *Resolver) emit(kind string, src, tgt *model.Unit, value int32) {
	if r.quiet {
		return
	}
	pos, _ := r.hooks.Positioner.Position(tgt.ID)
	r.hooks.Events.Effect(hooks.VisualEffect{Kind: kind, Position: pos, SourceID: src.ID, TargetID: tgt.ID, Value: value})
}

func (r *Resolver) log(kind hooks.LogKind, actor, target *model.Unit, format string, args ...any) {
	if r.quiet {
		return
	}
	e := hooks.LogEntry{Kind: kind, Round: r.bf.Round(), ActorID: actor.ID, Message: fmt.Sprintf(format, args...)}
	if target != nil {
		e.TargetID = target.ID
	}
	r.hooks.Events.Log(e)
}

func (r *Resolver) logAttack(att, tgt *model.Unit, res *AttackResult) {
	if r.quiet {
		return
	}
	for _, h := range res.Hits {
		switch {
		case h.Dodged:
			r.log(hooks.LogAttack, att, tgt, "%s attacks %s, but %s dodges", att.Name, tgt.Name, tgt.Name)
		case h.Immune:
			r.log(hooks.LogAttack, att, tgt, "%s attacks %s, but it is immune", att.Name, tgt.Name)
		case h.Crit:
			r.log(hooks.LogAttack, att, tgt, "%s critically hits %s for %d", att.Name, tgt.Name, h.Damage)
		default:
			r.log(hooks.LogAttack, att, tgt, "%s hits %s for %d", att.Name, tgt.Name, h.Damage)
		}
	}
	if res.Cleaved > 0 {
		r.log(hooks.LogAttack, att, nil, "%s cleaves nearby enemies for %d", att.Name, res.Cleaved)
	}
}
