package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/game/revive"
	"github.com/udisondev/delve/internal/game/unique"
	"github.com/udisondev/delve/internal/model"
	"github.com/udisondev/delve/internal/testutil"
)

// field is a Battlefield over a fixed unit list. Distances default to 1.
type field struct {
	units    []*model.Unit
	dist     map[uint32]int32
	hidden   map[uint32]bool
	attacked map[uint32]bool
	bonus    float64
}

func (f *field) living(keep func(*model.Unit) bool) []*model.Unit {
	var out []*model.Unit
	for _, u := range f.units {
		if u.IsAlive() && keep(u) {
			out = append(out, u)
		}
	}
	return out
}

func (f *field) Enemies(u *model.Unit) []*model.Unit {
	return f.living(func(o *model.Unit) bool { return !o.SameSide(u) })
}

func (f *field) Allies(u *model.Unit) []*model.Unit {
	return f.living(func(o *model.Unit) bool { return o.SameSide(u) })
}

func (f *field) Distance(_, b *model.Unit) int32 {
	if d, ok := f.dist[b.ID]; ok {
		return d
	}
	return 1
}

func (f *field) LineOfSight(_, b *model.Unit) bool { return !f.hidden[b.ID] }

func (f *field) BeginAttack(att, tgt *model.Unit) passive.Situation {
	if f.attacked == nil {
		f.attacked = make(map[uint32]bool)
	}
	first := !f.attacked[att.ID]
	f.attacked[att.ID] = true
	return passive.Situation{Target: tgt, Distance: f.Distance(att, tgt), FirstAttack: first}
}

func (f *field) HealingBonus(*model.Unit) float64 { return f.bonus }

func (f *field) Round() int { return 1 }

// phases is a Phases stub.
type phases struct {
	immune  bool
	bonus   float64
	damaged int
}

func (p *phases) IsImmune(*model.Unit) bool                { return p.immune }
func (p *phases) Modifiers(*model.Unit) (float64, float64) { return p.bonus, 0 }
func (p *phases) OnDamage(*model.Unit)                     { p.damaged++ }

type fixture struct {
	r      *Resolver
	f      *field
	dice   *testutil.ScriptedDice
	rec    *hooks.Recorder
	deaths []uint32
	reg    *data.Registry
}

func newFixture(t *testing.T, ph Phases, units ...*model.Unit) *fixture {
	t.Helper()
	reg := data.NewRegistry()
	reg.AddPassive(&data.PassiveDef{ID: "leech", Kind: data.PassiveLifesteal, Trigger: data.TriggerHit, Value: 0.5})
	reg.AddPassive(&data.PassiveDef{ID: "spikes", Kind: data.PassiveReflectFlat, Trigger: data.TriggerDefend, Value: 3})
	reg.AddPassive(&data.PassiveDef{ID: "sweep", Kind: data.PassiveCleave, Trigger: data.TriggerAttack, Value: 0.5})
	reg.AddPassive(&data.PassiveDef{ID: "guard", Kind: data.PassiveThreat, Trigger: data.TriggerDefend, Value: 1})

	fx := &fixture{f: &field{units: units}, dice: testutil.NewScriptedDice(), rec: hooks.NewRecorder(), reg: reg}
	pe := passive.NewEvaluator(reg)
	ue := unique.NewEngine(reg, unique.NewRegistry())
	rh := revive.NewHandler(revive.DefaultConfig(), pe, ue, fx.f.Allies)
	rh.OnDeath = func(victim *model.Unit, _ uint32) { fx.deaths = append(fx.deaths, victim.ID) }
	fx.r = NewResolver(DefaultConfig(), fx.dice, Deps{
		Battlefield: fx.f,
		Passives:    pe,
		Uniques:     ue,
		Revive:      rh,
		Phases:      ph,
		Hooks:       hooks.Set{Progress: fx.rec, Events: fx.rec},
	})
	return fx
}

func TestCalcDamage_VarianceBand(t *testing.T) {
	base := BaseDamage(20, 10, 0)
	assert.InDelta(t, 15.0, base, 1e-9)

	cfg := DefaultConfig()
	lo := CalcDamage(base, 1, cfg.VarianceLow)
	hi := CalcDamage(base, 1, cfg.VarianceHigh)
	assert.Equal(t, int32(12), lo)
	assert.Equal(t, int32(17), hi)

	for _, f := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		d := testutil.NewScriptedDice().QueueFloats(f)
		dmg := CalcDamage(base, 1, RollVariance(cfg, d))
		assert.GreaterOrEqual(t, dmg, lo)
		assert.LessOrEqual(t, dmg, hi)
	}
}

func TestCalcDamage_Floor(t *testing.T) {
	assert.Equal(t, int32(1), CalcDamage(BaseDamage(5, 100, 0), 1, 1))
	assert.Equal(t, int32(1), CalcDamage(15, 0, 1))
	assert.InDelta(t, 20.0, BaseDamage(20, 10, 1), 1e-9)
}

func TestChances_MonotonicAndCapped(t *testing.T) {
	cfg := DefaultConfig()
	prev := -1.0
	for spd := int32(0); spd <= 200; spd += 5 {
		c := DodgeChance(cfg, spd, 10, 0)
		assert.GreaterOrEqual(t, c, prev)
		assert.LessOrEqual(t, c, cfg.DodgeCap)
		prev = c
	}
	assert.Equal(t, cfg.DodgeCap, DodgeChance(cfg, 1000, 0, 0))
	assert.Zero(t, DodgeChance(cfg, 5, 20, 0))

	prev = -1
	for diff := int32(-20); diff <= 100; diff += 5 {
		c := DoubleAttackChance(cfg, 50+diff, 50, 0)
		assert.GreaterOrEqual(t, c, prev)
		assert.LessOrEqual(t, c, cfg.DoubleAttackCap)
		prev = c
	}

	assert.Equal(t, cfg.CritChanceBase, CritChance(cfg, false, 0))
	assert.Equal(t, cfg.CritChanceDPS, CritChance(cfg, true, 0))
	assert.Equal(t, 1.0, CritChance(cfg, true, 5))
}

func TestBasicAttack_PlainHit(t *testing.T) {
	hero := testutil.NewHero(1, "Hero", 100, 20, 0, 5)
	mob := testutil.NewMonster(2, "Goblin", 100, 10, 10, 5)
	fx := newFixture(t, nil, hero, mob)

	res := fx.r.BasicAttack(hero, mob)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int32(15), res.Hits[0].Damage)
	assert.Equal(t, int32(85), mob.HP())
	assert.False(t, res.DoubleAttack)

	require.Len(t, fx.rec.Progress(), 1)
	assert.Equal(t, hooks.ProgressDamageDealt, fx.rec.Progress()[0].Kind)
	assert.Len(t, fx.rec.LogsOfKind(hooks.LogAttack), 1)
}

func TestBasicAttack_Crit(t *testing.T) {
	hero := testutil.NewHero(1, "Hero", 100, 20, 0, 5)
	mob := testutil.NewMonster(2, "Goblin", 100, 10, 10, 5)
	fx := newFixture(t, nil, hero, mob)
	// variance 1.0, crit roll succeeds
	fx.dice.QueueFloats(0.5, 0.0)

	res := fx.r.BasicAttack(hero, mob)
	require.Len(t, res.Hits, 1)
	assert.True(t, res.Hits[0].Crit)
	assert.Equal(t, int32(22), res.Hits[0].Damage)
}

func TestBasicAttack_Dodge(t *testing.T) {
	hero := testutil.NewHero(1, "Hero", 100, 20, 0, 5)
	mob := testutil.NewMonster(2, "Goblin", 100, 10, 10, 5)
	mob.SetBuff(model.BuffEvasion, model.Buff{Value: 0.3, Remaining: 2})
	fx := newFixture(t, nil, hero, mob)
	fx.dice.QueueFloats(0.1)

	res := fx.r.BasicAttack(hero, mob)
	require.Len(t, res.Hits, 1)
	assert.True(t, res.Hits[0].Dodged)
	assert.Equal(t, int32(100), mob.HP())
}

func TestBasicAttack_DoubleAttackAfterDodge(t *testing.T) {
	hero := testutil.NewHero(1, "Hero", 100, 20, 0, 20)
	mob := testutil.NewMonster(2, "Goblin", 100, 10, 10, 5)
	mob.SetBuff(model.BuffEvasion, model.Buff{Value: 0.3, Remaining: 2})
	fx := newFixture(t, nil, hero, mob)
	// dodge, then double attack roll, then second hit: no dodge, variance, no crit
	fx.dice.QueueFloats(0.1, 0.0, 0.9, 0.5, 0.9)

	res := fx.r.BasicAttack(hero, mob)
	require.True(t, res.DoubleAttack)
	require.Len(t, res.Hits, 2)
	assert.True(t, res.Hits[0].Dodged)
	assert.Equal(t, int32(15), res.Hits[1].Damage)
}

func TestApplyDamage_ShieldAbsorbsFirst(t *testing.T) {
	hero := testutil.NewHero(1, "Hero", 100, 20, 0, 5)
	mob := testutil.NewMonster(2, "Goblin", 100, 10, 10, 5)
	mob.SetBuff(model.BuffShield, model.Buff{Value: 10, Remaining: 2})
	mob.Shield = 10
	fx := newFixture(t, nil, hero, mob)

	d := fx.r.ApplyDamage(hero, mob, 15)
	assert.Equal(t, int32(10), d.Absorbed)
	assert.Equal(t, int32(5), d.Dealt)
	assert.Zero(t, mob.Shield)
	assert.False(t, mob.HasBuff(model.BuffShield))
	assert.Equal(t, int32(95), mob.HP())
}

func TestApplyDamage_ImmuneBoss(t *testing.T) {
	hero := testutil.NewHero(1, "Hero", 100, 20, 0, 5)
	boss := testutil.NewBoss(2, "bone_lord", 500, 10, 10, 5, model.BossRoleWing)
	ph := &phases{immune: true}
	fx := newFixture(t, ph, hero, boss)

	res := fx.r.BasicAttack(hero, boss)
	require.Len(t, res.Hits, 1)
	assert.True(t, res.Hits[0].Immune)
	assert.Equal(t, int32(500), boss.HP())
	assert.Zero(t, ph.damaged)

	ph.immune = false
	fx.r.BasicAttack(hero, boss)
	assert.Equal(t, int32(485), boss.HP())
	assert.Equal(t, 1, ph.damaged)
}

func TestApplyDamage_LethalRunsDeathChain(t *testing.T) {
	hero := testutil.NewHero(1, "Hero", 100, 20, 0, 5)
	mob := testutil.WithHP(testutil.NewMonster(2, "Goblin", 100, 10, 10, 5), 10)
	fx := newFixture(t, nil, hero, mob)

	d := fx.r.ApplyDamage(hero, mob, 15)
	assert.True(t, d.Killed)
	assert.Equal(t, int32(10), d.Dealt)
	require.NotNil(t, d.Outcome)
	assert.Equal(t, revive.Death, d.Outcome.Kind)
	assert.Equal(t, []uint32{2}, fx.deaths)

	// a dead unit takes no further damage
	assert.Zero(t, fx.r.ApplyDamage(hero, mob, 15).Dealt)
	assert.Equal(t, []uint32{2}, fx.deaths)
}

func TestStrike_LifestealAndReflect(t *testing.T) {
	hero := testutil.WithHP(testutil.NewHero(1, "Hero", 100, 20, 0, 5), 50)
	hero.Passives = []string{"leech"}
	mob := testutil.NewMonster(2, "Goblin", 100, 10, 10, 5)
	mob.Passives = []string{"spikes"}
	fx := newFixture(t, nil, hero, mob)

	res := fx.r.BasicAttack(hero, mob)
	require.Len(t, res.Hits, 1)
	hit := res.Hits[0]
	assert.Equal(t, int32(15), hit.Damage)
	assert.Equal(t, int32(7), hit.Healed)
	assert.Equal(t, int32(3), hit.Reflected)
	assert.Equal(t, int32(50+7-3), hero.HP())
}

func TestBasicAttack_Cleave(t *testing.T) {
	hero := testutil.NewHero(1, "Hero", 100, 20, 0, 5)
	hero.Passives = []string{"sweep"}
	a := testutil.NewMonster(2, "A", 100, 10, 10, 5)
	b := testutil.NewMonster(3, "B", 100, 10, 10, 5)
	fx := newFixture(t, nil, hero, a, b)

	res := fx.r.BasicAttack(hero, a)
	assert.Equal(t, int32(7), res.Cleaved)
	assert.Equal(t, int32(85), a.HP())
	assert.Equal(t, int32(93), b.HP())
}

func TestSelectTarget(t *testing.T) {
	hero := testutil.NewHero(1, "Hero", 100, 20, 0, 5)
	near := testutil.NewMonster(2, "Near", 100, 10, 10, 5)
	far := testutil.NewMonster(3, "Far", 100, 10, 10, 5)
	weak := testutil.WithHP(testutil.NewMonster(4, "Weak", 100, 10, 10, 5), 10)
	fx := newFixture(t, nil, hero, near, far, weak)
	fx.f.dist = map[uint32]int32{2: 1, 3: 4, 4: 1}
	pe := fx.r.passives
	enemies := fx.f.Enemies(hero)

	t.Run("nearest then lowest hp", func(t *testing.T) {
		assert.Equal(t, weak, SelectTarget(hero, enemies, fx.f, pe))
	})

	t.Run("threat beats hp", func(t *testing.T) {
		near.Passives = []string{"guard"}
		defer func() { near.Passives = nil }()
		assert.Equal(t, near, SelectTarget(hero, enemies, fx.f, pe))
	})

	t.Run("taunt overrides distance", func(t *testing.T) {
		far.SetBuff(model.BuffTaunt, model.Buff{Value: 1, Remaining: 1})
		defer far.RemoveBuff(model.BuffTaunt)
		assert.Equal(t, far, SelectTarget(hero, enemies, fx.f, pe))
	})

	t.Run("invisible skipped", func(t *testing.T) {
		weak.SetBuff(model.BuffInvisible, model.Buff{Value: 1, Remaining: 1})
		defer weak.RemoveBuff(model.BuffInvisible)
		assert.Equal(t, near, SelectTarget(hero, enemies, fx.f, pe))
	})

	t.Run("line of sight preferred", func(t *testing.T) {
		fx.f.hidden = map[uint32]bool{2: true, 4: true}
		defer func() { fx.f.hidden = nil }()
		assert.Equal(t, far, SelectTarget(hero, enemies, fx.f, pe))
	})

	t.Run("no enemies", func(t *testing.T) {
		assert.Nil(t, SelectTarget(hero, nil, fx.f, pe))
	})
}

func TestLowestHPAlly(t *testing.T) {
	a := testutil.WithHP(testutil.NewHero(1, "A", 100, 1, 1, 1), 40)
	b := testutil.WithHP(testutil.NewHero(2, "B", 50, 1, 1, 1), 15)
	tied := testutil.WithHP(testutil.NewHero(4, "D", 50, 1, 1, 1), 20)
	c := testutil.WithHP(testutil.NewHero(3, "C", 100, 1, 1, 1), 0)
	assert.Equal(t, b, LowestHPAlly([]*model.Unit{a, b, c}))
	assert.Nil(t, LowestHPAlly([]*model.Unit{c}))
	assert.Equal(t, a, LowestHPAlly([]*model.Unit{tied, a}), "ties go to the lowest id")
}
