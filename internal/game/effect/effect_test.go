package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/delve/internal/model"
	"github.com/udisondev/delve/internal/testutil"
)

func TestStartTurn_DOTKillsOnThirdTick(t *testing.T) {
	u := testutil.NewHero(1, "victim", 25, 10, 0, 10)
	require.True(t, ApplyStatus(u, model.StatusEffect{Kind: model.StatusDOT, Remaining: 3, SourceID: 9, Magnitude: 10}))

	var lethalCalls int
	p := &Processor{Lethal: func(victim *model.Unit, damage int32, source uint32) bool {
		lethalCalls++
		assert.Equal(t, int32(10), damage)
		assert.Equal(t, uint32(9), source)
		victim.SetHP(0)
		return false
	}}

	res := p.StartTurn(u)
	assert.Equal(t, int32(15), u.HP())
	assert.Equal(t, int32(2), u.Statuses[0].Remaining)
	assert.False(t, res.Died)

	p.StartTurn(u)
	assert.Equal(t, int32(5), u.HP())
	assert.Equal(t, int32(1), u.Statuses[0].Remaining)

	res = p.StartTurn(u)
	assert.True(t, res.Died)
	assert.Equal(t, 1, lethalCalls)
	assert.Zero(t, u.HP())
	assert.Empty(t, u.Statuses, "removed exactly at 0")
}

func TestStartTurn_DurationStrictlyDecreases(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 0, 10)
	ApplyStatus(u, model.StatusEffect{Kind: model.StatusSlow, Remaining: 4, Magnitude: 2})
	p := &Processor{}

	prev := int32(4)
	for range 4 {
		p.StartTurn(u)
		require.NoError(t, CheckStatuses(u))
		if len(u.Statuses) == 0 {
			assert.Equal(t, int32(1), prev)
			break
		}
		assert.Equal(t, prev-1, u.Statuses[0].Remaining)
		prev = u.Statuses[0].Remaining
	}
	assert.Empty(t, u.Statuses)
}

func TestStartTurn_Stun(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 0, 10)
	ApplyStatus(u, model.StatusEffect{Kind: model.StatusStun, Remaining: 1})

	p := &Processor{}
	res := p.StartTurn(u)
	assert.True(t, res.Skip)
	assert.Empty(t, u.Statuses, "duration still decremented")

	res = p.StartTurn(u)
	assert.False(t, res.Skip)
}

func TestApplyStatus_Immunities(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 0, 10)
	u.SetBuff(model.BuffDOTImmune, model.Buff{Value: 1, Remaining: 2})
	u.SetBuff(model.BuffCCImmune, model.Buff{Value: 1, Remaining: 2})

	assert.False(t, ApplyStatus(u, model.StatusEffect{Kind: model.StatusDOT, Remaining: 2, Magnitude: 5}))
	assert.False(t, ApplyStatus(u, model.StatusEffect{Kind: model.StatusFreeze, Remaining: 2}))
	assert.True(t, ApplyStatus(u, model.StatusEffect{Kind: model.StatusMark, Remaining: 2, Magnitude: 10}))

	dead := testutil.WithHP(testutil.NewHero(2, "d", 100, 10, 0, 10), 0)
	assert.False(t, ApplyStatus(dead, model.StatusEffect{Kind: model.StatusMark, Remaining: 2}))
}

func TestApplyStatus_Cap(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 0, 10)
	for i := range maxStatuses + 2 {
		ApplyStatus(u, model.StatusEffect{Kind: model.StatusMark, Remaining: 2, SourceID: uint32(i + 1)})
	}
	require.Len(t, u.Statuses, maxStatuses)
	assert.Equal(t, uint32(3), u.Statuses[0].SourceID)
}

func TestApplyStatus_CapRefreshKeepsOthers(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 0, 10)
	for src := uint32(10); src < 10+maxStatuses; src++ {
		require.True(t, ApplyStatus(u, model.StatusEffect{Kind: model.StatusDOT, Remaining: 2, SourceID: src, Magnitude: 3}))
	}

	require.True(t, ApplyStatus(u, model.StatusEffect{Kind: model.StatusDOT, Remaining: 4, SourceID: 12, Magnitude: 3}))
	require.Len(t, u.Statuses, maxStatuses)
	assert.Equal(t, uint32(10), u.Statuses[0].SourceID, "refresh evicts nothing")
	assert.Equal(t, int32(2), u.Statuses[2].Stacks)
	assert.Equal(t, int32(4), u.Statuses[2].Remaining)

	require.True(t, ApplyStatus(u, model.StatusEffect{Kind: model.StatusDOT, Remaining: 2, SourceID: 10, Magnitude: 3}))
	assert.Equal(t, uint32(10), u.Statuses[0].SourceID, "refreshing the oldest keeps its slot")
	assert.Equal(t, int32(2), u.Statuses[0].Stacks)
}

func TestStartTurn_ImmuneSkipsDOT(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 0, 10)
	ApplyStatus(u, model.StatusEffect{Kind: model.StatusDOT, Remaining: 2, Magnitude: 20})

	immune := true
	p := &Processor{Immune: func(*model.Unit) bool { return immune }}
	res := p.StartTurn(u)
	assert.Zero(t, res.DOTDamage)
	assert.Equal(t, int32(100), u.HP())
	require.Len(t, u.Statuses, 1)
	assert.Equal(t, int32(1), u.Statuses[0].Remaining)

	immune = false
	res = p.StartTurn(u)
	assert.Equal(t, int32(20), res.DOTDamage)
	assert.Empty(t, u.Statuses)
}

func TestStartTurn_DOTArmorAndHealBlock(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 10, 10)
	u.SetHP(50)
	ApplyStatus(u, model.StatusEffect{Kind: model.StatusDOT, Remaining: 2, Magnitude: 12})
	ApplyStatus(u, model.StatusEffect{Kind: model.StatusHOT, Remaining: 2, Magnitude: 20})
	ApplyStatus(u, model.StatusEffect{Kind: model.StatusHealBlock, Remaining: 2, Magnitude: 50})

	p := &Processor{DOTArmor: func(*model.Unit) float64 { return 0.5 }}
	res := p.StartTurn(u)

	assert.Equal(t, int32(7), res.DOTDamage, "12 - 10*0.5")
	assert.Equal(t, int32(10), res.HOTHealed, "20 halved by heal block")
	assert.Equal(t, int32(53), u.HP())
}

func TestHealingReduction_Clamped(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 10, 10)
	ApplyStatus(u, model.StatusEffect{Kind: model.StatusHealBlock, Remaining: 2, Magnitude: 80})
	u.SetBuff(model.BuffHealingReduction, model.Buff{Value: 0.5, Remaining: 2})

	assert.InDelta(t, 1.0, HealingReduction(u), 1e-9)
	assert.Zero(t, ScaleHeal(u, 100, 0.5))
}

func TestTracker_TickAndFade(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 10, 10)
	u.SetHP(40)
	u.SetBuff(model.BuffDamageBonus, model.Buff{Value: 0.2, Remaining: 1})
	u.SetBuff(model.BuffHealOverTime, model.Buff{Value: 10, Remaining: 2, FinalTickBonus: 2})
	GrantShield(u, 30, 2)

	tr := &Tracker{}
	res := tr.Tick(u)
	assert.Equal(t, int32(10), res.HOTHealed)
	assert.Equal(t, []model.BuffKind{model.BuffDamageBonus}, res.Faded)
	assert.False(t, u.HasBuff(model.BuffDamageBonus))
	assert.Equal(t, int32(30), u.Shield)

	res = tr.Tick(u)
	assert.Equal(t, int32(20), res.HOTHealed, "final tick doubled")
	assert.ElementsMatch(t, []model.BuffKind{model.BuffHealOverTime, model.BuffShield}, res.Faded)
	assert.Zero(t, u.Shield, "shield expires with its buff")
	assert.Equal(t, int32(70), u.HP())
}

func TestTracker_TimedBuffExpiresOverEncounterBonus(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 10, 10)
	u.Encounter.DamageBonus = 0.05
	u.SetBuff(model.BuffDamageBonus, model.Buff{Value: 0.5, Remaining: 2})

	tr := &Tracker{}
	tr.Tick(u)
	assert.True(t, u.HasBuff(model.BuffDamageBonus))
	res := tr.Tick(u)
	assert.Contains(t, res.Faded, model.BuffDamageBonus)
	assert.False(t, u.HasBuff(model.BuffDamageBonus))
	assert.InDelta(t, 0.05, u.Modifier(model.BuffDamageBonus), 1e-9)
}

func TestTracker_Vengeance(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 10, 10)
	AddVengeance(u, 0.1, 2, 3)
	AddVengeance(u, 0.1, 2, 3)
	assert.InDelta(t, 0.2, u.Vengeance.Bonus(), 1e-9)

	tr := &Tracker{}
	tr.Tick(u)
	assert.InDelta(t, 0.2, u.Vengeance.Bonus(), 1e-9)
	tr.Tick(u)
	assert.Zero(t, u.Vengeance.Bonus())
	assert.Zero(t, u.Vengeance.Stacks)
}

func TestEndTurn_ExtraTurn(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 10, 10)
	assert.False(t, EndTurn(u))

	u.SetBuff(model.BuffExtraTurn, model.Buff{Value: 1, Remaining: 1})
	(&Tracker{}).Tick(u)
	assert.True(t, u.HasBuff(model.BuffExtraTurn), "not consumed by time")
	assert.True(t, EndTurn(u))
	assert.False(t, EndTurn(u))
}

func TestCooldowns(t *testing.T) {
	u := testutil.NewHero(1, "h", 100, 10, 10, 10)
	u.SetCooldown("strike", 2)

	TickCooldowns(u)
	assert.Equal(t, int32(1), u.Cooldown("strike"))
	TickCooldowns(u)
	assert.Zero(t, u.Cooldown("strike"))
	assert.Empty(t, u.Cooldowns)

	assert.Equal(t, int32(2), ReduceCooldown(3, 1))
	assert.Zero(t, ReduceCooldown(1, 5))
}

func TestTickSummon(t *testing.T) {
	pet := testutil.NewHero(5, "wolf", 30, 5, 1, 10)
	pet.Kind = model.KindSummon
	pet.Summon = &model.SummonInfo{OwnerID: 1, Kind: model.SummonPet, TurnsRemaining: 2}

	assert.False(t, TickSummon(pet))
	assert.True(t, TickSummon(pet))
	assert.False(t, pet.IsAlive())

	perm := testutil.NewHero(6, "clone", 30, 5, 1, 10)
	perm.Summon = &model.SummonInfo{OwnerID: 1, Kind: model.SummonClone}
	assert.False(t, TickSummon(perm))
	assert.True(t, perm.IsAlive())
}
