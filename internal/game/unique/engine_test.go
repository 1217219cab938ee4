package unique

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/testutil"
)

func newEngine(defs ...*data.UniqueDef) *Engine {
	reg := data.NewRegistry()
	for _, d := range defs {
		reg.AddUnique(d)
	}
	return NewEngine(reg, NewRegistry())
}

func TestHandlers_Exhaustive(t *testing.T) {
	for k := data.UniqueKind(0); int(k) < data.UniqueKindCount(); k++ {
		assert.NotNil(t, handlers[k], "kind %s", k)
	}
}

func TestEveryNth(t *testing.T) {
	e := newEngine(&data.UniqueDef{ID: "edge", Kind: data.UniqueEveryNth, Every: 3, Value: 0.5})
	hero := testutil.NewHero(1, "h", 100, 10, 5, 10)
	hero.Uniques = []string{"edge"}

	var procs []int
	for i := 1; i <= 7; i++ {
		var b passive.Bonuses
		e.Evaluate(data.TriggerAttack, hero, passive.Situation{}, &b)
		if b.DamageMultiplier > 0 {
			procs = append(procs, i)
		}
	}
	assert.Equal(t, []int{3, 6}, procs)
}

func TestResetBoundaries(t *testing.T) {
	e := newEngine(
		&data.UniqueDef{ID: "reaver", Kind: data.UniqueKillStacks, Value: 0.05, MaxStacks: 10},
		&data.UniqueDef{ID: "edge", Kind: data.UniqueEveryNth, Every: 2, Value: 0.5},
	)
	hero := testutil.NewHero(1, "h", 100, 10, 5, 10)
	hero.Uniques = []string{"reaver", "edge"}
	var b passive.Bonuses

	e.Evaluate(data.TriggerAttack, hero, passive.Situation{}, &b)
	e.Evaluate(data.TriggerKill, hero, passive.Situation{}, &b)
	e.Evaluate(data.TriggerKill, hero, passive.Situation{}, &b)
	st := e.States().State(hero.ID)
	st.PhoenixUsed = true
	require.Equal(t, int32(1), st.Attacks)
	require.Equal(t, int32(2), st.KillStacks)

	e.States().ResetRoom()
	assert.Zero(t, st.Attacks, "transient counter reset per room")
	assert.Equal(t, int32(2), st.KillStacks, "kill stacks persist")
	assert.True(t, st.PhoenixUsed, "once per dungeon")

	b.Reset()
	e.Evaluate(data.TriggerAttack, hero, passive.Situation{}, &b)
	assert.InDelta(t, 0.1, b.DamageMultiplier, 1e-9, "two kill stacks, edge not due")

	e.States().ResetDungeon()
	assert.Zero(t, e.States().Len())
	assert.False(t, e.States().State(hero.ID).PhoenixUsed)
}

func TestKillStacks_Capped(t *testing.T) {
	e := newEngine(&data.UniqueDef{ID: "reaver", Kind: data.UniqueKillStacks, Value: 0.1, MaxStacks: 2})
	hero := testutil.NewHero(1, "h", 100, 10, 5, 10)
	hero.Uniques = []string{"reaver"}
	var b passive.Bonuses
	for range 5 {
		e.Evaluate(data.TriggerKill, hero, passive.Situation{}, &b)
	}
	b.Reset()
	e.Evaluate(data.TriggerAttack, hero, passive.Situation{}, &b)
	assert.InDelta(t, 0.2, b.DamageMultiplier, 1e-9)
}

func TestRoomStacks(t *testing.T) {
	e := newEngine(&data.UniqueDef{ID: "plate", Kind: data.UniqueRoomStacks, Value: 0.03, MaxStacks: 2})
	hero := testutil.NewHero(1, "h", 100, 10, 5, 10)
	hero.Uniques = []string{"plate"}

	want := []float64{0, 0.03, 0.06, 0.06}
	for i, w := range want {
		var b passive.Bonuses
		e.Evaluate(data.TriggerDefend, hero, passive.Situation{}, &b)
		assert.InDelta(t, w, b.DamageReduction, 1e-9, "hit %d", i+1)
	}

	e.States().ResetRoom()
	var b passive.Bonuses
	e.Evaluate(data.TriggerDefend, hero, passive.Situation{}, &b)
	assert.Zero(t, b.DamageReduction)
}

func TestCheatDeath_OncePerDungeon(t *testing.T) {
	e := newEngine(&data.UniqueDef{ID: "ankh", Kind: data.UniqueCheatDeath, Value: 0.5})
	hero := testutil.NewHero(1, "h", 100, 10, 5, 10)
	hero.Uniques = []string{"ankh"}

	var b passive.Bonuses
	e.Evaluate(data.TriggerLethal, hero, passive.Situation{}, &b)
	assert.InDelta(t, 0.5, b.Phoenix, 1e-9)

	e.States().State(hero.ID).PhoenixUsed = true
	b.Reset()
	e.Evaluate(data.TriggerLethal, hero, passive.Situation{}, &b)
	assert.Zero(t, b.Phoenix)
}

func TestFirstStrikeAndInvisibility(t *testing.T) {
	e := newEngine(
		&data.UniqueDef{ID: "gambit", Kind: data.UniqueFirstStrike, Value: 0.4},
		&data.UniqueDef{ID: "cloak", Kind: data.UniqueInvisibleOnKill, Turns: 2},
	)
	hero := testutil.NewHero(1, "h", 100, 10, 5, 10)
	hero.Uniques = []string{"gambit", "cloak"}

	var b passive.Bonuses
	e.Evaluate(data.TriggerAttack, hero, passive.Situation{}, &b)
	assert.InDelta(t, 0.4, b.DamageMultiplier, 1e-9)
	b.Reset()
	e.Evaluate(data.TriggerAttack, hero, passive.Situation{}, &b)
	assert.Zero(t, b.DamageMultiplier)

	e.Evaluate(data.TriggerKill, hero, passive.Situation{}, &b)
	assert.Equal(t, int32(2), e.TakeInvisibility(hero.ID))
	assert.Zero(t, e.TakeInvisibility(hero.ID))
}

func TestAttack_Berserk(t *testing.T) {
	e := newEngine(&data.UniqueDef{ID: "totem", Kind: data.UniqueBerserk, Value: 0.3, Threshold: 0.35})
	hero := testutil.NewHero(1, "h", 100, 10, 5, 10)
	hero.Uniques = []string{"totem"}

	var b passive.Bonuses
	e.Attack(hero, passive.Situation{}, &b)
	assert.Zero(t, b.DamageMultiplier)

	hero.SetHP(30)
	e.Attack(hero, passive.Situation{}, &b)
	assert.InDelta(t, 0.3, b.DamageMultiplier, 1e-9)
}

func TestEvaluate_NoUniquesNoState(t *testing.T) {
	e := newEngine()
	hero := testutil.NewHero(1, "h", 100, 10, 5, 10)
	var b passive.Bonuses
	e.Evaluate(data.TriggerAttack, hero, passive.Situation{}, &b)
	assert.Zero(t, e.States().Len(), "state is created lazily")
}
