package hooks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/delve/internal/model"
)

func TestSet_Normalize(t *testing.T) {
	rec := NewRecorder()
	s := Set{Events: rec}.Normalize()

	require.NotNil(t, s.Positioner)
	require.NotNil(t, s.Loot)
	require.NotNil(t, s.Progress)
	require.NotNil(t, s.Raid)
	assert.Same(t, rec, s.Events)

	_, ok := s.Positioner.Position(1)
	assert.False(t, ok)
	assert.NoError(t, s.Raid.BossDefeated(context.Background(), BossDefeat{}))
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	rec.LootFn = func(_, victim *model.Unit) LootResult {
		return LootResult{Item: "fang", Outcome: LootLooted}
	}

	rec.Log(LogEntry{Kind: LogAttack, Message: "hit"})
	rec.Log(LogEntry{Kind: LogDeath, Message: "dies"})
	rec.Effect(VisualEffect{Kind: "hit", Value: 5})
	rec.Record(ProgressEvent{UnitID: 1, Kind: ProgressKills, Amount: 1})
	res := rec.RollLoot(context.Background(), &model.Unit{}, &model.Unit{})
	require.NoError(t, rec.BossDefeated(context.Background(), BossDefeat{RaidID: "crypt"}))

	assert.Equal(t, "fang", res.Item)
	assert.Len(t, rec.Logs(), 2)
	assert.Len(t, rec.LogsOfKind(LogDeath), 1)
	assert.Len(t, rec.Effects(), 1)
	assert.Len(t, rec.Progress(), 1)
	assert.Len(t, rec.Defeats(), 1)
	assert.Equal(t, LootLooted, rec.Loot()[0].Outcome)

	rec.Reset()
	assert.Empty(t, rec.Logs())
	assert.Empty(t, rec.Defeats())
}

func TestFanout(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	f := Fanout{a, b, SlogSink{}}
	f.Log(LogEntry{Kind: LogSystem, Message: "room cleared"})
	f.Effect(VisualEffect{Kind: "heal"})

	assert.Len(t, a.Logs(), 1)
	assert.Len(t, b.Effects(), 1)
}

func TestProgressKind_Parse(t *testing.T) {
	for k := ProgressGold; k <= ProgressHealing; k++ {
		got, ok := ParseProgressKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseProgressKind("fame")
	assert.False(t, ok)
}
