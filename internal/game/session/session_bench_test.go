package session

import (
	"context"
	"testing"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/dice"
)

// BenchmarkEncounter runs full encounters of the lich_throne scenario with
// no-op hooks, the way the batch simulator does.
func BenchmarkEncounter(b *testing.B) {
	reg, err := data.LoadDefaults()
	if err != nil {
		b.Fatal(err)
	}
	sc := reg.Scenario("lich_throne")
	if sc == nil {
		b.Fatal("scenario lich_throne missing")
	}
	cfg := DefaultConfig()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	ticks := 0
	for i := range b.N {
		heroes, err := BuildParty(reg, sc, cfg.HeroScaling)
		if err != nil {
			b.Fatal(err)
		}
		d, err := NewDungeon(heroes, Deps{Registry: reg, Dice: dice.New(uint64(i), 7), Config: cfg})
		if err != nil {
			b.Fatal(err)
		}
		monsters, err := BuildRoom(reg, sc.Rooms[0], uint32(len(heroes)+1), cfg.MonsterScaling)
		if err != nil {
			b.Fatal(err)
		}
		s, err := d.StartEncounter(ctx, monsters)
		if err != nil {
			b.Fatal(err)
		}
		for n := 0; n < 500 && s.Outcome() == Continue; n++ {
			if _, err := s.Tick(ctx, s.NextKey()); err != nil {
				b.Fatal(err)
			}
			ticks++
		}
	}
	b.ReportMetric(float64(ticks)/float64(b.N), "ticks/op")
}
