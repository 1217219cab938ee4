package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/session"
	"github.com/udisondev/delve/internal/model"
)

// Outcome is how a dungeon run ended.
type Outcome int8

const (
	Cleared Outcome = iota
	Wiped
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Cleared:
		return "cleared"
	case Wiped:
		return "wiped"
	case TimedOut:
		return "timeout"
	default:
		return "unknown"
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, bool) {
	switch s {
	case "cleared":
		return Cleared, true
	case "wiped":
		return Wiped, true
	case "timeout":
		return TimedOut, true
	}
	return 0, false
}

// Run is the result of one dungeon run.
type Run struct {
	Outcome     Outcome
	Rooms       int // rooms cleared
	Ticks       int
	HeroesAlive int
	Heroes      []uint32
}

// TickFunc observes every committed tick of a run. room is the 0-based room
// index. A non-nil error stops the run.
type TickFunc func(ctx context.Context, room int, s *session.Session, r session.Result) error

// Play runs every room of sc with one party until the party clears the last
// room, is wiped, or maxTurns ticks have run (0 = no limit). A run that hits
// the limit is abandoned.
func Play(ctx context.Context, sc *data.Scenario, deps session.Deps, maxTurns int, onTick TickFunc) (Run, error) {
	var run Run

	heroes, err := session.BuildParty(deps.Registry, sc, deps.Config.HeroScaling)
	if err != nil {
		return run, fmt.Errorf("building party of %s: %w", sc.ID, err)
	}
	for _, h := range heroes {
		run.Heroes = append(run.Heroes, h.ID)
	}
	d, err := session.NewDungeon(heroes, deps)
	if err != nil {
		return run, fmt.Errorf("starting dungeon %s: %w", sc.ID, err)
	}

	nextID := uint32(len(heroes)) + 1
	for i, room := range sc.Rooms {
		monsters, err := session.BuildRoom(deps.Registry, room, nextID, deps.Config.MonsterScaling)
		if err != nil {
			return run, fmt.Errorf("building room %d of %s: %w", i, sc.ID, err)
		}
		s, err := d.StartEncounter(ctx, monsters)
		if errors.Is(err, session.ErrNoHeroes) {
			run.Outcome = Wiped
			return run, nil
		}
		if err != nil {
			return run, fmt.Errorf("starting room %d of %s: %w", i, sc.ID, err)
		}

		for s.Outcome() == session.Continue {
			if maxTurns > 0 && run.Ticks >= maxTurns {
				s.Abandon()
				run.Outcome = TimedOut
				run.HeroesAlive = countAlive(heroes)
				return run, nil
			}
			key := s.NextKey()
			res, err := s.Tick(ctx, key)
			if err != nil {
				return run, fmt.Errorf("room %d tick %s: %w", i, key, err)
			}
			run.Ticks++
			if onTick != nil {
				if err := onTick(ctx, i, s, res); err != nil {
					return run, err
				}
			}
		}

		for _, u := range s.Units() {
			if u.ID >= nextID {
				nextID = u.ID + 1
			}
		}
		if s.Outcome() == session.Defeat {
			run.Outcome = Wiped
			return run, nil
		}
		run.Rooms++
	}

	run.Outcome = Cleared
	run.HeroesAlive = countAlive(heroes)
	return run, nil
}

func countAlive(units []*model.Unit) int {
	n := 0
	for _, u := range units {
		if u.IsAlive() {
			n++
		}
	}
	return n
}
