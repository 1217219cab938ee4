// Package session orchestrates combat: a Dungeon owns the state that outlives
// a room (unique-item procs, the party), a Session runs one encounter one
// actor turn per Tick.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/delve/internal/ai"
	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/ability"
	"github.com/udisondev/delve/internal/game/combat"
	"github.com/udisondev/delve/internal/game/dice"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/game/raid"
	"github.com/udisondev/delve/internal/game/revive"
	"github.com/udisondev/delve/internal/game/turnorder"
	"github.com/udisondev/delve/internal/game/unique"
	"github.com/udisondev/delve/internal/model"
)

// Config — настройки боевой сессии.
type Config struct {
	Combat combat.Config
	Revive revive.Config
	Raid   raid.Config

	// MonsterScaling and HeroScaling are per-level stat growth fractions.
	MonsterScaling float64
	HeroScaling    float64

	// Rewards reported per monster level on a kill.
	XPPerLevel   int64
	GoldPerLevel int64

	// MaxVengeanceStacks caps vengeance stacks per unit (0 = no cap).
	MaxVengeanceStacks int32
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Combat:             combat.DefaultConfig(),
		Revive:             revive.DefaultConfig(),
		Raid:               raid.DefaultConfig(),
		MonsterScaling:     0.1,
		HeroScaling:        0.1,
		XPPerLevel:         10,
		GoldPerLevel:       5,
		MaxVengeanceStacks: 5,
	}
}

// Deps are the collaborators of a Dungeon.
type Deps struct {
	Registry Lookup
	Dice     dice.Source
	Hooks    hooks.Set
	Config   Config
}

// Dungeon — один забег партии: состояние проков и герои между комнатами.
//
// Not safe for concurrent use. Every session it starts shares its dice source
// and proc state and must be ticked from the same goroutine.
type Dungeon struct {
	cfg   Config
	reg   Lookup
	src   dice.Source
	hooks hooks.Set

	procs     *unique.Registry
	passives  *passive.Evaluator
	uniques   *unique.Engine
	selector  *ability.Selector
	monsterAI *ai.MonsterAI

	heroes []*model.Unit
	rooms  int
}

// NewDungeon starts a dungeon run for a party. Proc state starts empty.
func NewDungeon(heroes []*model.Unit, deps Deps) (*Dungeon, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("new dungeon: %w", ErrUnknownRef)
	}
	if deps.Dice == nil {
		return nil, fmt.Errorf("new dungeon: dice source is required")
	}
	if len(heroes) == 0 {
		return nil, fmt.Errorf("new dungeon: %w", ErrNoHeroes)
	}
	procs := unique.NewRegistry()
	return &Dungeon{
		cfg:       deps.Config,
		reg:       deps.Registry,
		src:       deps.Dice,
		hooks:     deps.Hooks.Normalize(),
		procs:     procs,
		passives:  passive.NewEvaluator(deps.Registry),
		uniques:   unique.NewEngine(deps.Registry, procs),
		selector:  ability.NewSelector(deps.Registry),
		monsterAI: ai.NewMonsterAI(deps.Registry, deps.Dice),
		heroes:    heroes,
	}, nil
}

// Heroes returns the party. The slice is owned by the Dungeon.
func (d *Dungeon) Heroes() []*model.Unit { return d.heroes }

// Procs returns the unique-item proc state of the run.
func (d *Dungeon) Procs() *unique.Registry { return d.procs }

// Rooms returns how many encounters have been started.
func (d *Dungeon) Rooms() int { return d.rooms }

// Reset starts a new dungeon run with the same party: every proc counter,
// permanent stacks and once-per-dungeon flags included, is dropped.
func (d *Dungeon) Reset() {
	d.procs.ResetDungeon()
	d.rooms = 0
}

// StartEncounter resets room-scoped state and opens a session against
// monsters. Dead heroes stay dead; living ones keep their hp.
func (d *Dungeon) StartEncounter(ctx context.Context, monsters []*model.Unit) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	units := make([]*model.Unit, 0, len(d.heroes)+len(monsters))
	byID := make(map[uint32]*model.Unit, cap(units))
	var nextID uint32
	var heroes, opponents int
	for _, group := range [][]*model.Unit{d.heroes, monsters} {
		for _, u := range group {
			if _, dup := byID[u.ID]; dup {
				return nil, fmt.Errorf("start encounter: unit %d: %w", u.ID, ErrDuplicateID)
			}
			byID[u.ID] = u
			units = append(units, u)
			nextID = max(nextID, u.ID+1)
			if !u.IsAlive() {
				continue
			}
			if u.Side == model.SideHeroes {
				heroes++
			} else {
				opponents++
			}
		}
	}
	if heroes == 0 {
		return nil, fmt.Errorf("start encounter: %w", ErrNoHeroes)
	}
	if opponents == 0 {
		return nil, fmt.Errorf("start encounter: %w", ErrNoMonsters)
	}

	d.rooms++
	d.procs.ResetRoom()
	for _, u := range units {
		resetTransient(u)
	}

	s := newSession(d, units, byID, nextID)
	for _, u := range monsters {
		if u.Boss == nil || !u.IsAlive() {
			continue
		}
		if err := s.machine.Register(u); err != nil {
			slog.Warn("boss without phases fights as a plain monster", "unit", u.ID, "error", err)
		}
	}
	for _, u := range units {
		if u.IsAlive() {
			s.encounterStart(u)
		}
	}
	s.newRound()

	slog.Info("encounter started",
		"room", d.rooms,
		"heroes", heroes,
		"monsters", opponents,
		"bosses", len(s.machine.Bosses()))
	s.logf(hooks.LogSystem, nil, nil, "room %d: %d heroes against %d monsters", d.rooms, heroes, opponents)
	return s, nil
}

// resetTransient clears what must not leak from one room into the next.
func resetTransient(u *model.Unit) {
	u.ClearBuffs()
	u.ClearStatuses()
	clear(u.Cooldowns)
}

// encounterStart evaluates on_combat_start and on_room_start into
// encounter-long modifiers and the always-first flag.
func (s *Session) encounterStart(u *model.Unit) {
	var b passive.Bonuses
	s.d.passives.Evaluate(data.TriggerCombatStart, u, passive.Situation{}, &b)
	s.d.passives.Evaluate(data.TriggerRoomStart, u, passive.Situation{}, &b)
	if b.AlwaysFirst {
		s.alwaysFirst[u.ID] = true
	}
	passive.ApplyEncounter(u, &b)
}

func (s *Session) speed(u *model.Unit) (int32, bool) {
	sp, _ := turnorder.BaseSpeed(u)
	return sp, s.alwaysFirst[u.ID]
}
