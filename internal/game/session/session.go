package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/delve/internal/ai"
	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/ability"
	"github.com/udisondev/delve/internal/game/combat"
	"github.com/udisondev/delve/internal/game/effect"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/game/raid"
	"github.com/udisondev/delve/internal/game/revive"
	"github.com/udisondev/delve/internal/game/turnorder"
	"github.com/udisondev/delve/internal/model"
)

// Outcome is the terminal signal reported with every tick.
type Outcome int8

const (
	Continue Outcome = iota
	Victory
	Defeat
)

func (o Outcome) String() string {
	switch o {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "continue"
	}
}

// Key identifies one logical turn: the round and the 1-based turn within it.
// A caller passes NextKey to Tick; repeating the last key replays its result.
type Key struct {
	Round int
	Seq   int
}

func (k Key) String() string { return fmt.Sprintf("%d.%d", k.Round, k.Seq) }

// Result is what a tick committed.
type Result struct {
	Key     Key
	ActorID uint32
	// Action is "attack", "skill:<id>", "ability:<id>", "stunned",
	// "died", "expired" or "idle". Empty when no actor ran.
	Action  string
	Outcome Outcome
	Next    Key
}

// Session — одна боевая встреча.
//
// Not safe for concurrent use: the tick owns every unit for its duration and
// callers serialise Tick, Abandon and the read accessors themselves.
type Session struct {
	d     *Dungeon
	cfg   Config
	hooks hooks.Set

	units  []*model.Unit
	byID   map[uint32]*model.Unit
	nextID uint32

	order     *turnorder.Order
	machine   *raid.Machine
	revive    *revive.Handler
	resolver  *combat.Resolver
	processor effect.Processor
	tracker   effect.Tracker

	alwaysFirst map[uint32]bool
	attacked    map[uint32]bool
	streaks     map[uint32]int

	// on_turn_start bonuses of the current actor
	curID uint32
	turnB passive.Bonuses

	// ctx is the context of the running tick, handed to hooks.
	ctx context.Context

	seq       int
	last      Result
	hasLast   bool
	outcome   Outcome
	abandoned bool
}

func newSession(d *Dungeon, units []*model.Unit, byID map[uint32]*model.Unit, nextID uint32) *Session {
	s := &Session{
		d:           d,
		cfg:         d.cfg,
		hooks:       d.hooks,
		units:       units,
		byID:        byID,
		nextID:      nextID,
		order:       turnorder.New(),
		alwaysFirst: make(map[uint32]bool),
		attacked:    make(map[uint32]bool, len(units)),
		streaks:     make(map[uint32]int),
		ctx:         context.Background(),
	}
	s.machine = raid.NewMachine(d.cfg.Raid, d.reg, s, s.order.Round, s.hooks.Events)
	s.revive = revive.NewHandler(d.cfg.Revive, d.passives, d.uniques, s.livingAllies)
	s.revive.OnDeath = s.onDeath
	s.resolver = combat.NewResolver(d.cfg.Combat, d.src, combat.Deps{
		Battlefield: s,
		Passives:    d.passives,
		Uniques:     d.uniques,
		Revive:      s.revive,
		Phases:      s.machine,
		Hooks:       s.hooks,
	})
	s.processor = effect.Processor{
		Lethal:       s.revive.Lethal,
		DOTArmor:     s.dotArmor,
		HealingBonus: s.HealingBonus,
		Immune:       s.machine.IsImmune,
	}
	s.tracker = effect.Tracker{HealingBonus: s.HealingBonus}
	return s
}

// NextKey returns the key the next Tick must carry.
func (s *Session) NextKey() Key {
	return Key{Round: s.order.Round(), Seq: s.seq + 1}
}

// Tick runs exactly one actor turn. Repeating the key of the last committed
// tick returns that tick's result again without running anything.
func (s *Session) Tick(ctx context.Context, key Key) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if s.abandoned {
		return Result{}, ErrAbandoned
	}
	if s.hasLast && key == s.last.Key {
		return s.last, nil
	}
	if s.outcome != Continue {
		return s.last, ErrFinished
	}
	if next := s.NextKey(); key != next {
		return Result{}, fmt.Errorf("tick %s, expected %s: %w", key, next, ErrOutOfOrder)
	}

	s.ctx = ctx
	defer func() { s.ctx = context.Background() }()

	res := Result{Key: key}
	s.prune()
	if res.Outcome = s.terminal(); res.Outcome != Continue {
		return s.commit(res), nil
	}
	if s.order.Done() {
		s.newRound()
	}

	id, ok := s.order.Current()
	if !ok {
		return Result{}, fmt.Errorf("tick %s: empty turn order", key)
	}
	actor := s.byID[id]
	res.ActorID = id
	res.Action = s.takeTurn(actor)

	if effect.EndTurn(actor) {
		s.order.GrantExtraTurn()
		s.logf(hooks.LogSystem, actor, nil, "%s acts again", actor.Name)
	}
	s.seq++
	if s.order.Advance() {
		s.newRound()
	}

	res.Outcome = s.terminal()
	return s.commit(res), nil
}

func (s *Session) commit(res Result) Result {
	if res.Outcome != Continue && s.outcome == Continue {
		s.outcome = res.Outcome
		slog.Info("encounter finished", "room", s.d.rooms, "outcome", res.Outcome.String(), "round", s.order.Round())
		s.logf(hooks.LogSystem, nil, nil, "%s in round %d", res.Outcome, s.order.Round())
	}
	res.Next = s.NextKey()
	s.last = res
	s.hasLast = true

	if err := s.CheckInvariants(); err != nil {
		slog.Error("combat invariant violated", "key", res.Key.String(), "error", err)
	}
	return res
}

func (s *Session) newRound() {
	living := make([]*model.Unit, 0, len(s.units))
	for _, u := range s.units {
		if u.IsAlive() {
			living = append(living, u)
		}
	}
	s.order.Roll(living, s.d.src, s.speed)
	s.seq = 0
	if ai.IsDebugEnabled() {
		slog.Debug("round rolled", "round", s.order.Round(), "order", s.order.Entries())
	}
}

// prune drops units that died during the previous tick from the order.
func (s *Session) prune() {
	s.order.Prune(func(id uint32) bool {
		u := s.byID[id]
		return u != nil && u.IsAlive()
	})
}

// terminal checks victory before defeat so both are never reported.
func (s *Session) terminal() Outcome {
	var heroes, monsters bool
	for _, u := range s.units {
		if !u.IsAlive() {
			continue
		}
		switch {
		case u.Side == model.SideMonsters:
			monsters = true
		case u.IsHero():
			heroes = true
		}
	}
	switch {
	case !monsters:
		return Victory
	case !heroes:
		return Defeat
	default:
		return Continue
	}
}

// takeTurn runs turn-start bookkeeping and the actor's action.
func (s *Session) takeTurn(actor *model.Unit) string {
	s.curID = actor.ID
	s.turnB.Reset()

	if effect.TickSummon(actor) {
		s.logf(hooks.LogSystem, actor, nil, "%s fades away", actor.Name)
		return "expired"
	}
	effect.TickCooldowns(actor)

	s.d.passives.Evaluate(data.TriggerTurnStart, actor, passive.Situation{}, &s.turnB)
	if s.turnB.Regen > 0 {
		s.resolver.ApplyHeal(actor, actor, float64(actor.MaxHP())*s.turnB.Regen, s.turnB.HealingBonus)
	}

	ts := s.processor.StartTurn(actor)
	if ts.DOTDamage > 0 && actor.IsAlive() && actor.IsBoss() {
		s.machine.OnDamage(actor)
	}
	if ts.Died {
		return "died"
	}
	tick := s.tracker.Tick(actor)
	if len(tick.Faded) > 0 && !s.resolver.Quiet() {
		for _, kind := range tick.Faded {
			s.logf(hooks.LogSystem, actor, nil, "%s: %s faded", actor.Name, kind)
		}
	}
	if ts.Skip {
		s.logf(hooks.LogSystem, actor, nil, "%s cannot act", actor.Name)
		return "stunned"
	}

	enemies := s.Enemies(actor)
	if len(enemies) == 0 {
		return "idle"
	}
	if actor.IsHero() {
		return s.heroAction(actor, enemies)
	}
	return s.monsterAction(actor, enemies)
}

func (s *Session) heroAction(actor *model.Unit, enemies []*model.Unit) string {
	sit := ability.Situation{
		Hero:        actor,
		Allies:      s.Allies(actor),
		Enemies:     enemies,
		BossPresent: anyBoss(enemies),
	}
	skill, rule := s.d.selector.SelectRule(sit)
	if skill == nil {
		return s.basicAttack(actor, enemies)
	}
	ability.ConsumeCooldown(actor, skill, s.turnB.CooldownReduction)
	if ai.IsDebugEnabled() {
		slog.Debug("hero chose skill", "hero", actor.ID, "skill", skill.ID, "rule", rule)
	}
	s.resolver.UseSkill(actor, skill)
	return "skill:" + skill.ID
}

func (s *Session) monsterAction(actor *model.Unit, enemies []*model.Unit) string {
	phase := 0
	if actor.IsBoss() {
		phase = actor.Boss.Phase
	}
	a := s.d.monsterAI.Choose(ai.Context{
		Monster:   actor,
		Abilities: s.machine.Abilities(actor),
		Round:     s.order.Round(),
		BossFight: s.bossFight(),
		Phase:     phase,
	})
	if a == nil {
		return s.basicAttack(actor, enemies)
	}
	s.resolver.UseAbility(actor, a)
	return "ability:" + a.ID
}

func (s *Session) basicAttack(actor *model.Unit, enemies []*model.Unit) string {
	target := combat.SelectTarget(actor, enemies, s, s.d.passives)
	if target == nil {
		return "idle"
	}
	s.resolver.BasicAttack(actor, target)
	return "attack"
}

func anyBoss(units []*model.Unit) bool {
	for _, u := range units {
		if u.IsBoss() && u.IsAlive() {
			return true
		}
	}
	return false
}

func (s *Session) bossFight() bool {
	return anyBoss(s.units)
}

// Abandon ends the encounter between ticks. Buffs and statuses are cleared,
// hp stays as committed. Later ticks return ErrAbandoned.
func (s *Session) Abandon() {
	if s.abandoned {
		return
	}
	s.abandoned = true
	for _, u := range s.units {
		effect.Strip(u)
	}
	slog.Info("encounter abandoned", "room", s.d.rooms, "round", s.order.Round())
	s.logf(hooks.LogSystem, nil, nil, "combat abandoned in round %d", s.order.Round())
}

// Abandoned reports whether Abandon was called.
func (s *Session) Abandoned() bool { return s.abandoned }

// Outcome returns the terminal state reached so far.
func (s *Session) Outcome() Outcome { return s.outcome }

// Units returns every unit of the encounter, dead ones and summons included.
// The slice is owned by the Session.
func (s *Session) Units() []*model.Unit { return s.units }

// Unit returns a unit by id.
func (s *Session) Unit(id uint32) (*model.Unit, bool) {
	u, ok := s.byID[id]
	return u, ok
}

// Order returns the current round order.
func (s *Session) Order() []turnorder.Entry { return s.order.Entries() }

// BossState returns the phase state of a boss.
func (s *Session) BossState(id uint32) (raid.State, bool) { return s.machine.State(id) }

// Last returns the last committed result.
func (s *Session) Last() (Result, bool) { return s.last, s.hasLast }

func (s *Session) logf(kind hooks.LogKind, actor, target *model.Unit, format string, args ...any) {
	if s.resolver.Quiet() {
		return
	}
	e := hooks.LogEntry{Kind: kind, Round: s.order.Round(), Message: fmt.Sprintf(format, args...)}
	if actor != nil {
		e.ActorID = actor.ID
	}
	if target != nil {
		e.TargetID = target.ID
	}
	s.hooks.Events.Log(e)
}
