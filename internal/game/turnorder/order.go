// Package turnorder implements initiative: one roll per round, a total order
// over living units and the current-actor cursor the tick orchestrator walks.
package turnorder

import (
	"cmp"
	"math"
	"slices"

	"github.com/udisondev/delve/internal/game/dice"
	"github.com/udisondev/delve/internal/model"
)

// AlwaysFirst is the score of a unit that resolves before everyone else.
const AlwaysFirst = math.MaxInt

// Entry is one slot of the round order.
type Entry struct {
	UnitID uint32
	Score  int
	Hero   bool
}

// SpeedFunc returns the effective speed of a unit and whether it always acts first.
type SpeedFunc func(u *model.Unit) (speed int32, first bool)

// BaseSpeed applies speed bonuses and slow statuses to the stat.
func BaseSpeed(u *model.Unit) (int32, bool) {
	speed := float64(u.Stats.Speed) * (1 + u.Modifier(model.BuffSpeedBonus))
	speed -= float64(u.StatusMagnitude(model.StatusSlow))
	return max(int32(speed), 0), false
}

// Order — порядок ходов текущего раунда.
type Order struct {
	entries []Entry
	pos     int
	round   int
	extra   bool
}

// New returns an empty order; the first Roll starts round 1.
func New() *Order {
	return &Order{}
}

// Roll starts a new round: every living unit gets speed + d20, sorted by
// score descending, heroes first on ties, then by id.
func (o *Order) Roll(units []*model.Unit, src dice.Source, speed SpeedFunc) {
	if speed == nil {
		speed = BaseSpeed
	}
	o.entries = o.entries[:0]
	for _, u := range units {
		if !u.IsAlive() {
			continue
		}
		s, first := speed(u)
		score := int(s) + dice.D20(src)
		if first {
			score = AlwaysFirst
		}
		o.entries = append(o.entries, Entry{UnitID: u.ID, Score: score, Hero: u.Side == model.SideHeroes})
	}
	slices.SortFunc(o.entries, compareEntries)
	o.pos = 0
	o.extra = false
	o.round++
}

func compareEntries(a, b Entry) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if a.Hero != b.Hero {
		if a.Hero {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.UnitID, b.UnitID)
}

// Round returns the current round number (0 before the first Roll).
func (o *Order) Round() int { return o.round }

// Position returns the index of the current actor within the round.
func (o *Order) Position() int { return o.pos }

// Current returns the unit whose turn it is.
func (o *Order) Current() (uint32, bool) {
	if o.pos >= len(o.entries) {
		return 0, false
	}
	return o.entries[o.pos].UnitID, true
}

// Done reports whether every entry of the round has acted.
func (o *Order) Done() bool { return o.pos >= len(o.entries) }

// GrantExtraTurn makes the next Advance keep the current actor.
func (o *Order) GrantExtraTurn() { o.extra = true }

// Advance moves the cursor to the next actor and reports whether the round is over.
func (o *Order) Advance() bool {
	if o.extra {
		o.extra = false
		return o.Done()
	}
	if o.pos < len(o.entries) {
		o.pos++
	}
	return o.Done()
}

// Remove drops a unit from the order. The cursor keeps pointing at the same
// actor, or at the next one if the removed unit was current.
func (o *Order) Remove(id uint32) {
	i := slices.IndexFunc(o.entries, func(e Entry) bool { return e.UnitID == id })
	if i < 0 {
		return
	}
	o.entries = slices.Delete(o.entries, i, i+1)
	switch {
	case i < o.pos:
		o.pos--
	case i == o.pos:
		o.extra = false
	}
}

// Prune removes every unit for which alive returns false.
func (o *Order) Prune(alive func(id uint32) bool) {
	for i := len(o.entries) - 1; i >= 0; i-- {
		if !alive(o.entries[i].UnitID) {
			o.Remove(o.entries[i].UnitID)
		}
	}
}

// Insert appends a unit (a fresh summon) to the end of the current round.
func (o *Order) Insert(u *model.Unit) {
	for _, e := range o.entries {
		if e.UnitID == u.ID {
			return
		}
	}
	o.entries = append(o.entries, Entry{UnitID: u.ID, Hero: u.Side == model.SideHeroes})
}

// Entries returns the round order. The slice is owned by Order.
func (o *Order) Entries() []Entry { return o.entries }

// Reset clears the order and the round counter (new encounter).
func (o *Order) Reset() {
	o.entries = o.entries[:0]
	o.pos = 0
	o.round = 0
	o.extra = false
}
