// Package revive resolves lethal damage: resurrection scroll, phoenix-style
// revival, martyr redirection or death, in that order. Exactly one outcome
// applies per lethal event.
package revive

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/game/unique"
	"github.com/udisondev/delve/internal/model"
)

// Kind is the outcome of a lethal event.
type Kind int8

const (
	Scroll Kind = iota
	Phoenix
	Martyr
	Death
)

func (k Kind) String() string {
	switch k {
	case Scroll:
		return "scroll"
	case Phoenix:
		return "phoenix"
	case Martyr:
		return "martyr"
	default:
		return "death"
	}
}

// Outcome describes what happened to a unit that took lethal damage.
type Outcome struct {
	Kind Kind

	// Martyr only: the ally that took Redirected damage and how that resolved.
	Ally        *model.Unit
	Redirected  int32
	AllyOutcome *Outcome
}

// Config holds revive percentages of max hp.
type Config struct {
	ScrollPercent float64
}

// DefaultConfig returns the stock revive tuning.
func DefaultConfig() Config {
	return Config{ScrollPercent: 0.5}
}

// AlliesFunc returns the living units on the victim's side, victim included or not.
type AlliesFunc func(victim *model.Unit) []*model.Unit

// DeathFunc is called once for every unit that actually dies.
type DeathFunc func(victim *model.Unit, sourceID uint32)

// rule is one step of the chain; it returns true if it handled the event.
type rule struct {
	kind  Kind
	apply func(h *Handler, victim *model.Unit, damage int32, source uint32, nested bool, out *Outcome) bool
}

// Handler — обработчик смерти и воскрешения.
type Handler struct {
	cfg      Config
	passives *passive.Evaluator
	uniques  *unique.Engine
	allies   AlliesFunc
	rules    []rule

	// OnDeath fires after a unit is set to 0 hp.
	OnDeath DeathFunc
}

// NewHandler creates a Handler. allies supplies martyr candidates.
func NewHandler(cfg Config, passives *passive.Evaluator, uniques *unique.Engine, allies AlliesFunc) *Handler {
	h := &Handler{cfg: cfg, passives: passives, uniques: uniques, allies: allies}
	// fixed priority order
	h.rules = []rule{
		{Scroll, (*Handler).tryScroll},
		{Phoenix, (*Handler).tryPhoenix},
		{Martyr, (*Handler).tryMartyr},
		{Death, (*Handler).die},
	}
	return h
}

// Order returns the outcome kinds in the order they are tried.
func (h *Handler) Order() []Kind {
	kinds := make([]Kind, len(h.rules))
	for i, r := range h.rules {
		kinds[i] = r.kind
	}
	return kinds
}

// Resolve handles damage that brings victim to 0 hp or below. The damage has
// not been applied yet.
func (h *Handler) Resolve(victim *model.Unit, damage int32, sourceID uint32) Outcome {
	return h.resolve(victim, damage, sourceID, false)
}

// Lethal adapts Resolve to effect.LethalFunc.
func (h *Handler) Lethal(victim *model.Unit, damage int32, sourceID uint32) bool {
	h.Resolve(victim, damage, sourceID)
	return victim.IsAlive()
}

func (h *Handler) resolve(victim *model.Unit, damage int32, source uint32, nested bool) Outcome {
	var out Outcome
	for _, r := range h.rules {
		if r.apply(h, victim, damage, source, nested, &out) {
			out.Kind = r.kind
			break
		}
	}
	return out
}

func revivedHP(u *model.Unit, pct float64) int32 {
	return max(int32(math.Floor(float64(u.Stats.MaxHP)*pct)), 1)
}

func (h *Handler) tryScroll(victim *model.Unit, _ int32, _ uint32, _ bool, _ *Outcome) bool {
	if !victim.IsHero() || victim.Consumables.ResurrectionScrolls <= 0 {
		return false
	}
	victim.Consumables.ResurrectionScrolls--
	victim.SetHP(revivedHP(victim, h.cfg.ScrollPercent))
	slog.Debug("resurrection scroll used", "unit", victim.ID, "hp", victim.HP(),
		"scrolls_left", victim.Consumables.ResurrectionScrolls)
	return true
}

func (h *Handler) tryPhoenix(victim *model.Unit, _ int32, _ uint32, _ bool, _ *Outcome) bool {
	st := h.uniques.States().State(victim.ID)
	if st.PhoenixUsed {
		return false
	}
	var b passive.Bonuses
	h.passives.Evaluate(data.TriggerLethal, victim, passive.Situation{}, &b)
	h.uniques.Evaluate(data.TriggerLethal, victim, passive.Situation{}, &b)
	if b.Phoenix <= 0 {
		return false
	}
	st.PhoenixUsed = true
	victim.SetHP(revivedHP(victim, min(b.Phoenix, 1)))
	slog.Debug("phoenix revival", "unit", victim.ID, "hp", victim.HP())
	return true
}

func (h *Handler) tryMartyr(victim *model.Unit, damage int32, source uint32, nested bool, out *Outcome) bool {
	if nested || h.allies == nil {
		return false
	}

	var (
		best  *model.Unit
		share float64
	)
	candidates := h.allies(victim)
	slices.SortFunc(candidates, func(a, b *model.Unit) int { return cmp.Compare(a.ID, b.ID) })
	for _, ally := range candidates {
		if ally.ID == victim.ID || !ally.IsAlive() || !ally.SameSide(victim) {
			continue
		}
		var b passive.Bonuses
		h.passives.Evaluate(data.TriggerLethal, ally, passive.Situation{Target: victim}, &b)
		if b.Martyr > share {
			best, share = ally, min(b.Martyr, 1)
		}
	}
	if best == nil {
		return false
	}

	redirected := int32(math.Floor(float64(damage) * share))
	kept := damage - redirected
	if kept >= victim.HP() {
		victim.SetHP(1)
	} else {
		victim.ReduceHP(kept)
	}

	out.Ally = best
	out.Redirected = redirected
	if redirected >= best.HP() {
		ao := h.resolve(best, redirected, source, true)
		out.AllyOutcome = &ao
	} else {
		best.ReduceHP(redirected)
	}
	slog.Debug("martyr intercept", "victim", victim.ID, "ally", best.ID, "redirected", redirected)
	return true
}

func (h *Handler) die(victim *model.Unit, _ int32, source uint32, _ bool, _ *Outcome) bool {
	victim.SetHP(0)
	if h.OnDeath != nil {
		h.OnDeath(victim, source)
	}
	return true
}
