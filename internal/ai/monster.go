// Package ai chooses monster abilities. Boss phases narrow the ability set;
// cooldowns and per-ability conditions narrow it further.
package ai

import (
	"log/slog"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/dice"
	"github.com/udisondev/delve/internal/model"
)

// Lookup resolves monster abilities.
type Lookup interface {
	Ability(id string) *data.MonsterAbility
}

// Context is what a monster sees when choosing.
type Context struct {
	Monster *model.Unit
	// Abilities is the ability id list to choose from: the current boss
	// phase's set, or the monster's own list.
	Abilities []string
	Round     int
	BossFight bool
	Phase     int
}

// MonsterAI — выбор способности монстра.
type MonsterAI struct {
	reg Lookup
	src dice.Source
}

// NewMonsterAI creates a MonsterAI. src rolls ability chances.
func NewMonsterAI(reg Lookup, src dice.Source) *MonsterAI {
	return &MonsterAI{reg: reg, src: src}
}

// Choose returns the first eligible ability in list order and stamps its
// cooldown, or nil for a basic attack. Unknown ids are skipped.
func (ai *MonsterAI) Choose(ctx Context) *data.MonsterAbility {
	m := ctx.Monster
	for _, id := range ctx.Abilities {
		a := ai.reg.Ability(id)
		if a == nil {
			if IsDebugEnabled() {
				slog.Debug("unknown monster ability", "monster", m.ID, "ability", id)
			}
			continue
		}
		if !ai.eligible(ctx, a) {
			continue
		}
		if a.Chance > 0 && !dice.Chance(ai.src, a.Chance) {
			continue
		}
		m.SetCooldown(a.ID, a.Cooldown)

		if IsDebugEnabled() {
			slog.Debug("monster chose ability",
				"monster", m.ID,
				"ability", a.ID,
				"round", ctx.Round,
				"phase", ctx.Phase)
		}
		return a
	}
	return nil
}

func (ai *MonsterAI) eligible(ctx Context, a *data.MonsterAbility) bool {
	m := ctx.Monster
	switch {
	case m.Cooldown(a.ID) > 0:
		return false
	case int32(ctx.Round) < a.MinRound:
		return false
	case a.BelowHP > 0 && m.HPPercent() >= a.BelowHP:
		return false
	case a.BossOnly && !ctx.BossFight:
		return false
	case m.IsBoss() && !a.AllowedInPhase(ctx.Phase):
		return false
	}
	return true
}
