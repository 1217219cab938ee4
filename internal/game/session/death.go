package session

import (
	"log/slog"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/effect"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/passive"
	"github.com/udisondev/delve/internal/model"
)

// onDeath runs once for every unit the revive chain lets die. The unit stays
// in the turn order until the next tick prunes it.
func (s *Session) onDeath(victim *model.Unit, sourceID uint32) {
	effect.Strip(victim)
	killer := s.byID[sourceID]

	if killer != nil && killer.ID != victim.ID {
		s.logf(hooks.LogDeath, killer, victim, "%s is slain by %s", victim.Name, killer.Name)
	} else {
		s.logf(hooks.LogDeath, victim, victim, "%s dies", victim.Name)
	}
	if !s.resolver.Quiet() {
		pos, _ := s.hooks.Positioner.Position(victim.ID)
		s.hooks.Events.Effect(hooks.VisualEffect{Kind: "death", Position: pos, SourceID: sourceID, TargetID: victim.ID})
	}

	if victim.IsHero() {
		s.hooks.Progress.Record(hooks.ProgressEvent{UnitID: victim.ID, Kind: hooks.ProgressDeaths, Amount: 1})
	}
	if killer != nil && killer.ID != victim.ID {
		s.onKill(killer, victim)
	}
	s.vengeance(victim)

	if victim.IsBoss() && victim.Boss.Role != model.BossRoleNone {
		s.bossDefeated(victim)
	}
}

func (s *Session) onKill(killer, victim *model.Unit) {
	if killer.IsHero() {
		s.hooks.Progress.Record(hooks.ProgressEvent{UnitID: killer.ID, Kind: hooks.ProgressKills, Amount: 1})
	}

	if killer.Side == model.SideHeroes && victim.Kind == model.KindMonster {
		s.reward(killer, victim)
	}

	if !killer.IsAlive() {
		return
	}
	s.streaks[killer.ID]++
	var b passive.Bonuses
	sit := passive.Situation{Target: victim, KillStreak: s.streaks[killer.ID]}
	s.d.passives.Evaluate(data.TriggerKill, killer, sit, &b)
	s.d.uniques.Evaluate(data.TriggerKill, killer, sit, &b)
	if healed := passive.Apply(killer, &b, passive.ReactiveTurns); healed > 0 && killer.IsHero() {
		s.hooks.Progress.Record(hooks.ProgressEvent{UnitID: killer.ID, Kind: hooks.ProgressHealing, Amount: int64(healed)})
	}
	if turns := s.d.uniques.TakeInvisibility(killer.ID); turns > 0 {
		killer.SetBuff(model.BuffInvisible, model.Buff{Value: 1, Remaining: turns})
		s.logf(hooks.LogSystem, killer, nil, "%s vanishes from sight", killer.Name)
	}
}

// reward reports xp and gold for the hero credited with the kill (the owner
// for a summon) and asks the loot generator for a drop.
func (s *Session) reward(killer, victim *model.Unit) {
	hero := killer
	if killer.Summon != nil {
		if owner, ok := s.byID[killer.Summon.OwnerID]; ok {
			hero = owner
		}
	}
	if hero.IsHero() {
		level := int64(max(victim.Level, 1))
		s.hooks.Progress.Record(hooks.ProgressEvent{UnitID: hero.ID, Kind: hooks.ProgressXP, Amount: level * s.cfg.XPPerLevel})
		s.hooks.Progress.Record(hooks.ProgressEvent{UnitID: hero.ID, Kind: hooks.ProgressGold, Amount: level * s.cfg.GoldPerLevel})
	}

	loot := s.hooks.Loot.RollLoot(s.ctx, hero, victim)
	if loot.Outcome == hooks.LootNone {
		return
	}
	s.logf(hooks.LogSystem, hero, victim, "%s: %s (%s)", hero.Name, loot.Item, loot.Outcome)
}

// vengeance gives every living ally of the victim with an on_lethal
// vengeance passive one more stack.
func (s *Session) vengeance(victim *model.Unit) {
	for _, ally := range s.Allies(victim) {
		if ally.ID == victim.ID {
			continue
		}
		var b passive.Bonuses
		s.d.passives.Evaluate(data.TriggerLethal, ally, passive.Situation{Target: victim}, &b)
		if b.Vengeance <= 0 {
			continue
		}
		effect.AddVengeance(ally, b.Vengeance, b.VengeanceDuration, s.cfg.MaxVengeanceStacks)
	}
}

func (s *Session) bossDefeated(boss *model.Unit) {
	d := hooks.BossDefeat{
		RaidID:     boss.Boss.RaidID,
		TemplateID: boss.TemplateID,
		Role:       boss.Boss.Role,
		Level:      boss.Level,
		Round:      s.order.Round(),
	}
	for _, u := range s.units {
		if u.IsHero() {
			d.Heroes = append(d.Heroes, u.ID)
		}
	}
	if err := s.hooks.Raid.BossDefeated(s.ctx, d); err != nil {
		slog.Error("failed to report boss defeat",
			"raid", d.RaidID,
			"boss", d.TemplateID,
			"error", err)
		return
	}
	slog.Info("raid boss defeated", "raid", d.RaidID, "boss", d.TemplateID, "round", d.Round)
}
