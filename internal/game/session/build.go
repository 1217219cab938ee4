package session

import (
	"fmt"
	"slices"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/model"
)

// Lookup is the reference data a dungeon needs.
type Lookup interface {
	Skill(id string) *data.SkillDefinition
	Ability(id string) *data.MonsterAbility
	Monster(id string) *data.MonsterTemplate
	Passive(id string) *data.PassiveDef
	Unique(id string) *data.UniqueDef
	Class(id string) *data.HeroClass
}

// BuildHero creates a hero from a class preset at the given level.
func BuildHero(reg Lookup, id uint32, h data.ScenarioHero, scaling float64) (*model.Unit, error) {
	class := reg.Class(h.Class)
	if class == nil {
		return nil, fmt.Errorf("hero class %q: %w", h.Class, ErrUnknownRef)
	}
	level := max(h.Level, 1)
	return &model.Unit{
		ID:          id,
		Name:        class.Name,
		Kind:        model.KindHero,
		Side:        model.SideHeroes,
		Level:       level,
		Stats:       class.Stats.Scaled(level, scaling),
		AttackRange: max(class.AttackRange, 1),
		Class:       class.ID,
		DPS:         class.DPS,
		Skills:      slices.Clone(class.Skills),
		Passives:    slices.Clone(class.Passives),
		Uniques:     slices.Clone(h.Uniques),
		Consumables: model.Consumables{ResurrectionScrolls: h.ResurrectionScrolls},
	}, nil
}

// BuildMonster creates a monster from a template. Boss templates get their
// BossInfo here; phases are attached when the encounter starts.
func BuildMonster(reg Lookup, id uint32, template string, level int32, scaling float64) (*model.Unit, error) {
	tmpl := reg.Monster(template)
	if tmpl == nil {
		return nil, fmt.Errorf("monster template %q: %w", template, ErrUnknownRef)
	}
	level = max(level, 1)
	u := &model.Unit{
		ID:          id,
		Name:        tmpl.Name,
		Kind:        model.KindMonster,
		Side:        model.SideMonsters,
		Level:       level,
		Stats:       tmpl.Scaled(level, scaling),
		AttackRange: max(tmpl.AttackRange, 1),
		TemplateID:  tmpl.ID,
		Abilities:   slices.Clone(tmpl.Abilities),
		Passives:    slices.Clone(tmpl.Passives),
	}
	if tmpl.Boss != nil {
		u.Boss = &model.BossInfo{Role: model.BossRole(tmpl.Boss.Role), RaidID: tmpl.Boss.RaidID}
	}
	return u, nil
}

// BuildParty creates the heroes of a scenario with ids 1..n.
func BuildParty(reg Lookup, sc *data.Scenario, scaling float64) ([]*model.Unit, error) {
	heroes := make([]*model.Unit, 0, len(sc.Heroes))
	for i, h := range sc.Heroes {
		u, err := BuildHero(reg, uint32(i+1), h, scaling)
		if err != nil {
			return nil, fmt.Errorf("scenario %s hero %d: %w", sc.ID, i, err)
		}
		heroes = append(heroes, u)
	}
	return heroes, nil
}

// BuildRoom creates the monsters of one room with ids starting at firstID.
func BuildRoom(reg Lookup, room data.ScenarioRoom, firstID uint32, scaling float64) ([]*model.Unit, error) {
	var monsters []*model.Unit
	id := firstID
	for _, m := range room.Monsters {
		for range max(m.Count, 1) {
			u, err := BuildMonster(reg, id, m.Template, m.Level, scaling)
			if err != nil {
				return nil, err
			}
			monsters = append(monsters, u)
			id++
		}
	}
	return monsters, nil
}
