package testutil

import "github.com/udisondev/delve/internal/model"

// NewHero создаёт героя с заданными статами (hp = maxHP).
func NewHero(id uint32, name string, maxHP, attack, defense, speed int32) *model.Unit {
	return &model.Unit{
		ID:          id,
		Name:        name,
		Kind:        model.KindHero,
		Side:        model.SideHeroes,
		Level:       1,
		Stats:       model.Stats{HP: maxHP, MaxHP: maxHP, Attack: attack, Defense: defense, Speed: speed},
		AttackRange: 1,
	}
}

// NewMonster создаёт монстра с заданными статами (hp = maxHP).
func NewMonster(id uint32, name string, maxHP, attack, defense, speed int32) *model.Unit {
	return &model.Unit{
		ID:          id,
		Name:        name,
		Kind:        model.KindMonster,
		Side:        model.SideMonsters,
		Level:       1,
		Stats:       model.Stats{HP: maxHP, MaxHP: maxHP, Attack: attack, Defense: defense, Speed: speed},
		AttackRange: 1,
	}
}

// NewBoss creates a monster flagged as a boss of the given template.
func NewBoss(id uint32, template string, maxHP, attack, defense, speed int32, role model.BossRole) *model.Unit {
	u := NewMonster(id, template, maxHP, attack, defense, speed)
	u.TemplateID = template
	u.Boss = &model.BossInfo{Role: role, RaidID: "test_raid"}
	return u
}

// WithHP sets current hp and returns the unit.
func WithHP(u *model.Unit, hp int32) *model.Unit {
	u.SetHP(hp)
	return u
}
