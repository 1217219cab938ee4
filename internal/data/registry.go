package data

import "sort"

// Registry holds all reference data. Lookups return nil for unknown ids;
// callers treat nil as "skip the action".
//
// A Registry is immutable after Load and safe to share between sessions.
type Registry struct {
	skills    map[string]*SkillDefinition
	abilities map[string]*MonsterAbility
	monsters  map[string]*MonsterTemplate
	passives  map[string]*PassiveDef
	uniques   map[string]*UniqueDef
	classes   map[string]*HeroClass
	scenarios map[string]*Scenario
}

// NewRegistry создаёт пустой Registry.
func NewRegistry() *Registry {
	return &Registry{
		skills:    make(map[string]*SkillDefinition),
		abilities: make(map[string]*MonsterAbility),
		monsters:  make(map[string]*MonsterTemplate),
		passives:  make(map[string]*PassiveDef),
		uniques:   make(map[string]*UniqueDef),
		classes:   make(map[string]*HeroClass),
		scenarios: make(map[string]*Scenario),
	}
}

// Skill returns a skill definition by id.
func (r *Registry) Skill(id string) *SkillDefinition {
	if r == nil {
		return nil
	}
	return r.skills[id]
}

// Ability returns a monster ability by id.
func (r *Registry) Ability(id string) *MonsterAbility {
	if r == nil {
		return nil
	}
	return r.abilities[id]
}

// Monster returns a monster template by id.
func (r *Registry) Monster(id string) *MonsterTemplate {
	if r == nil {
		return nil
	}
	return r.monsters[id]
}

// Passive returns a passive definition by id.
func (r *Registry) Passive(id string) *PassiveDef {
	if r == nil {
		return nil
	}
	return r.passives[id]
}

// Unique returns a unique item definition by id.
func (r *Registry) Unique(id string) *UniqueDef {
	if r == nil {
		return nil
	}
	return r.uniques[id]
}

// Class returns a hero class preset by id.
func (r *Registry) Class(id string) *HeroClass {
	if r == nil {
		return nil
	}
	return r.classes[id]
}

// Scenario returns a scenario by id.
func (r *Registry) Scenario(id string) *Scenario {
	if r == nil {
		return nil
	}
	return r.scenarios[id]
}

// ScenarioIDs returns all scenario ids, sorted.
func (r *Registry) ScenarioIDs() []string {
	ids := make([]string, 0, len(r.scenarios))
	for id := range r.scenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddSkill registers a skill (used by loaders and tests).
func (r *Registry) AddSkill(s *SkillDefinition) { r.skills[s.ID] = s }

// AddAbility registers a monster ability.
func (r *Registry) AddAbility(a *MonsterAbility) { r.abilities[a.ID] = a }

// AddMonster registers a monster template.
func (r *Registry) AddMonster(m *MonsterTemplate) { r.monsters[m.ID] = m }

// AddPassive registers a passive.
func (r *Registry) AddPassive(p *PassiveDef) { r.passives[p.ID] = p }

// AddUnique registers a unique item.
func (r *Registry) AddUnique(u *UniqueDef) { r.uniques[u.ID] = u }

// AddClass registers a hero class.
func (r *Registry) AddClass(c *HeroClass) { r.classes[c.ID] = c }

// AddScenario registers a scenario.
func (r *Registry) AddScenario(s *Scenario) { r.scenarios[s.ID] = s }

// Counts returns the number of entries per table, for startup logging.
func (r *Registry) Counts() map[string]int {
	return map[string]int{
		"skills":    len(r.skills),
		"abilities": len(r.abilities),
		"monsters":  len(r.monsters),
		"passives":  len(r.passives),
		"uniques":   len(r.uniques),
		"classes":   len(r.classes),
		"scenarios": len(r.scenarios),
	}
}
