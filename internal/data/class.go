package data

// HeroClass is a preset used by the simulator and the arena to build heroes.
type HeroClass struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	DPS         bool      `yaml:"dps"`
	Stats       BaseStats `yaml:"stats"`
	AttackRange int32     `yaml:"attack_range"`
	Skills      []string  `yaml:"skills"`
	Passives    []string  `yaml:"passives"`
}

// Scenario describes a party and the rooms of a dungeon run.
type Scenario struct {
	ID     string         `yaml:"id"`
	Name   string         `yaml:"name"`
	Heroes []ScenarioHero `yaml:"heroes"`
	Rooms  []ScenarioRoom `yaml:"rooms"`
}

// ScenarioHero is one party member.
type ScenarioHero struct {
	Class               string   `yaml:"class"`
	Level               int32    `yaml:"level"`
	Uniques             []string `yaml:"uniques"`
	ResurrectionScrolls int32    `yaml:"resurrection_scrolls"`
}

// ScenarioRoom is one encounter.
type ScenarioRoom struct {
	Monsters []ScenarioMonster `yaml:"monsters"`
}

// ScenarioMonster spawns Count monsters of a template at a level.
type ScenarioMonster struct {
	Template string `yaml:"template"`
	Level    int32  `yaml:"level"`
	Count    int    `yaml:"count"`
}
