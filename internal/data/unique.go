package data

import "gopkg.in/yaml.v3"

// UniqueKind enumerates unique-item proc types.
type UniqueKind int8

const (
	UniqueEveryNth        UniqueKind = iota // every Nth attack deals +Value damage
	UniqueKillStacks                        // +Value damage per kill, persists for the dungeon
	UniqueRoomStacks                        // +Value reduction per hit taken, resets per room
	UniqueCheatDeath                        // once per dungeon: revive at Value of max hp
	UniqueInvisibleOnKill                   // Turns of invisibility after a kill
	UniqueCritLifesteal                     // heal Value of crit damage dealt
	UniqueThorns                            // reflect Value flat damage when hit
	UniqueBerserk                           // +Value damage below Threshold hp
	UniqueFirstStrike                       // +Value damage on the first attack of each room

	uniqueKindCount
)

var uniqueKindNames = [...]string{
	UniqueEveryNth:        "every_nth",
	UniqueKillStacks:      "kill_stacks",
	UniqueRoomStacks:      "room_stacks",
	UniqueCheatDeath:      "cheat_death",
	UniqueInvisibleOnKill: "invisible_on_kill",
	UniqueCritLifesteal:   "crit_lifesteal",
	UniqueThorns:          "thorns",
	UniqueBerserk:         "berserk",
	UniqueFirstStrike:     "first_strike",
}

var uniqueKindTriggers = [...]Trigger{
	UniqueEveryNth:        TriggerAttack,
	UniqueKillStacks:      TriggerAttack,
	UniqueRoomStacks:      TriggerDefend,
	UniqueCheatDeath:      TriggerLethal,
	UniqueInvisibleOnKill: TriggerKill,
	UniqueCritLifesteal:   TriggerCrit,
	UniqueThorns:          TriggerDefend,
	UniqueBerserk:         TriggerLowHP,
	UniqueFirstStrike:     TriggerAttack,
}

func (k UniqueKind) String() string {
	if int(k) < len(uniqueKindNames) {
		return uniqueKindNames[k]
	}
	return "unknown"
}

// Trigger returns the trigger point the proc is evaluated at.
func (k UniqueKind) Trigger() Trigger {
	if int(k) < len(uniqueKindTriggers) {
		return uniqueKindTriggers[k]
	}
	return TriggerAttack
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *UniqueKind) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeEnum[UniqueKind](node, uniqueKindNames[:], "unique kind")
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// UniqueKindCount returns the number of unique kinds.
func UniqueKindCount() int { return int(uniqueKindCount) }

// UniqueDef — уникальный предмет с процом.
type UniqueDef struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Kind      UniqueKind `yaml:"kind"`
	Every     int32      `yaml:"every"`
	Value     float64    `yaml:"value"`
	MaxStacks int32      `yaml:"max_stacks"`
	Turns     int32      `yaml:"turns"`
	Threshold float64    `yaml:"threshold"`
}
