// Package hooks defines the collaborators the combat core talks to but does
// not own: positioning, loot, progression, raid progress and the effect/log
// sink. The core only calls them; none of them may call back into a session.
package hooks

import (
	"context"

	"github.com/udisondev/delve/internal/model"
)

// Positioner supplies unit positions and line of sight. Read only.
type Positioner interface {
	Position(unitID uint32) (model.Location, bool)
	LineOfSight(from, to model.Location) bool
}

// LootOutcome is what happened to a rolled drop.
type LootOutcome int8

const (
	LootNone LootOutcome = iota
	LootLooted
	LootSold
	LootInventoryFull
)

func (o LootOutcome) String() string {
	switch o {
	case LootLooted:
		return "looted"
	case LootSold:
		return "sold"
	case LootInventoryFull:
		return "inventory_full"
	default:
		return "none"
	}
}

// LootResult is the generator's answer for one kill.
type LootResult struct {
	Item    string
	Outcome LootOutcome
}

// LootRoller is asked for a drop whenever a monster dies to a hero-side unit.
type LootRoller interface {
	RollLoot(ctx context.Context, killer, victim *model.Unit) LootResult
}

// ProgressKind classifies a progression event.
type ProgressKind int8

const (
	ProgressGold ProgressKind = iota
	ProgressXP
	ProgressDamageDealt
	ProgressKills
	ProgressDeaths
	ProgressHealing
)

var progressKindNames = [...]string{
	ProgressGold:        "gold",
	ProgressXP:          "xp",
	ProgressDamageDealt: "damage_dealt",
	ProgressKills:       "kills",
	ProgressDeaths:      "deaths",
	ProgressHealing:     "healing",
}

func (k ProgressKind) String() string {
	if int(k) < len(progressKindNames) {
		return progressKindNames[k]
	}
	return "unknown"
}

// ParseProgressKind maps a stored name back to a kind.
func ParseProgressKind(s string) (ProgressKind, bool) {
	for i, name := range progressKindNames {
		if name == s {
			return ProgressKind(i), true
		}
	}
	return 0, false
}

// ProgressEvent is a discrete delta reported to the progression store.
type ProgressEvent struct {
	UnitID uint32
	Kind   ProgressKind
	Amount int64
}

// ProgressSink receives progression deltas. It must not block.
type ProgressSink interface {
	Record(ev ProgressEvent)
}

// BossDefeat describes a wing or final boss kill.
type BossDefeat struct {
	RaidID     string
	TemplateID string
	Role       model.BossRole
	Level      int32
	Round      int
	// Heroes lists the party's hero ids at the time of the kill.
	Heroes []uint32
}

// RaidHook is notified when a unit flagged as a raid boss dies.
type RaidHook interface {
	BossDefeated(ctx context.Context, d BossDefeat) error
}

// VisualEffect is a fire-and-forget render hint.
type VisualEffect struct {
	Kind     string
	Position model.Location
	SourceID uint32
	TargetID uint32
	Value    int32
}

// LogKind classifies a combat log entry.
type LogKind int8

const (
	LogAttack LogKind = iota
	LogSkill
	LogDeath
	LogSystem
)

func (k LogKind) String() string {
	switch k {
	case LogAttack:
		return "attack"
	case LogSkill:
		return "skill"
	case LogDeath:
		return "death"
	default:
		return "system"
	}
}

// LogEntry is one structured combat log line.
type LogEntry struct {
	Kind     LogKind
	Round    int
	ActorID  uint32
	TargetID uint32
	Message  string
}

// EventSink consumes visual effects and log entries. It must not block.
type EventSink interface {
	Effect(e VisualEffect)
	Log(e LogEntry)
}

// Set bundles every collaborator. Nil fields are replaced by Nop in Normalize.
type Set struct {
	Positioner Positioner
	Loot       LootRoller
	Progress   ProgressSink
	Raid       RaidHook
	Events     EventSink
}

// Normalize returns a copy with nil collaborators replaced by no-ops.
func (s Set) Normalize() Set {
	if s.Positioner == nil {
		s.Positioner = Nop{}
	}
	if s.Loot == nil {
		s.Loot = Nop{}
	}
	if s.Progress == nil {
		s.Progress = Nop{}
	}
	if s.Raid == nil {
		s.Raid = Nop{}
	}
	if s.Events == nil {
		s.Events = Nop{}
	}
	return s
}
