package hooks

import (
	"context"

	"github.com/udisondev/delve/internal/model"
)

// Nop implements every collaborator and does nothing. Position lookups miss,
// so the core falls back to id-ordered targeting; line of sight is always clear.
type Nop struct{}

func (Nop) Position(uint32) (model.Location, bool)                        { return model.Location{}, false }
func (Nop) LineOfSight(model.Location, model.Location) bool               { return true }
func (Nop) RollLoot(context.Context, *model.Unit, *model.Unit) LootResult { return LootResult{} }
func (Nop) Record(ProgressEvent)                                          {}
func (Nop) BossDefeated(context.Context, BossDefeat) error                { return nil }
func (Nop) Effect(VisualEffect)                                           {}
func (Nop) Log(LogEntry)                                                  {}
