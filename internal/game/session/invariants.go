package session

import (
	"fmt"

	"github.com/udisondev/delve/internal/game/effect"
)

// CheckInvariants verifies the committed state: hp within [0, max_hp], no
// negative durations or cooldowns, boss phases consistent. A violation is a
// programming defect.
func (s *Session) CheckInvariants() error {
	var violations []string
	for _, u := range s.units {
		if u.Stats.HP < 0 || u.Stats.HP > u.Stats.MaxHP {
			violations = append(violations, fmt.Sprintf("unit %d: hp %d outside [0, %d]", u.ID, u.Stats.HP, u.Stats.MaxHP))
		}
		if u.Shield < 0 {
			violations = append(violations, fmt.Sprintf("unit %d: negative shield %d", u.ID, u.Shield))
		}
		if err := effect.CheckStatuses(u); err != nil {
			violations = append(violations, err.Error())
		}
		for id, cd := range u.Cooldowns {
			if cd < 0 {
				violations = append(violations, fmt.Sprintf("unit %d: cooldown %s is %d", u.ID, id, cd))
			}
		}
	}
	if err := s.machine.Check(); err != nil {
		violations = append(violations, err.Error())
	}
	if len(violations) == 0 {
		return nil
	}
	return &InvariantError{Violations: violations}
}
