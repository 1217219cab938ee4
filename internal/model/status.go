package model

// StatusKind identifies a per-turn status effect.
type StatusKind int8

const (
	StatusDOT       StatusKind = iota // damage over time (poison, burn, bleed)
	StatusHOT                         // heal over time
	StatusStun                        // skip turn
	StatusFreeze                      // skip turn, separate immunity from stun
	StatusSlow                        // speed penalty for initiative
	StatusMark                        // incoming damage amplification
	StatusHealBlock                   // healing reduction (magnitude is percent)
)

var statusKindNames = [...]string{
	StatusDOT:       "dot",
	StatusHOT:       "hot",
	StatusStun:      "stun",
	StatusFreeze:    "freeze",
	StatusSlow:      "slow",
	StatusMark:      "mark",
	StatusHealBlock: "heal_block",
}

// String returns the lower-case name used in data files and logs.
func (k StatusKind) String() string {
	if int(k) < len(statusKindNames) {
		return statusKindNames[k]
	}
	return "unknown"
}

// ParseStatusKind maps a data-file name to a StatusKind.
func ParseStatusKind(s string) (StatusKind, bool) {
	for i, name := range statusKindNames {
		if name == s {
			return StatusKind(i), true
		}
	}
	return 0, false
}

// IsCrowdControl reports whether the status prevents the unit from acting.
func (k StatusKind) IsCrowdControl() bool {
	return k == StatusStun || k == StatusFreeze
}

// StatusEffect is an active status instance on a unit.
//
// Magnitude is fixed when the effect is applied (usually derived from the
// inflicting unit's attack at that moment) and is not re-evaluated later.
type StatusEffect struct {
	Kind      StatusKind
	Remaining int32
	SourceID  uint32
	Stacks    int32
	Magnitude int32
}

// AddStatus appends a status effect. A same-kind effect from the same source
// refreshes duration, keeps the stronger magnitude and adds a stack instead.
func (u *Unit) AddStatus(se StatusEffect) {
	if se.Remaining <= 0 {
		return
	}
	if se.Stacks < 1 {
		se.Stacks = 1
	}
	for i := range u.Statuses {
		cur := &u.Statuses[i]
		if cur.Kind == se.Kind && cur.SourceID == se.SourceID {
			cur.Remaining = max(cur.Remaining, se.Remaining)
			cur.Magnitude = max(cur.Magnitude, se.Magnitude)
			cur.Stacks += se.Stacks
			return
		}
	}
	u.Statuses = append(u.Statuses, se)
}

// HasStatus reports whether any effect of the given kind is active.
func (u *Unit) HasStatus(kind StatusKind) bool {
	for i := range u.Statuses {
		if u.Statuses[i].Kind == kind && u.Statuses[i].Remaining > 0 {
			return true
		}
	}
	return false
}

// StatusMagnitude sums the magnitude of all active effects of the given kind.
func (u *Unit) StatusMagnitude(kind StatusKind) int32 {
	var total int32
	for i := range u.Statuses {
		if u.Statuses[i].Kind == kind && u.Statuses[i].Remaining > 0 {
			total += u.Statuses[i].Magnitude
		}
	}
	return total
}

// ClearStatuses drops every status effect, keeping the backing array.
func (u *Unit) ClearStatuses() {
	u.Statuses = u.Statuses[:0]
}
