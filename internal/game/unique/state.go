// Package unique runs unique-item procs. Proc counters live in a Registry
// owned by the dungeon run, keyed by hero id, with explicit reset boundaries.
package unique

// ProcState — счётчики проков одного героя.
//
// Permanent fields survive ResetRoom and are cleared only by ResetDungeon.
type ProcState struct {
	// transient, reset every room
	Attacks         int32
	RoomStacks      int32
	InvisibleTurns  int32
	FirstStrikeUsed bool

	// permanent for the dungeon run
	KillStacks  int32
	PhoenixUsed bool
}

func (s *ProcState) resetRoom() {
	s.Attacks = 0
	s.RoomStacks = 0
	s.InvisibleTurns = 0
	s.FirstStrikeUsed = false
}

// Registry maps hero ids to their proc state. Not safe for concurrent use:
// it belongs to one dungeon run.
type Registry struct {
	states map[uint32]*ProcState
}

// NewRegistry создаёт пустой Registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[uint32]*ProcState)}
}

// State returns the state of a hero, creating it on first reference.
func (r *Registry) State(heroID uint32) *ProcState {
	st, ok := r.states[heroID]
	if !ok {
		st = &ProcState{}
		r.states[heroID] = st
	}
	return st
}

// Peek returns the state without creating it.
func (r *Registry) Peek(heroID uint32) (*ProcState, bool) {
	st, ok := r.states[heroID]
	return st, ok
}

// ResetDungeon drops every state.
func (r *Registry) ResetDungeon() {
	clear(r.states)
}

// ResetRoom clears transient counters; permanent stacks and once-per-dungeon
// flags persist.
func (r *Registry) ResetRoom() {
	for _, st := range r.states {
		st.resetRoom()
	}
}

// Len returns the number of tracked heroes.
func (r *Registry) Len() int { return len(r.states) }
