package session

import (
	"errors"
	"strings"
)

var (
	ErrAbandoned   = errors.New("combat abandoned")
	ErrOutOfOrder  = errors.New("tick key out of order")
	ErrFinished    = errors.New("combat already finished")
	ErrNoHeroes    = errors.New("no living heroes")
	ErrNoMonsters  = errors.New("no living monsters")
	ErrDuplicateID = errors.New("duplicate unit id")
	ErrUnknownRef  = errors.New("unknown reference data")
)

// InvariantError lists every state invariant broken after a tick.
type InvariantError struct {
	Violations []string
}

func (e *InvariantError) Error() string {
	return "combat invariants violated: " + strings.Join(e.Violations, "; ")
}
