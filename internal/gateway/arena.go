package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/dice"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/session"
	"github.com/udisondev/delve/internal/sim"
)

// Arena statuses.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusStopped  = "stopped"
	StatusFailed   = "failed"
)

var (
	ErrArenaNotFound = errors.New("arena not found")
	ErrArenaStarted  = errors.New("arena already started")
)

// ArenaView is the public snapshot of an arena.
type ArenaView struct {
	ID       string     `json:"id"`
	Scenario string     `json:"scenario"`
	Seed     uint64     `json:"seed"`
	Status   string     `json:"status"`
	Room     int        `json:"room"`
	Ticks    int        `json:"ticks"`
	Outcome  string     `json:"outcome,omitempty"`
	Error    string     `json:"error,omitempty"`
	Units    []UnitView `json:"units"`
}

// Arena — живая встреча, транслируемая подписчикам.
//
// The play goroutine owns the dungeon; readers only see the snapshot it
// publishes after every tick.
type Arena struct {
	hub *Hub
	sc  *data.Scenario

	mu     sync.Mutex
	view   ArenaView
	cancel context.CancelFunc
	done   chan struct{}
}

func newArena(id string, sc *data.Scenario, seed uint64, hub *Hub) *Arena {
	return &Arena{
		hub: hub,
		sc:  sc,
		view: ArenaView{
			ID:       id,
			Scenario: sc.ID,
			Seed:     seed,
			Status:   StatusPending,
		},
		done: make(chan struct{}),
	}
}

// View returns a copy of the latest snapshot.
func (a *Arena) View() ArenaView {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.view
	v.Units = append([]UnitView(nil), a.view.Units...)
	return v
}

// Hub returns the event hub of the arena.
func (a *Arena) Hub() *Hub { return a.hub }

// Done is closed when the play goroutine exits.
func (a *Arena) Done() <-chan struct{} { return a.done }

func (a *Arena) start(ctx context.Context, reg sim.Registry, cfg session.Config, interval time.Duration, maxTurns int) error {
	a.mu.Lock()
	if a.view.Status != StatusPending {
		a.mu.Unlock()
		return ErrArenaStarted
	}
	a.view.Status = StatusRunning
	ctx, a.cancel = context.WithCancel(ctx)
	seed := a.view.Seed
	a.mu.Unlock()

	s1, s2 := sim.DeriveSeed(seed, a.sc.ID, 0)
	deps := session.Deps{
		Registry: reg,
		Dice:     dice.New(s1, s2),
		Hooks:    hooks.Set{Events: hooks.Fanout{a.hub, hooks.SlogSink{}}},
		Config:   cfg,
	}

	go a.play(ctx, deps, interval, maxTurns)
	return nil
}

func (a *Arena) play(ctx context.Context, deps session.Deps, interval time.Duration, maxTurns int) {
	defer close(a.done)
	defer a.hub.Close()

	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	onTick := func(ctx context.Context, room int, s *session.Session, r session.Result) error {
		a.mu.Lock()
		a.view.Room = room
		a.view.Ticks++
		a.view.Units = newUnitViews(s.Units())
		a.mu.Unlock()

		a.hub.Publish(MsgTick, newTickView(room, r))
		if ticker == nil {
			return ctx.Err()
		}
		select {
		case <-ticker.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	run, err := sim.Play(ctx, a.sc, deps, maxTurns, onTick)

	a.mu.Lock()
	switch {
	case errors.Is(err, context.Canceled):
		a.view.Status = StatusStopped
	case err != nil:
		a.view.Status = StatusFailed
		a.view.Error = err.Error()
	default:
		a.view.Status = StatusFinished
		a.view.Outcome = run.Outcome.String()
	}
	view := a.view
	a.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("arena failed", "arena", view.ID, "error", err)
	} else {
		slog.Info("arena ended", "arena", view.ID, "status", view.Status, "outcome", view.Outcome, "ticks", view.Ticks)
	}
	a.hub.Publish(MsgEnd, map[string]any{
		"status":  view.Status,
		"outcome": view.Outcome,
		"ticks":   view.Ticks,
		"rooms":   run.Rooms,
	})
}

// stop cancels a running arena. A pending arena is marked stopped.
func (a *Arena) stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.view.Status {
	case StatusPending:
		a.view.Status = StatusStopped
		a.hub.Close()
		close(a.done)
	case StatusRunning:
		a.cancel()
	}
}

// Arenas is the registry of live arenas.
type Arenas struct {
	mu     sync.RWMutex
	byID   map[string]*Arena
	nextID int
}

func newArenas() *Arenas {
	return &Arenas{byID: make(map[string]*Arena)}
}

func (as *Arenas) add(sc *data.Scenario, seed uint64, hub *Hub) *Arena {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.nextID++
	a := newArena(fmt.Sprintf("a%d", as.nextID), sc, seed, hub)
	as.byID[a.view.ID] = a
	return a
}

func (as *Arenas) get(id string) (*Arena, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	a, ok := as.byID[id]
	if !ok {
		return nil, fmt.Errorf("arena %s: %w", id, ErrArenaNotFound)
	}
	return a, nil
}

func (as *Arenas) all() []*Arena {
	as.mu.RLock()
	defer as.mu.RUnlock()
	out := make([]*Arena, 0, len(as.byID))
	for _, a := range as.byID {
		out = append(out, a)
	}
	return out
}
