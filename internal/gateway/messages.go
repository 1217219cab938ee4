package gateway

import (
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/session"
	"github.com/udisondev/delve/internal/model"
)

// Message types pushed to websocket subscribers.
const (
	MsgEffect = "effect"
	MsgLog    = "log"
	MsgTick   = "tick"
	MsgEnd    = "end"
)

// Message is the websocket envelope.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type effectView struct {
	Kind     string `json:"kind"`
	X        int32  `json:"x"`
	Y        int32  `json:"y"`
	SourceID uint32 `json:"source_id,omitempty"`
	TargetID uint32 `json:"target_id,omitempty"`
	Value    int32  `json:"value,omitempty"`
}

func newEffectView(e hooks.VisualEffect) effectView {
	return effectView{
		Kind:     e.Kind,
		X:        e.Position.X,
		Y:        e.Position.Y,
		SourceID: e.SourceID,
		TargetID: e.TargetID,
		Value:    e.Value,
	}
}

type logView struct {
	Kind     string `json:"kind"`
	Round    int    `json:"round"`
	ActorID  uint32 `json:"actor_id,omitempty"`
	TargetID uint32 `json:"target_id,omitempty"`
	Message  string `json:"message"`
}

func newLogView(e hooks.LogEntry) logView {
	return logView{
		Kind:     e.Kind.String(),
		Round:    e.Round,
		ActorID:  e.ActorID,
		TargetID: e.TargetID,
		Message:  e.Message,
	}
}

type tickView struct {
	Room    int    `json:"room"`
	Key     string `json:"key"`
	ActorID uint32 `json:"actor_id"`
	Action  string `json:"action"`
	Outcome string `json:"outcome"`
}

func newTickView(room int, r session.Result) tickView {
	return tickView{
		Room:    room,
		Key:     r.Key.String(),
		ActorID: r.ActorID,
		Action:  r.Action,
		Outcome: r.Outcome.String(),
	}
}

// UnitView is the public snapshot of one unit.
type UnitView struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Hero   bool   `json:"hero"`
	Enemy  bool   `json:"enemy"`
	HP     int32  `json:"hp"`
	MaxHP  int32  `json:"max_hp"`
	Shield int32  `json:"shield,omitempty"`
	Boss   bool   `json:"boss,omitempty"`
	Phase  int    `json:"phase,omitempty"`
}

func newUnitViews(units []*model.Unit) []UnitView {
	out := make([]UnitView, 0, len(units))
	for _, u := range units {
		v := UnitView{
			ID:     u.ID,
			Name:   u.Name,
			Hero:   u.IsHero(),
			Enemy:  u.Side == model.SideMonsters,
			HP:     u.HP(),
			MaxHP:  u.MaxHP(),
			Shield: u.Shield,
			Boss:   u.IsBoss(),
		}
		if u.Boss != nil {
			v.Phase = u.Boss.Phase
		}
		out = append(out, v)
	}
	return out
}
