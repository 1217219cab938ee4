package hooks

import "log/slog"

// SlogSink writes combat log entries to a slog.Logger at Debug level.
// Visual effects are dropped.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s SlogSink) Effect(VisualEffect) {}

func (s SlogSink) Log(e LogEntry) {
	s.logger().Debug(e.Message,
		"kind", e.Kind.String(),
		"round", e.Round,
		"actor", e.ActorID,
		"target", e.TargetID)
}

// Fanout forwards events to several sinks in order.
type Fanout []EventSink

func (f Fanout) Effect(e VisualEffect) {
	for _, s := range f {
		s.Effect(e)
	}
}

func (f Fanout) Log(e LogEntry) {
	for _, s := range f {
		s.Log(e)
	}
}
