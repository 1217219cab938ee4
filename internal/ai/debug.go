package ai

import "sync/atomic"

// debugLoggingEnabled guards per-turn debug logging of monster decisions and
// the session tick loop. Checking an atomic is cheaper than building slog
// attributes that the handler then discards.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging switches per-turn debug logging on or off.
// Called once at startup from the binaries, after the log level is parsed.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether per-turn debug logging is on.
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("monster chose ability", "monster", m.ID, "ability", a.ID)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
