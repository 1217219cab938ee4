package ai

import (
	"io"
	"log/slog"
	"testing"

	"github.com/udisondev/delve/internal/testutil"
)

func benchChoose(b *testing.B, debug bool) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	EnableDebugLogging(debug)
	defer EnableDebugLogging(false)

	m := testutil.WithHP(testutil.NewMonster(1, "m", 100, 10, 5, 5), 40)
	ai := NewMonsterAI(testAbilities(), testutil.NewScriptedDice())
	ctx := Context{Monster: m, Abilities: []string{"missing", "war_cry", "mend"}, Round: 1}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		m.Cooldowns = nil
		_ = ai.Choose(ctx)
	}
}

// BenchmarkChoose_DebugDisabled is the production path: the guard skips slog entirely.
func BenchmarkChoose_DebugDisabled(b *testing.B) { benchChoose(b, false) }

// BenchmarkChoose_DebugEnabled pays for attribute formatting even though the
// handler drops Debug records.
func BenchmarkChoose_DebugEnabled(b *testing.B) { benchChoose(b, true) }

// BenchmarkIsDebugEnabled measures the raw guard.
func BenchmarkIsDebugEnabled(b *testing.B) {
	EnableDebugLogging(false)

	b.ResetTimer()
	for range b.N {
		_ = IsDebugEnabled()
	}
}
