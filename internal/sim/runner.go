// Package sim runs headless batches of dungeon runs and summarises them.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/game/dice"
	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/session"
	"github.com/udisondev/delve/internal/progress"
	"github.com/udisondev/delve/internal/telemetry"
)

var ErrUnknownScenario = errors.New("unknown scenario")

// Registry is the reference data a Runner needs.
type Registry interface {
	session.Lookup
	Scenario(id string) *data.Scenario
}

// Options tune a Runner. Zero values fall back to one worker and no turn limit.
type Options struct {
	Workers  int
	MaxTurns int
	// Progress, when set, receives every combat's progression events.
	Progress progress.Store
	// Raid, when set, is notified of raid boss defeats.
	Raid hooks.RaidHook
}

// Batch is a set of independent runs of one scenario.
type Batch struct {
	RunID    string
	Scenario string
	Combats  int
	Seed     uint64
}

// Result is one run of a batch.
type Result struct {
	Index int
	Seed1 uint64
	Seed2 uint64
	Run
	Party progress.Totals
}

// Summary aggregates a batch. Results are ordered by index.
type Summary struct {
	RunID     string
	Scenario  string
	Seed      uint64
	Combats   int
	Victories int
	Defeats   int
	Timeouts  int
	AvgTicks  float64
	MaxTicks  int
	AvgRooms  float64
	Party     progress.Totals
	StartedAt time.Time
	Duration  time.Duration
	Results   []Result
}

// WinRate returns the share of cleared runs.
func (s Summary) WinRate() float64 {
	if s.Combats == 0 {
		return 0
	}
	return float64(s.Victories) / float64(s.Combats)
}

// Runner — пул воркеров пакетной симуляции.
type Runner struct {
	reg    Registry
	cfg    session.Config
	opts   Options
	tracer trace.Tracer
}

// NewRunner creates a Runner.
func NewRunner(reg Registry, cfg session.Config, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Runner{
		reg:    reg,
		cfg:    cfg,
		opts:   opts,
		tracer: telemetry.Tracer(),
	}
}

// Run plays every combat of the batch on the worker pool. Each combat owns
// its dice, dungeon and ledger; the summary does not depend on the worker
// count. The first failing combat cancels the rest.
func (r *Runner) Run(ctx context.Context, b Batch) (Summary, error) {
	sc := r.reg.Scenario(b.Scenario)
	if sc == nil {
		return Summary{}, fmt.Errorf("batch %s: %w: %q", b.RunID, ErrUnknownScenario, b.Scenario)
	}

	ctx, span := r.tracer.Start(ctx, "sim.batch", trace.WithAttributes(
		attribute.String("delve.run_id", b.RunID),
		attribute.String("delve.scenario", b.Scenario),
		attribute.Int("delve.combats", b.Combats),
		attribute.Int("delve.workers", r.opts.Workers),
	))
	defer span.End()

	sum := Summary{
		RunID:     b.RunID,
		Scenario:  b.Scenario,
		Seed:      b.Seed,
		Combats:   b.Combats,
		StartedAt: time.Now(),
		Results:   make([]Result, b.Combats),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i := range b.Combats {
		g.Go(func() error {
			res, err := r.combat(gctx, b, sc, i)
			if err != nil {
				return fmt.Errorf("combat %d: %w", i, err)
			}
			sum.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return sum, fmt.Errorf("batch %s: %w", b.RunID, err)
	}

	sum.aggregate()
	sum.Duration = time.Since(sum.StartedAt)
	span.SetAttributes(
		attribute.Int("delve.victories", sum.Victories),
		attribute.Int("delve.timeouts", sum.Timeouts),
	)

	slog.Info("batch finished",
		"run", b.RunID,
		"scenario", b.Scenario,
		"combats", sum.Combats,
		"victories", sum.Victories,
		"defeats", sum.Defeats,
		"timeouts", sum.Timeouts,
		"avgTicks", sum.AvgTicks,
		"duration", sum.Duration)
	return sum, nil
}

func (r *Runner) combat(ctx context.Context, b Batch, sc *data.Scenario, index int) (Result, error) {
	s1, s2 := DeriveSeed(b.Seed, b.Scenario, index)
	res := Result{Index: index, Seed1: s1, Seed2: s2}

	ctx, span := r.tracer.Start(ctx, "sim.combat", trace.WithAttributes(
		attribute.Int("delve.index", index),
	))
	defer span.End()

	ledger := progress.NewLedger(fmt.Sprintf("%s-%05d", b.RunID, index), r.opts.Progress)
	deps := session.Deps{
		Registry: r.reg,
		Dice:     dice.New(s1, s2),
		Hooks:    hooks.Set{Progress: ledger, Raid: r.opts.Raid},
		Config:   r.cfg,
	}

	run, err := Play(ctx, sc, deps, r.opts.MaxTurns, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	res.Run = run
	for _, id := range run.Heroes {
		res.Party = addTotals(res.Party, ledger.Totals(id))
	}
	if err := ledger.Flush(ctx); err != nil {
		return res, err
	}

	span.SetAttributes(
		attribute.String("delve.outcome", run.Outcome.String()),
		attribute.Int("delve.ticks", run.Ticks),
	)
	if run.Outcome == TimedOut {
		slog.Warn("combat hit the turn limit", "run", b.RunID, "index", index, "ticks", run.Ticks)
	}
	return res, nil
}

func (s *Summary) aggregate() {
	var ticks, rooms int
	for _, r := range s.Results {
		switch r.Outcome {
		case Cleared:
			s.Victories++
		case Wiped:
			s.Defeats++
		case TimedOut:
			s.Timeouts++
		}
		ticks += r.Ticks
		rooms += r.Rooms
		s.MaxTicks = max(s.MaxTicks, r.Ticks)
		s.Party = addTotals(s.Party, r.Party)
	}
	if n := len(s.Results); n > 0 {
		s.AvgTicks = float64(ticks) / float64(n)
		s.AvgRooms = float64(rooms) / float64(n)
	}
}

func addTotals(a, b progress.Totals) progress.Totals {
	return progress.Totals{
		Gold:        a.Gold + b.Gold,
		XP:          a.XP + b.XP,
		DamageDealt: a.DamageDealt + b.DamageDealt,
		Kills:       a.Kills + b.Kills,
		Deaths:      a.Deaths + b.Deaths,
		Healing:     a.Healing + b.Healing,
	}
}
