package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/udisondev/delve/internal/ai"
	"github.com/udisondev/delve/internal/config"
	"github.com/udisondev/delve/internal/data"
	"github.com/udisondev/delve/internal/db"
	"github.com/udisondev/delve/internal/game/raid"
	"github.com/udisondev/delve/internal/sim"
	"github.com/udisondev/delve/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delvesim", flag.ContinueOnError)
	cfgPath := fs.String("config", config.Path(), "path to the YAML config")
	scenarios := fs.String("scenario", "", "comma-separated scenario ids, or \"all\" (default from config)")
	batches := fs.Int("batches", 0, "combats per scenario (default from config)")
	workers := fs.Int("workers", 0, "worker goroutines (default from config)")
	seed := fs.Uint64("seed", 0, "batch seed (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *scenarios != "" {
		cfg.Sim.Scenario = *scenarios
	}
	if *batches > 0 {
		cfg.Sim.Batches = *batches
	}
	if *workers > 0 {
		cfg.Sim.Workers = *workers
	}
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown", "error", err)
		}
	}()

	reg, err := data.LoadDir(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("loading reference data: %w", err)
	}

	opts := sim.Options{Workers: cfg.Sim.Workers, MaxTurns: cfg.Sim.MaxTurns}

	var raidMgr *raid.ProgressManager
	if cfg.Database.Enabled {
		dsn := cfg.Database.DSN()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		database, err := db.New(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		raidMgr = raid.NewProgressManager(database.Raid())
		opts.Progress = database.Progress()
		opts.Raid = raidMgr
	}

	var reports *sim.ReportStore
	if cfg.Report.Enabled {
		reports, err = sim.OpenReportStore(ctx, cfg.Report.Path)
		if err != nil {
			return fmt.Errorf("opening report store: %w", err)
		}
		defer reports.Close()
	}

	ids := strings.Split(cfg.Sim.Scenario, ",")
	if cfg.Sim.Scenario == "all" {
		ids = reg.ScenarioIDs()
	}

	runner := sim.NewRunner(reg, cfg.Session(), opts)
	summaries := make([]sim.Summary, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		batch := sim.Batch{
			RunID:    fmt.Sprintf("%s-%d", id, time.Now().UnixMilli()),
			Scenario: id,
			Combats:  cfg.Sim.Batches,
			Seed:     cfg.Sim.Seed,
		}
		sum, err := runner.Run(ctx, batch)
		if err != nil {
			return fmt.Errorf("running %s: %w", id, err)
		}
		if reports != nil {
			if err := reports.Save(ctx, sum); err != nil {
				return fmt.Errorf("saving report %s: %w", sum.RunID, err)
			}
		}
		summaries = append(summaries, sum)
	}

	printSummaries(out, summaries)

	if raidMgr != nil {
		top, err := raidMgr.Ranking(ctx, 5)
		if err != nil {
			return fmt.Errorf("loading raid ranking: %w", err)
		}
		fmt.Fprintln(out, "\nraid points:")
		for i, e := range top {
			fmt.Fprintf(out, "  %d. hero %d: %d\n", i+1, e.HeroID, e.Points)
		}
	}
	return nil
}

func printSummaries(out io.Writer, summaries []sim.Summary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tCOMBATS\tWIN%\tWIPED\tTIMEOUT\tAVG TICKS\tMAX TICKS\tAVG ROOMS\tKILLS\tDEATHS\tDURATION")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%d\t%d\t%.1f\t%d\t%.2f\t%d\t%d\t%s\n",
			s.Scenario, s.Combats, s.WinRate()*100, s.Defeats, s.Timeouts,
			s.AvgTicks, s.MaxTicks, s.AvgRooms, s.Party.Kills, s.Party.Deaths,
			s.Duration.Round(time.Millisecond))
	}
	_ = tw.Flush()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
