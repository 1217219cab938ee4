package sim

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/udisondev/delve/internal/sim/migrations"
)

var ErrReportNotFound = errors.New("report not found")

// ReportStore persists batch summaries in SQLite.
type ReportStore struct {
	sqlDB *sql.DB
}

// OpenReportStore opens the SQLite file at path and applies the embedded
// migrations.
func OpenReportStore(ctx context.Context, path string) (*ReportStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("report path is required")
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, migrations.FS)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("creating migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &ReportStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *ReportStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save stores a summary and its per-combat results. Saving the same run id
// twice replaces the earlier report.
func (s *ReportStore) Save(ctx context.Context, sum Summary) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM sim_runs WHERE run_id = ?`, sum.RunID); err != nil {
		return fmt.Errorf("delete old report %s: %w", sum.RunID, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sim_runs (
		   run_id, scenario, seed, combats, victories, defeats, timeouts,
		   avg_ticks, max_ticks, avg_rooms,
		   gold, xp, damage, kills, deaths, healing,
		   started_at, duration_ms
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.RunID, sum.Scenario, strconv.FormatUint(sum.Seed, 10),
		sum.Combats, sum.Victories, sum.Defeats, sum.Timeouts,
		sum.AvgTicks, sum.MaxTicks, sum.AvgRooms,
		sum.Party.Gold, sum.Party.XP, sum.Party.DamageDealt,
		sum.Party.Kills, sum.Party.Deaths, sum.Party.Healing,
		sum.StartedAt.UTC().UnixMilli(), sum.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", sum.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sim_combats (run_id, idx, seed1, seed2, outcome, rooms, ticks, heroes_alive)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare combat insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range sum.Results {
		_, err := stmt.ExecContext(ctx,
			sum.RunID, r.Index,
			strconv.FormatUint(r.Seed1, 10), strconv.FormatUint(r.Seed2, 10),
			r.Outcome.String(), r.Rooms, r.Ticks, r.HeroesAlive,
		)
		if err != nil {
			return fmt.Errorf("insert combat %d of %s: %w", r.Index, sum.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report %s: %w", sum.RunID, err)
	}
	return nil
}

const summaryColumns = `run_id, scenario, seed, combats, victories, defeats, timeouts,
	avg_ticks, max_ticks, avg_rooms, gold, xp, damage, kills, deaths, healing,
	started_at, duration_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (Summary, error) {
	var (
		sum        Summary
		seed       string
		startedAt  int64
		durationMs int64
	)
	err := row.Scan(
		&sum.RunID, &sum.Scenario, &seed,
		&sum.Combats, &sum.Victories, &sum.Defeats, &sum.Timeouts,
		&sum.AvgTicks, &sum.MaxTicks, &sum.AvgRooms,
		&sum.Party.Gold, &sum.Party.XP, &sum.Party.DamageDealt,
		&sum.Party.Kills, &sum.Party.Deaths, &sum.Party.Healing,
		&startedAt, &durationMs,
	)
	if err != nil {
		return sum, err
	}
	sum.Seed, err = strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return sum, fmt.Errorf("parse seed %q: %w", seed, err)
	}
	sum.StartedAt = time.UnixMilli(startedAt).UTC()
	sum.Duration = time.Duration(durationMs) * time.Millisecond
	return sum, nil
}

// Load returns a stored summary with its per-combat results.
func (s *ReportStore) Load(ctx context.Context, runID string) (Summary, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM sim_runs WHERE run_id = ?`, runID)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, fmt.Errorf("load %s: %w", runID, ErrReportNotFound)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("scan report %s: %w", runID, err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT idx, seed1, seed2, outcome, rooms, ticks, heroes_alive
		 FROM sim_combats WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return Summary{}, fmt.Errorf("query combats of %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r            Result
			seed1, seed2 string
			outcome      string
		)
		if err := rows.Scan(&r.Index, &seed1, &seed2, &outcome, &r.Rooms, &r.Ticks, &r.HeroesAlive); err != nil {
			return Summary{}, fmt.Errorf("scan combat of %s: %w", runID, err)
		}
		if r.Seed1, err = strconv.ParseUint(seed1, 10, 64); err != nil {
			return Summary{}, fmt.Errorf("parse seed1 %q: %w", seed1, err)
		}
		if r.Seed2, err = strconv.ParseUint(seed2, 10, 64); err != nil {
			return Summary{}, fmt.Errorf("parse seed2 %q: %w", seed2, err)
		}
		o, ok := ParseOutcome(outcome)
		if !ok {
			return Summary{}, fmt.Errorf("combat %d of %s: unknown outcome %q", r.Index, runID, outcome)
		}
		r.Outcome = o
		sum.Results = append(sum.Results, r)
	}
	return sum, rows.Err()
}

// Recent returns the latest summaries of a scenario, newest first, without
// per-combat results. An empty scenario matches all.
func (s *ReportStore) Recent(ctx context.Context, scenario string, limit int) ([]Summary, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM sim_runs
		 WHERE ? = '' OR scenario = ?
		 ORDER BY started_at DESC, run_id ASC LIMIT ?`,
		scenario, scenario, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent reports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recent report: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
