package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/progress"
)

// ProgressRepository persists progression events. Implements progress.Store.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// SaveEvents bulk-inserts a batch of events in one transaction.
func (r *ProgressRepository) SaveEvents(ctx context.Context, events []progress.Event) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{e.RunID, int64(e.UnitID), int16(e.Kind), e.Amount})
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning progress transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"progress_events"},
		[]string{"run_id", "unit_id", "kind", "amount"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting %d progress events: %w", len(events), err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing progress events: %w", err)
	}

	slog.Debug("saved progress events", "count", len(events))
	return nil
}

// LoadTotals aggregates the persisted events of a run per unit.
func (r *ProgressRepository) LoadTotals(ctx context.Context, runID string) (map[uint32]progress.Totals, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT unit_id, kind, SUM(amount)
		 FROM progress_events
		 WHERE run_id = $1
		 GROUP BY unit_id, kind`, runID)
	if err != nil {
		return nil, fmt.Errorf("query progress_events run %s: %w", runID, err)
	}
	defer rows.Close()

	result := make(map[uint32]progress.Totals)
	for rows.Next() {
		var (
			unitID int64
			kind   int16
			sum    int64
		)
		if err := rows.Scan(&unitID, &kind, &sum); err != nil {
			return nil, fmt.Errorf("scan progress_events: %w", err)
		}
		t := result[uint32(unitID)]
		t.Add(hooks.ProgressKind(kind), sum)
		result[uint32(unitID)] = t
	}
	return result, rows.Err()
}
