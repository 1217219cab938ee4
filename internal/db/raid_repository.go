package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/game/raid"
	"github.com/udisondev/delve/internal/model"
)

// RaidRepository persists raid boss defeats and hero raid points.
// Implements raid.ProgressStore.
type RaidRepository struct {
	pool *pgxpool.Pool
}

// NewRaidRepository creates a new RaidRepository.
func NewRaidRepository(pool *pgxpool.Pool) *RaidRepository {
	return &RaidRepository{pool: pool}
}

// --- raid_defeats ---

// AddBossDefeat records the defeat and adds points to every hero of the
// party in one transaction.
func (r *RaidRepository) AddBossDefeat(ctx context.Context, d hooks.BossDefeat, points int32) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning raid transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO raid_defeats (raid_id, template_id, role, level, round)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.RaidID, d.TemplateID, int16(d.Role), d.Level, d.Round)
	if err != nil {
		return fmt.Errorf("insert raid_defeats raid %s boss %s: %w", d.RaidID, d.TemplateID, err)
	}

	if len(d.Heroes) > 0 {
		batch := &pgx.Batch{}
		for _, id := range d.Heroes {
			batch.Queue(
				`INSERT INTO raid_points (hero_id, points) VALUES ($1, $2)
				 ON CONFLICT (hero_id) DO UPDATE SET
				   points = raid_points.points + EXCLUDED.points`,
				int64(id), points)
		}
		br := tx.SendBatch(ctx, batch)
		for _, id := range d.Heroes {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("upsert raid_points hero %d: %w", id, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("closing raid_points batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing raid defeat: %w", err)
	}
	return nil
}

// DefeatedBosses returns the defeats recorded for a raid, oldest first.
func (r *RaidRepository) DefeatedBosses(ctx context.Context, raidID string) ([]raid.DefeatRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT raid_id, template_id, role, level
		 FROM raid_defeats WHERE raid_id = $1 ORDER BY id`, raidID)
	if err != nil {
		return nil, fmt.Errorf("query raid_defeats raid %s: %w", raidID, err)
	}
	defer rows.Close()

	var result []raid.DefeatRow
	for rows.Next() {
		var (
			row  raid.DefeatRow
			role int16
		)
		if err := rows.Scan(&row.RaidID, &row.TemplateID, &role, &row.Level); err != nil {
			return nil, fmt.Errorf("scan raid_defeats: %w", err)
		}
		row.Role = model.BossRole(role)
		result = append(result, row)
	}
	return result, rows.Err()
}

// ResetRaid deletes the defeats of a raid and returns how many were removed.
func (r *RaidRepository) ResetRaid(ctx context.Context, raidID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM raid_defeats WHERE raid_id = $1`, raidID)
	if err != nil {
		return 0, fmt.Errorf("delete raid_defeats raid %s: %w", raidID, err)
	}
	return tag.RowsAffected(), nil
}

// --- raid_points ---

// TopRaidPoints returns the heroes with the most raid points.
func (r *RaidRepository) TopRaidPoints(ctx context.Context, limit int) ([]raid.PointsEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT hero_id, points FROM raid_points
		 ORDER BY points DESC, hero_id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top raid_points: %w", err)
	}
	defer rows.Close()

	var result []raid.PointsEntry
	for rows.Next() {
		var (
			heroID int64
			e      raid.PointsEntry
		)
		if err := rows.Scan(&heroID, &e.Points); err != nil {
			return nil, fmt.Errorf("scan raid_points: %w", err)
		}
		e.HeroID = uint32(heroID)
		result = append(result, e)
	}
	return result, rows.Err()
}
