package raid

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/delve/internal/game/hooks"
	"github.com/udisondev/delve/internal/model"
)

// ProgressStore provides persistence for raid boss defeats and raid points.
type ProgressStore interface {
	AddBossDefeat(ctx context.Context, d hooks.BossDefeat, points int32) error
	DefeatedBosses(ctx context.Context, raidID string) ([]DefeatRow, error)
	TopRaidPoints(ctx context.Context, limit int) ([]PointsEntry, error)
	ResetRaid(ctx context.Context, raidID string) (int64, error)
}

// DefeatRow is one persisted boss defeat.
type DefeatRow struct {
	RaidID     string
	TemplateID string
	Role       model.BossRole
	Level      int32
}

// PointsEntry represents aggregated raid points for ranking.
type PointsEntry struct {
	HeroID uint32
	Points int32
}

// ProgressManager records wing and final boss defeats and awards raid points
// to the party. It implements hooks.RaidHook.
//
// Points per hero = max(1, bossLevel / 2). A raid is cleared once its final
// boss is defeated.
type ProgressManager struct {
	store ProgressStore

	mu      sync.RWMutex
	points  map[uint32]int32 // heroID → points awarded through this manager
	cleared map[string]bool
}

// NewProgressManager creates a raid progress manager.
func NewProgressManager(store ProgressStore) *ProgressManager {
	return &ProgressManager{
		store:   store,
		points:  make(map[uint32]int32, 64),
		cleared: make(map[string]bool, 8),
	}
}

// BossDefeated persists the defeat and awards points to every hero of the party.
func (m *ProgressManager) BossDefeated(ctx context.Context, d hooks.BossDefeat) error {
	if d.Role == model.BossRoleNone {
		return nil
	}
	points := CalculatePoints(d.Level)

	if err := m.store.AddBossDefeat(ctx, d, points); err != nil {
		return fmt.Errorf("add boss defeat raid %s boss %s: %w", d.RaidID, d.TemplateID, err)
	}

	m.mu.Lock()
	for _, id := range d.Heroes {
		m.points[id] += points
	}
	if d.Role == model.BossRoleFinal {
		m.cleared[d.RaidID] = true
	}
	m.mu.Unlock()

	slog.Info("raid boss defeated",
		"raid", d.RaidID,
		"boss", d.TemplateID,
		"role", d.Role,
		"round", d.Round,
		"points", points,
		"heroes", len(d.Heroes))
	if d.Role == model.BossRoleFinal {
		slog.Info("raid cleared", "raid", d.RaidID)
	}
	return nil
}

// Points returns raid points awarded to a hero through this manager.
func (m *ProgressManager) Points(heroID uint32) int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.points[heroID]
}

// Cleared reports whether the raid's final boss has been defeated.
// Uses the cache if available, otherwise queries the store.
func (m *ProgressManager) Cleared(ctx context.Context, raidID string) (bool, error) {
	m.mu.RLock()
	if m.cleared[raidID] {
		m.mu.RUnlock()
		return true, nil
	}
	m.mu.RUnlock()

	rows, err := m.store.DefeatedBosses(ctx, raidID)
	if err != nil {
		return false, fmt.Errorf("get defeated bosses raid %s: %w", raidID, err)
	}
	for _, r := range rows {
		if r.Role == model.BossRoleFinal {
			m.mu.Lock()
			m.cleared[raidID] = true
			m.mu.Unlock()
			return true, nil
		}
	}
	return false, nil
}

// Defeated returns the defeated boss templates of a raid.
func (m *ProgressManager) Defeated(ctx context.Context, raidID string) ([]DefeatRow, error) {
	return m.store.DefeatedBosses(ctx, raidID)
}

// Ranking returns top N heroes by raid points.
func (m *ProgressManager) Ranking(ctx context.Context, limit int) ([]PointsEntry, error) {
	return m.store.TopRaidPoints(ctx, limit)
}

// Reset clears a raid's progress. Returns number of deleted rows.
func (m *ProgressManager) Reset(ctx context.Context, raidID string) (int64, error) {
	deleted, err := m.store.ResetRaid(ctx, raidID)
	if err != nil {
		return 0, fmt.Errorf("reset raid %s: %w", raidID, err)
	}

	m.mu.Lock()
	delete(m.cleared, raidID)
	m.mu.Unlock()

	slog.Info("raid progress reset", "raid", raidID, "deleted", deleted)
	return deleted, nil
}

// CalculatePoints returns points for killing a boss of given level.
func CalculatePoints(bossLevel int32) int32 {
	return max(1, bossLevel/2)
}
