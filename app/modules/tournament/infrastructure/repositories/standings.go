package tournamentdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListStandings returns the standings rows ordered by seed.
func (r *Impl) ListStandings(ctx context.Context, db bun.IDB, id uuid.UUID) ([]Standing, error) {
	db = r.resolveDB(db)
	var rows []Standing
	err := db.NewSelect().
		Model(&rows).
		Where("tournament_id = ?", id).
		Order("seed ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.ListStandings: %w", err)
	}
	return rows, nil
}

// UpsertStandings writes the given standings rows.
func (r *Impl) UpsertStandings(ctx context.Context, db bun.IDB, rows []Standing) error {
	if len(rows) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now()
	for i := range rows {
		rows[i].UpdatedAt = now
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (tournament_id, team) DO UPDATE").
		Set("played = EXCLUDED.played").
		Set("won = EXCLUDED.won").
		Set("drawn = EXCLUDED.drawn").
		Set("lost = EXCLUDED.lost").
		Set("points_for = EXCLUDED.points_for").
		Set("points_against = EXCLUDED.points_against").
		Set("tries_for = EXCLUDED.tries_for").
		Set("tries_against = EXCLUDED.tries_against").
		Set("offensive_bonuses = EXCLUDED.offensive_bonuses").
		Set("defensive_bonuses = EXCLUDED.defensive_bonuses").
		Set("table_points = EXCLUDED.table_points").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tournamentdb.UpsertStandings: %w", err)
	}
	return nil
}
