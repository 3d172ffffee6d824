package tournamentdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetResult retrieves a stored result by identity.
func (r *Impl) GetResult(ctx context.Context, db bun.IDB, id uuid.UUID, resultID string) (*MatchResult, error) {
	db = r.resolveDB(db)
	m := new(MatchResult)
	err := db.NewSelect().
		Model(m).
		Where("tournament_id = ?", id).
		Where("result_id = ?", resultID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tournamentdb.GetResult: %w", err)
	}
	return m, nil
}

// InsertResult stores an accepted result.
func (r *Impl) InsertResult(ctx context.Context, db bun.IDB, m *MatchResult) error {
	db = r.resolveDB(db)
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now()
	}
	if _, err := db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrResultExists
		}
		return fmt.Errorf("tournamentdb.InsertResult: %w", err)
	}
	return nil
}

// InsertConflict records a conflicting payload for an existing identity.
func (r *Impl) InsertConflict(ctx context.Context, db bun.IDB, c *ResultConflict) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(c).Exec(ctx); err != nil {
		return fmt.Errorf("tournamentdb.InsertConflict: %w", err)
	}
	return nil
}

// ReplaceResult overwrites the stored payload of an existing identity.
func (r *Impl) ReplaceResult(ctx context.Context, db bun.IDB, m *MatchResult) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model(m).
		Column("home", "away", "home_score", "away_score", "home_tries", "away_tries", "status", "fingerprint").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tournamentdb.ReplaceResult: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// ListConflicts returns the unresolved conflicting payloads in arrival order.
func (r *Impl) ListConflicts(ctx context.Context, db bun.IDB, id uuid.UUID) ([]ResultConflict, error) {
	db = r.resolveDB(db)
	var out []ResultConflict
	err := db.NewSelect().
		Model(&out).
		Where("tournament_id = ?", id).
		Order("received_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.ListConflicts: %w", err)
	}
	return out, nil
}

// GetConflict retrieves one recorded conflict.
func (r *Impl) GetConflict(ctx context.Context, db bun.IDB, id uuid.UUID, conflictID int64) (*ResultConflict, error) {
	db = r.resolveDB(db)
	c := new(ResultConflict)
	err := db.NewSelect().
		Model(c).
		Where("tournament_id = ?", id).
		Where("id = ?", conflictID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tournamentdb.GetConflict: %w", err)
	}
	return c, nil
}

// DeleteConflicts discards every conflict recorded for a result identity.
func (r *Impl) DeleteConflicts(ctx context.Context, db bun.IDB, id uuid.UUID, resultID string) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*ResultConflict)(nil)).
		Where("tournament_id = ?", id).
		Where("result_id = ?", resultID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tournamentdb.DeleteConflicts: %w", err)
	}
	return nil
}

// ListResults returns the result log ordered by identity.
func (r *Impl) ListResults(ctx context.Context, db bun.IDB, id uuid.UUID) ([]MatchResult, error) {
	db = r.resolveDB(db)
	var out []MatchResult
	err := db.NewSelect().
		Model(&out).
		Where("tournament_id = ?", id).
		Order("result_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.ListResults: %w", err)
	}
	return out, nil
}

// ListResultIDs returns the identities of all stored results.
func (r *Impl) ListResultIDs(ctx context.Context, db bun.IDB, id uuid.UUID) ([]string, error) {
	db = r.resolveDB(db)
	var ids []string
	err := db.NewSelect().
		Model((*MatchResult)(nil)).
		Column("result_id").
		Where("tournament_id = ?", id).
		Order("result_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.ListResultIDs: %w", err)
	}
	return ids, nil
}
