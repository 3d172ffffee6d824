package tournamentdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new tournament repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}

// CreateTournament stores a tournament with its roster, schedule and zeroed standings.
func (r *Impl) CreateTournament(ctx context.Context, db bun.IDB, t *Tournament, teams []Team, fixtures []Fixture, standings []Standing) error {
	db = r.resolveDB(db)

	if _, err := db.NewInsert().Model(t).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrTournamentExists
		}
		return fmt.Errorf("tournamentdb.CreateTournament: %w", err)
	}
	for i := range teams {
		teams[i].TournamentID = t.ID
	}
	for i := range fixtures {
		fixtures[i].TournamentID = t.ID
	}
	for i := range standings {
		standings[i].TournamentID = t.ID
	}

	if len(teams) > 0 {
		if _, err := db.NewInsert().Model(&teams).Exec(ctx); err != nil {
			return fmt.Errorf("tournamentdb.CreateTournament teams: %w", err)
		}
	}
	if len(fixtures) > 0 {
		if _, err := db.NewInsert().Model(&fixtures).Exec(ctx); err != nil {
			return fmt.Errorf("tournamentdb.CreateTournament fixtures: %w", err)
		}
	}
	if len(standings) > 0 {
		if _, err := db.NewInsert().Model(&standings).Exec(ctx); err != nil {
			return fmt.Errorf("tournamentdb.CreateTournament standings: %w", err)
		}
	}
	return nil
}

// GetTournament retrieves a tournament by id.
func (r *Impl) GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error) {
	db = r.resolveDB(db)
	t := new(Tournament)
	err := db.NewSelect().
		Model(t).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tournamentdb.GetTournament: %w", err)
	}
	return t, nil
}

// LockTournament retrieves a tournament with SELECT ... FOR UPDATE.
// Outside a transaction the lock is released as soon as the statement completes.
func (r *Impl) LockTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error) {
	db = r.resolveDB(db)
	t := new(Tournament)
	err := db.NewSelect().
		Model(t).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tournamentdb.LockTournament: %w", err)
	}
	return t, nil
}

// BumpStandingsVersion increments and returns the tournament's standings version.
func (r *Impl) BumpStandingsVersion(ctx context.Context, db bun.IDB, id uuid.UUID) (int64, error) {
	db = r.resolveDB(db)
	var version int64
	err := db.NewUpdate().
		Model((*Tournament)(nil)).
		Set("standings_version = standings_version + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Returning("standings_version").
		Scan(ctx, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoRowsAffected
		}
		return 0, fmt.Errorf("tournamentdb.BumpStandingsVersion: %w", err)
	}
	return version, nil
}

// ListTeams returns the roster ordered by seed.
func (r *Impl) ListTeams(ctx context.Context, db bun.IDB, id uuid.UUID) ([]Team, error) {
	db = r.resolveDB(db)
	var teams []Team
	err := db.NewSelect().
		Model(&teams).
		Where("tournament_id = ?", id).
		Order("seed ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.ListTeams: %w", err)
	}
	return teams, nil
}

// ListFixtures returns the schedule ordered by round.
func (r *Impl) ListFixtures(ctx context.Context, db bun.IDB, id uuid.UUID) ([]Fixture, error) {
	db = r.resolveDB(db)
	var fixtures []Fixture
	err := db.NewSelect().
		Model(&fixtures).
		Where("tournament_id = ?", id).
		Order("round ASC", "home ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.ListFixtures: %w", err)
	}
	return fixtures, nil
}

// SetKickoffs assigns a kickoff time to every fixture of the given rounds.
func (r *Impl) SetKickoffs(ctx context.Context, db bun.IDB, id uuid.UUID, kickoffs map[int]time.Time) error {
	db = r.resolveDB(db)
	for round, at := range kickoffs {
		res, err := db.NewUpdate().
			Model((*Fixture)(nil)).
			Set("kickoff_at = ?", at.UTC()).
			Where("tournament_id = ?", id).
			Where("round = ?", round).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tournamentdb.SetKickoffs round %d: %w", round, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNoRowsAffected
		}
	}
	return nil
}
