package tournamentdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for tournament persistence.
// Every method accepts an optional db handle so callers can run it inside a transaction.
type Repository interface {
	// CreateTournament stores a tournament with its roster, schedule and zeroed standings.
	CreateTournament(ctx context.Context, db bun.IDB, t *Tournament, teams []Team, fixtures []Fixture, standings []Standing) error

	// GetTournament retrieves a tournament by id.
	GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error)

	// LockTournament retrieves a tournament and holds its row lock until the transaction ends.
	LockTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error)

	// BumpStandingsVersion increments and returns the tournament's standings version.
	BumpStandingsVersion(ctx context.Context, db bun.IDB, id uuid.UUID) (int64, error)

	// ListTeams returns the roster ordered by seed.
	ListTeams(ctx context.Context, db bun.IDB, id uuid.UUID) ([]Team, error)

	// ListFixtures returns the schedule ordered by round.
	ListFixtures(ctx context.Context, db bun.IDB, id uuid.UUID) ([]Fixture, error)

	// SetKickoffs assigns a kickoff time to every fixture of the given rounds.
	SetKickoffs(ctx context.Context, db bun.IDB, id uuid.UUID, kickoffs map[int]time.Time) error

	// GetResult retrieves a stored result by identity.
	GetResult(ctx context.Context, db bun.IDB, id uuid.UUID, resultID string) (*MatchResult, error)

	// InsertResult stores an accepted result.
	InsertResult(ctx context.Context, db bun.IDB, r *MatchResult) error

	// InsertConflict records a conflicting payload for an existing identity.
	InsertConflict(ctx context.Context, db bun.IDB, c *ResultConflict) error

	// ReplaceResult overwrites the stored payload of an existing identity.
	ReplaceResult(ctx context.Context, db bun.IDB, r *MatchResult) error

	// ListConflicts returns the unresolved conflicting payloads in arrival order.
	ListConflicts(ctx context.Context, db bun.IDB, id uuid.UUID) ([]ResultConflict, error)

	// GetConflict retrieves one recorded conflict.
	GetConflict(ctx context.Context, db bun.IDB, id uuid.UUID, conflictID int64) (*ResultConflict, error)

	// DeleteConflicts discards every conflict recorded for a result identity.
	DeleteConflicts(ctx context.Context, db bun.IDB, id uuid.UUID, resultID string) error

	// ListResults returns the result log ordered by identity.
	ListResults(ctx context.Context, db bun.IDB, id uuid.UUID) ([]MatchResult, error)

	// ListResultIDs returns the identities of all stored results.
	ListResultIDs(ctx context.Context, db bun.IDB, id uuid.UUID) ([]string, error)

	// ListStandings returns the standings rows ordered by seed.
	ListStandings(ctx context.Context, db bun.IDB, id uuid.UUID) ([]Standing, error)

	// UpsertStandings writes the given standings rows.
	UpsertStandings(ctx context.Context, db bun.IDB, rows []Standing) error
}
