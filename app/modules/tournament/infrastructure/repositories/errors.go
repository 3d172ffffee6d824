package tournamentdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTournamentExists indicates a tournament with the same name is already stored.
	ErrTournamentExists = errors.New("tournament already exists")

	// ErrResultExists indicates a result identity is already stored for the tournament.
	ErrResultExists = errors.New("result already recorded")

	// ErrNoRowsAffected indicates an UPDATE/DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
