package tournamentservice

import "errors"

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentExists   = errors.New("a tournament with this name already exists")
	ErrInvalidKickoff     = errors.New("invalid kickoff time")
	ErrConflictNotFound   = errors.New("conflict not found")
)
