package tournamentservice

import (
	"time"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/google/uuid"
)

// CreateTournamentRequest describes a new tournament. Legs == 0 selects a double round-robin.
type CreateTournamentRequest struct {
	Name  string
	Teams []string
	Legs  int
}

// TournamentView is a created tournament.
type TournamentView struct {
	ID       uuid.UUID
	Name     string
	Teams    []tournamentdomain.TeamName
	Legs     int
	Rounds   int
	Fixtures []tournamentdomain.Fixture
}

// StandingsView is a ranked table.
//
// When produced by RecordResult, ResultID names the result; Idempotent is set when the identity
// had already been applied and Conflict when it arrived with different data.
type StandingsView struct {
	TournamentID uuid.UUID
	ResultID     string
	Idempotent   bool
	Conflict     bool
	Rows         []tournamentdomain.StandingsRow
}

// RebuildView is the outcome of a full recompute.
type RebuildView struct {
	TournamentID uuid.UUID
	Report       tournamentdomain.RebuildReport
	Rows         []tournamentdomain.StandingsRow
}

// FixturesView is a tournament's schedule.
type FixturesView struct {
	TournamentID uuid.UUID
	Fixtures     []tournamentdomain.ScheduledFixture
}

// ImportFailure is one sheet row that could not be recorded.
type ImportFailure struct {
	Row      int
	ResultID string
	Reason   string
}

// ImportReport summarizes a results import.
type ImportReport struct {
	TournamentID uuid.UUID
	Recorded     int
	Idempotent   int
	Conflicts    int
	Failures     []ImportFailure
	Rows         []tournamentdomain.StandingsRow
}

// ConflictView is a payload that arrived under an already recorded identity with different data.
type ConflictView struct {
	ID         int64
	ResultID   string
	Stored     tournamentdomain.MatchResult
	Received   tournamentdomain.MatchResult
	ReceivedAt time.Time
}

// ConflictsView lists a tournament's unresolved conflicts.
type ConflictsView struct {
	TournamentID uuid.UUID
	Conflicts    []ConflictView
}
