package tournamentservice

import (
	"context"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/google/uuid"
)

// Service defines the tournament application operations.
//
// Business failures (unknown tournament, invalid roster, malformed result) come back as the
// result's Failure; the returned error is reserved for infrastructure problems.
type Service interface {
	// CreateTournament generates the schedule for a roster and stores the tournament.
	CreateTournament(ctx context.Context, req CreateTournamentRequest) (results.OperationResult[*TournamentView, error], error)

	// RecordResult folds one match result into a tournament's standings.
	RecordResult(ctx context.Context, tournamentID uuid.UUID, result tournamentdomain.MatchResult) (results.OperationResult[*StandingsView, error], error)

	// RebuildStandings recomputes a tournament's standings from its stored result log.
	RebuildStandings(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[*RebuildView, error], error)

	// ListConflicts returns the payloads that disagreed with an already recorded result.
	ListConflicts(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[*ConflictsView, error], error)

	// AcceptConflict makes a conflicting payload the recorded result and rebuilds the standings.
	AcceptConflict(ctx context.Context, tournamentID uuid.UUID, conflictID int64) (results.OperationResult[*RebuildView, error], error)

	// GetStandings returns the ranked table.
	GetStandings(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[*StandingsView, error], error)

	// GetFixtures returns the schedule ordered by round.
	GetFixtures(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[*FixturesView, error], error)

	// ScheduleKickoffs assigns kickoff times to every round, starting from a natural-language time.
	ScheduleKickoffs(ctx context.Context, tournamentID uuid.UUID, firstRound string, interval time.Duration) (results.OperationResult[*FixturesView, error], error)

	// ExportStandings renders the standings and schedule as an XLSX workbook.
	ExportStandings(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[[]byte, error], error)

	// StandingsChart renders the table points as a PNG bar chart.
	StandingsChart(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[[]byte, error], error)

	// ImportResults records every row of an XLSX results sheet.
	ImportResults(ctx context.Context, tournamentID uuid.UUID, xlsx []byte) (results.OperationResult[*ImportReport, error], error)
}

// RebuildScheduler enqueues an asynchronous standings rebuild.
type RebuildScheduler interface {
	ScheduleRebuild(ctx context.Context, tournamentID uuid.UUID) error
}
