package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RebuildStandings recomputes a tournament's table from its result log and replaces every
// standings row in one transaction.
func (s *TournamentService) RebuildStandings(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[*RebuildView, error], error) {
	rebuildTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*RebuildView, error], error) {
		return s.rebuildStandingsLogic(ctx, db, tournamentID)
	}

	res, err := withTelemetry(s, ctx, "RebuildStandings", tournamentID.String(), func(ctx context.Context) (results.OperationResult[*RebuildView, error], error) {
		return runInTx(s, ctx, rebuildTx)
	})
	if err != nil {
		s.forget(tournamentID)
		return res, err
	}
	if res.IsSuccess() {
		s.cache.Invalidate(tournamentID)
	}
	return res, nil
}

func (s *TournamentService) rebuildStandingsLogic(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (results.OperationResult[*RebuildView, error], error) {
	if _, err := s.repo.LockTournament(ctx, db, tournamentID); err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return results.FailureResult[*RebuildView, error](ErrTournamentNotFound), nil
		}
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to lock tournament: %w", err)
	}

	roster, err := s.repo.ListTeams(ctx, db, tournamentID)
	if err != nil {
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to load roster: %w", err)
	}
	teams := make([]tournamentdomain.TeamName, len(roster))
	for i, t := range roster {
		teams[i] = tournamentdomain.TeamName(t.Name)
	}

	stored, err := s.repo.ListResults(ctx, db, tournamentID)
	if err != nil {
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to load results: %w", err)
	}
	resultLog := make([]tournamentdomain.MatchResult, len(stored))
	for i := range stored {
		resultLog[i] = stored[i].ToDomain()
	}

	key := tournamentID.String()
	table, report, err := s.registry.Rebuild(key, teams, resultLog)
	if err != nil {
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to rebuild standings: %w", err)
	}

	if err := s.repo.UpsertStandings(ctx, db, standingRows(tournamentID, table)); err != nil {
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to store standings: %w", err)
	}
	version, err := s.repo.BumpStandingsVersion(ctx, db, tournamentID)
	if err != nil {
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to bump standings version: %w", err)
	}
	s.loaded.Store(tournamentID, version)

	s.metrics.RecordRebuild(ctx, report.Applied, len(report.Rejected))
	s.logger.InfoContext(ctx, "Standings rebuilt",
		correlationAttr(ctx),
		slog.String("tournament_id", key),
		slog.Int("applied", report.Applied),
		slog.Int("duplicates", len(report.Duplicates)),
		slog.Int("ignored", len(report.Ignored)),
		slog.Int("rejected", len(report.Rejected)),
	)

	return results.SuccessResult[*RebuildView, error](&RebuildView{
		TournamentID: tournamentID,
		Report:       report,
		Rows:         tournamentdomain.Rank(table.Rows()),
	}), nil
}
