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

// RecordResult folds one result into a tournament's standings.
//
// The tournament row is locked for the whole transaction, so writers in every process take turns.
// A repeated identity with the same data succeeds without changing anything. The same identity
// with different data keeps the first payload and records the newcomer as a conflict, which
// stays listed until AcceptConflict resolves it.
func (s *TournamentService) RecordResult(ctx context.Context, tournamentID uuid.UUID, result tournamentdomain.MatchResult) (results.OperationResult[*StandingsView, error], error) {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*StandingsView, error], error) {
		return s.recordResultLogic(ctx, db, tournamentID, result)
	}

	res, err := withTelemetry(s, ctx, "RecordResult", result.ID, func(ctx context.Context) (results.OperationResult[*StandingsView, error], error) {
		return runInTx(s, ctx, recordTx)
	})
	if err != nil {
		// The registry may hold a row the rolled back transaction never stored.
		s.forget(tournamentID)
		return res, err
	}
	if res.IsSuccess() && !(*res.Success).Idempotent {
		s.cache.Invalidate(tournamentID)
	}
	return res, nil
}

func (s *TournamentService) recordResultLogic(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, result tournamentdomain.MatchResult) (results.OperationResult[*StandingsView, error], error) {
	tour, err := s.repo.LockTournament(ctx, db, tournamentID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return results.FailureResult[*StandingsView, error](ErrTournamentNotFound), nil
		}
		return results.OperationResult[*StandingsView, error]{}, fmt.Errorf("failed to lock tournament: %w", err)
	}

	existing, err := s.repo.GetResult(ctx, db, tournamentID, result.ID)
	switch {
	case err == nil:
		return s.recordRepeat(ctx, db, tour, existing, result)
	case !errors.Is(err, tournamentdb.ErrNotFound):
		return results.OperationResult[*StandingsView, error]{}, fmt.Errorf("failed to look up result: %w", err)
	}

	if _, err := s.ensureTable(ctx, db, tour); err != nil {
		return results.OperationResult[*StandingsView, error]{}, err
	}

	key := tournamentID.String()
	snapshot, applied, err := s.registry.Apply(key, result)
	if err != nil {
		var vErr *tournamentdomain.ValidationError
		if errors.As(err, &vErr) {
			s.metrics.RecordResultOutcome(ctx, OutcomeRejected)
			return results.FailureResult[*StandingsView, error](vErr), nil
		}
		return results.OperationResult[*StandingsView, error]{}, fmt.Errorf("failed to apply result: %w", err)
	}

	view := &StandingsView{
		TournamentID: tournamentID,
		ResultID:     result.ID,
		Idempotent:   !applied,
		Rows:         tournamentdomain.Rank(snapshot.Rows()),
	}
	if !applied {
		// Only reachable when the table already knew an identity the log did not.
		s.metrics.RecordResultOutcome(ctx, OutcomeIdempotent)
		return results.SuccessResult[*StandingsView, error](view), nil
	}

	if err := s.repo.InsertResult(ctx, db, tournamentdb.MatchResultFromDomain(tournamentID, result)); err != nil {
		return results.OperationResult[*StandingsView, error]{}, fmt.Errorf("failed to store result: %w", err)
	}
	if err := s.repo.UpsertStandings(ctx, db, standingRows(tournamentID, snapshot, result.Home, result.Away)); err != nil {
		return results.OperationResult[*StandingsView, error]{}, fmt.Errorf("failed to store standings: %w", err)
	}
	version, err := s.repo.BumpStandingsVersion(ctx, db, tournamentID)
	if err != nil {
		return results.OperationResult[*StandingsView, error]{}, fmt.Errorf("failed to bump standings version: %w", err)
	}
	s.loaded.Store(tournamentID, version)

	s.metrics.RecordResultOutcome(ctx, OutcomeApplied)
	s.logger.InfoContext(ctx, "Result applied",
		correlationAttr(ctx),
		slog.String("tournament_id", key),
		slog.String("result_id", result.ID),
		slog.Int64("standings_version", version),
	)
	return results.SuccessResult[*StandingsView, error](view), nil
}

// recordRepeat handles an identity that is already in the result log.
func (s *TournamentService) recordRepeat(
	ctx context.Context,
	db bun.IDB,
	tour *tournamentdb.Tournament,
	existing *tournamentdb.MatchResult,
	result tournamentdomain.MatchResult,
) (results.OperationResult[*StandingsView, error], error) {
	table, err := s.ensureTable(ctx, db, tour)
	if err != nil {
		return results.OperationResult[*StandingsView, error]{}, err
	}
	view := &StandingsView{
		TournamentID: tour.ID,
		ResultID:     result.ID,
		Idempotent:   true,
		Rows:         tournamentdomain.Rank(table.Rows()),
	}

	fingerprint := tournamentdomain.ResultFingerprint(result)
	if fingerprint == existing.Fingerprint {
		s.metrics.RecordResultOutcome(ctx, OutcomeIdempotent)
		return results.SuccessResult[*StandingsView, error](view), nil
	}

	if err := s.repo.InsertConflict(ctx, db, &tournamentdb.ResultConflict{
		TournamentID: tour.ID,
		ResultID:     result.ID,
		Fingerprint:  fingerprint,
		Payload:      result,
	}); err != nil {
		return results.OperationResult[*StandingsView, error]{}, fmt.Errorf("failed to record conflicting result: %w", err)
	}
	view.Conflict = true
	s.metrics.RecordResultOutcome(ctx, OutcomeConflict)
	s.logger.WarnContext(ctx, "Conflicting payload for recorded result",
		correlationAttr(ctx),
		slog.String("tournament_id", tour.ID.String()),
		slog.String("result_id", result.ID),
		slog.String("stored_fingerprint", existing.Fingerprint),
		slog.String("received_fingerprint", fingerprint),
	)
	return results.SuccessResult[*StandingsView, error](view), nil
}
