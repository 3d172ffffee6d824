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

// ListConflicts returns every unresolved conflict next to the payload currently recorded for it.
func (s *TournamentService) ListConflicts(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[*ConflictsView, error], error) {
	return withTelemetry(s, ctx, "ListConflicts", tournamentID.String(), func(ctx context.Context) (results.OperationResult[*ConflictsView, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*ConflictsView, error], error) {
			if _, err := s.getTournament(ctx, db, tournamentID); err != nil {
				if errors.Is(err, ErrTournamentNotFound) {
					return results.FailureResult[*ConflictsView, error](err), nil
				}
				return results.OperationResult[*ConflictsView, error]{}, err
			}

			stored, err := s.repo.ListConflicts(ctx, db, tournamentID)
			if err != nil {
				return results.OperationResult[*ConflictsView, error]{}, fmt.Errorf("failed to load conflicts: %w", err)
			}
			view := &ConflictsView{TournamentID: tournamentID, Conflicts: make([]ConflictView, 0, len(stored))}
			recorded := make(map[string]tournamentdomain.MatchResult)
			for _, c := range stored {
				current, ok := recorded[c.ResultID]
				if !ok {
					row, err := s.repo.GetResult(ctx, db, tournamentID, c.ResultID)
					if err != nil {
						return results.OperationResult[*ConflictsView, error]{}, fmt.Errorf("failed to look up result %s: %w", c.ResultID, err)
					}
					current = row.ToDomain()
					recorded[c.ResultID] = current
				}
				view.Conflicts = append(view.Conflicts, ConflictView{
					ID:         c.ID,
					ResultID:   c.ResultID,
					Stored:     current,
					Received:   c.Payload,
					ReceivedAt: c.ReceivedAt,
				})
			}
			return results.SuccessResult[*ConflictsView, error](view), nil
		})
	})
}

// AcceptConflict replaces the recorded result with the conflict's payload, discards every other
// conflict for that identity and rebuilds the standings from the corrected log, all in one
// transaction.
func (s *TournamentService) AcceptConflict(ctx context.Context, tournamentID uuid.UUID, conflictID int64) (results.OperationResult[*RebuildView, error], error) {
	acceptTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*RebuildView, error], error) {
		return s.acceptConflictLogic(ctx, db, tournamentID, conflictID)
	}

	res, err := withTelemetry(s, ctx, "AcceptConflict", tournamentID.String(), func(ctx context.Context) (results.OperationResult[*RebuildView, error], error) {
		return runInTx(s, ctx, acceptTx)
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

func (s *TournamentService) acceptConflictLogic(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, conflictID int64) (results.OperationResult[*RebuildView, error], error) {
	tour, err := s.repo.LockTournament(ctx, db, tournamentID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return results.FailureResult[*RebuildView, error](ErrTournamentNotFound), nil
		}
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to lock tournament: %w", err)
	}

	conflict, err := s.repo.GetConflict(ctx, db, tournamentID, conflictID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return results.FailureResult[*RebuildView, error](ErrConflictNotFound), nil
		}
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to get conflict: %w", err)
	}

	// A payload that could never be applied must not replace a valid one.
	table, err := s.ensureTable(ctx, db, tour)
	if err != nil {
		return results.OperationResult[*RebuildView, error]{}, err
	}
	if err := tournamentdomain.CheckResult(table, conflict.Payload); err != nil {
		var vErr *tournamentdomain.ValidationError
		if errors.As(err, &vErr) {
			return results.FailureResult[*RebuildView, error](vErr), nil
		}
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to validate conflict: %w", err)
	}

	if err := s.repo.ReplaceResult(ctx, db, tournamentdb.MatchResultFromDomain(tournamentID, conflict.Payload)); err != nil {
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to replace result: %w", err)
	}
	if err := s.repo.DeleteConflicts(ctx, db, tournamentID, conflict.ResultID); err != nil {
		return results.OperationResult[*RebuildView, error]{}, fmt.Errorf("failed to clear conflicts: %w", err)
	}

	s.logger.InfoContext(ctx, "Conflicting result accepted",
		correlationAttr(ctx),
		slog.String("tournament_id", tournamentID.String()),
		slog.String("result_id", conflict.ResultID),
		slog.Int64("conflict_id", conflictID),
	)
	return s.rebuildStandingsLogic(ctx, db, tournamentID)
}
