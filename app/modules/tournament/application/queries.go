package tournamentservice

import (
	"context"
	"errors"
	"fmt"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetStandings returns the ranked table, from the cache when it holds a fresh copy.
func (s *TournamentService) GetStandings(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[*StandingsView, error], error) {
	return withTelemetry(s, ctx, "GetStandings", tournamentID.String(), func(ctx context.Context) (results.OperationResult[*StandingsView, error], error) {
		if rows, ok := s.cache.Get(tournamentID); ok {
			s.metrics.RecordCacheLookup(ctx, true)
			return results.SuccessResult[*StandingsView, error](&StandingsView{TournamentID: tournamentID, Rows: rows}), nil
		}
		s.metrics.RecordCacheLookup(ctx, false)
		generation := s.cache.Generation(tournamentID)

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*StandingsView, error], error) {
			_, rows, err := s.loadRanked(ctx, db, tournamentID)
			if err != nil {
				if errors.Is(err, ErrTournamentNotFound) {
					return results.FailureResult[*StandingsView, error](err), nil
				}
				return results.OperationResult[*StandingsView, error]{}, err
			}
			s.cache.Put(tournamentID, generation, rows)
			return results.SuccessResult[*StandingsView, error](&StandingsView{TournamentID: tournamentID, Rows: rows}), nil
		})
	})
}

// GetFixtures returns the schedule ordered by round.
func (s *TournamentService) GetFixtures(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[*FixturesView, error], error) {
	return withTelemetry(s, ctx, "GetFixtures", tournamentID.String(), func(ctx context.Context) (results.OperationResult[*FixturesView, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*FixturesView, error], error) {
			if _, err := s.getTournament(ctx, db, tournamentID); err != nil {
				if errors.Is(err, ErrTournamentNotFound) {
					return results.FailureResult[*FixturesView, error](err), nil
				}
				return results.OperationResult[*FixturesView, error]{}, err
			}
			fixtures, err := s.loadFixtures(ctx, db, tournamentID)
			if err != nil {
				return results.OperationResult[*FixturesView, error]{}, err
			}
			return results.SuccessResult[*FixturesView, error](&FixturesView{TournamentID: tournamentID, Fixtures: fixtures}), nil
		})
	})
}

// getTournament maps a missing row to ErrTournamentNotFound.
func (s *TournamentService) getTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error) {
	tour, err := s.repo.GetTournament(ctx, db, id)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return tour, nil
}

// loadRanked reads the persisted standings of a tournament and ranks them.
func (s *TournamentService) loadRanked(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, []tournamentdomain.StandingsRow, error) {
	tour, err := s.getTournament(ctx, db, id)
	if err != nil {
		return nil, nil, err
	}
	stored, err := s.repo.ListStandings(ctx, db, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load standings: %w", err)
	}
	rows := make([]tournamentdomain.StandingsRow, len(stored))
	for i := range stored {
		rows[i] = stored[i].ToDomain()
	}
	return tour, tournamentdomain.Rank(rows), nil
}

func (s *TournamentService) loadFixtures(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdomain.ScheduledFixture, error) {
	stored, err := s.repo.ListFixtures(ctx, db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}
	out := make([]tournamentdomain.ScheduledFixture, len(stored))
	for i := range stored {
		out[i] = tournamentdomain.ScheduledFixture{Fixture: stored[i].ToDomain(), KickoffAt: stored[i].KickoffAt}
	}
	return out, nil
}
