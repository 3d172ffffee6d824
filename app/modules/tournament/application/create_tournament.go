package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/uptrace/bun"
)

// CreateTournament generates the schedule for req.Teams and stores the tournament, its roster,
// its fixtures and an all-zero table in one transaction.
func (s *TournamentService) CreateTournament(ctx context.Context, req CreateTournamentRequest) (results.OperationResult[*TournamentView, error], error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*TournamentView, error], error) {
		return s.createTournamentLogic(ctx, db, req)
	}

	return withTelemetry(s, ctx, "CreateTournament", req.Name, func(ctx context.Context) (results.OperationResult[*TournamentView, error], error) {
		return runInTx(s, ctx, createTx)
	})
}

func (s *TournamentService) createTournamentLogic(ctx context.Context, db bun.IDB, req CreateTournamentRequest) (results.OperationResult[*TournamentView, error], error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return results.FailureResult[*TournamentView, error](&tournamentdomain.ConfigurationError{Reason: "tournament name is required"}), nil
	}

	teams := make([]tournamentdomain.TeamName, len(req.Teams))
	for i, t := range req.Teams {
		teams[i] = tournamentdomain.TeamName(strings.TrimSpace(t))
	}

	fixtures, err := tournamentdomain.GenerateFixtures(teams, req.Legs)
	if err != nil {
		var cfgErr *tournamentdomain.ConfigurationError
		if errors.As(err, &cfgErr) {
			return results.FailureResult[*TournamentView, error](cfgErr), nil
		}
		return results.OperationResult[*TournamentView, error]{}, fmt.Errorf("failed to generate fixtures: %w", err)
	}

	legs := req.Legs
	if legs == 0 {
		legs = tournamentdomain.DefaultLegs
	}

	tour := &tournamentdb.Tournament{Name: name, Legs: legs}
	teamRows := make([]tournamentdb.Team, len(teams))
	standingRows := make([]tournamentdb.Standing, len(teams))
	for i, t := range teams {
		teamRows[i] = tournamentdb.Team{Name: string(t), Seed: i}
		standingRows[i] = tournamentdb.Standing{Team: string(t), Seed: i}
	}
	fixtureRows := make([]tournamentdb.Fixture, len(fixtures))
	for i, f := range fixtures {
		fixtureRows[i] = tournamentdb.Fixture{Round: f.Round, Leg: f.Leg, Home: string(f.Home), Away: string(f.Away)}
	}

	if err := s.repo.CreateTournament(ctx, db, tour, teamRows, fixtureRows, standingRows); err != nil {
		if errors.Is(err, tournamentdb.ErrTournamentExists) {
			return results.FailureResult[*TournamentView, error](fmt.Errorf("%w: %s", ErrTournamentExists, name)), nil
		}
		return results.OperationResult[*TournamentView, error]{}, fmt.Errorf("failed to create tournament: %w", err)
	}

	return results.SuccessResult[*TournamentView, error](&TournamentView{
		ID:       tour.ID,
		Name:     tour.Name,
		Teams:    teams,
		Legs:     legs,
		Rounds:   len(tournamentdomain.Rounds(fixtures)),
		Fixtures: fixtures,
	}), nil
}
