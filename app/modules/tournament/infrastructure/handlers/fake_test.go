package tournamenthandlers

import (
	"context"
	"time"

	tournamentservice "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/google/uuid"
)

// ------------------------
// Fake Tournament Service
// ------------------------

type FakeTournamentService struct {
	trace []string

	CreateTournamentFunc func(ctx context.Context, req tournamentservice.CreateTournamentRequest) (results.OperationResult[*tournamentservice.TournamentView, error], error)
	RecordResultFunc     func(ctx context.Context, id uuid.UUID, r tournamentdomain.MatchResult) (results.OperationResult[*tournamentservice.StandingsView, error], error)
	RebuildStandingsFunc func(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.RebuildView, error], error)
	GetStandingsFunc     func(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.StandingsView, error], error)
}

func NewFakeTournamentService() *FakeTournamentService {
	return &FakeTournamentService{trace: []string{}}
}

func (f *FakeTournamentService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeTournamentService) CreateTournament(ctx context.Context, req tournamentservice.CreateTournamentRequest) (results.OperationResult[*tournamentservice.TournamentView, error], error) {
	f.record("CreateTournament")
	if f.CreateTournamentFunc != nil {
		return f.CreateTournamentFunc(ctx, req)
	}
	return results.OperationResult[*tournamentservice.TournamentView, error]{}, nil
}

func (f *FakeTournamentService) RecordResult(ctx context.Context, id uuid.UUID, r tournamentdomain.MatchResult) (results.OperationResult[*tournamentservice.StandingsView, error], error) {
	f.record("RecordResult")
	if f.RecordResultFunc != nil {
		return f.RecordResultFunc(ctx, id, r)
	}
	return results.OperationResult[*tournamentservice.StandingsView, error]{}, nil
}

func (f *FakeTournamentService) RebuildStandings(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.RebuildView, error], error) {
	f.record("RebuildStandings")
	if f.RebuildStandingsFunc != nil {
		return f.RebuildStandingsFunc(ctx, id)
	}
	return results.OperationResult[*tournamentservice.RebuildView, error]{}, nil
}

func (f *FakeTournamentService) GetStandings(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.StandingsView, error], error) {
	f.record("GetStandings")
	if f.GetStandingsFunc != nil {
		return f.GetStandingsFunc(ctx, id)
	}
	return results.OperationResult[*tournamentservice.StandingsView, error]{}, nil
}

func (f *FakeTournamentService) GetFixtures(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.FixturesView, error], error) {
	f.record("GetFixtures")
	return results.OperationResult[*tournamentservice.FixturesView, error]{}, nil
}

func (f *FakeTournamentService) ScheduleKickoffs(ctx context.Context, id uuid.UUID, firstRound string, interval time.Duration) (results.OperationResult[*tournamentservice.FixturesView, error], error) {
	f.record("ScheduleKickoffs")
	return results.OperationResult[*tournamentservice.FixturesView, error]{}, nil
}

func (f *FakeTournamentService) ExportStandings(ctx context.Context, id uuid.UUID) (results.OperationResult[[]byte, error], error) {
	f.record("ExportStandings")
	return results.OperationResult[[]byte, error]{}, nil
}

func (f *FakeTournamentService) StandingsChart(ctx context.Context, id uuid.UUID) (results.OperationResult[[]byte, error], error) {
	f.record("StandingsChart")
	return results.OperationResult[[]byte, error]{}, nil
}

func (f *FakeTournamentService) ImportResults(ctx context.Context, id uuid.UUID, xlsx []byte) (results.OperationResult[*tournamentservice.ImportReport, error], error) {
	f.record("ImportResults")
	return results.OperationResult[*tournamentservice.ImportReport, error]{}, nil
}

func (f *FakeTournamentService) ListConflicts(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.ConflictsView, error], error) {
	f.record("ListConflicts")
	return results.OperationResult[*tournamentservice.ConflictsView, error]{}, nil
}

func (f *FakeTournamentService) AcceptConflict(ctx context.Context, id uuid.UUID, conflictID int64) (results.OperationResult[*tournamentservice.RebuildView, error], error) {
	f.record("AcceptConflict")
	return results.OperationResult[*tournamentservice.RebuildView, error]{}, nil
}

// --- Accessors for assertions ---

func (f *FakeTournamentService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ tournamentservice.Service = (*FakeTournamentService)(nil)
