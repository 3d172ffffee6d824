package httpapi

import (
	"context"
	"sync"
	"time"

	tournamentservice "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/google/uuid"
)

type FakeTournamentService struct {
	GetStandingsFunc     func(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.StandingsView, error], error)
	GetFixturesFunc      func(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.FixturesView, error], error)
	RebuildStandingsFunc func(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.RebuildView, error], error)
	ScheduleKickoffsFunc func(ctx context.Context, id uuid.UUID, firstRound string, interval time.Duration) (results.OperationResult[*tournamentservice.FixturesView, error], error)
	ExportStandingsFunc  func(ctx context.Context, id uuid.UUID) (results.OperationResult[[]byte, error], error)
	StandingsChartFunc   func(ctx context.Context, id uuid.UUID) (results.OperationResult[[]byte, error], error)
	ImportResultsFunc    func(ctx context.Context, id uuid.UUID, xlsx []byte) (results.OperationResult[*tournamentservice.ImportReport, error], error)
	ListConflictsFunc    func(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.ConflictsView, error], error)
	AcceptConflictFunc   func(ctx context.Context, id uuid.UUID, conflictID int64) (results.OperationResult[*tournamentservice.RebuildView, error], error)
}

func (f *FakeTournamentService) CreateTournament(ctx context.Context, req tournamentservice.CreateTournamentRequest) (results.OperationResult[*tournamentservice.TournamentView, error], error) {
	return results.OperationResult[*tournamentservice.TournamentView, error]{}, nil
}

func (f *FakeTournamentService) RecordResult(ctx context.Context, id uuid.UUID, r tournamentdomain.MatchResult) (results.OperationResult[*tournamentservice.StandingsView, error], error) {
	return results.OperationResult[*tournamentservice.StandingsView, error]{}, nil
}

func (f *FakeTournamentService) RebuildStandings(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.RebuildView, error], error) {
	if f.RebuildStandingsFunc != nil {
		return f.RebuildStandingsFunc(ctx, id)
	}
	return results.OperationResult[*tournamentservice.RebuildView, error]{}, nil
}

func (f *FakeTournamentService) GetStandings(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.StandingsView, error], error) {
	if f.GetStandingsFunc != nil {
		return f.GetStandingsFunc(ctx, id)
	}
	return results.OperationResult[*tournamentservice.StandingsView, error]{}, nil
}

func (f *FakeTournamentService) GetFixtures(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.FixturesView, error], error) {
	if f.GetFixturesFunc != nil {
		return f.GetFixturesFunc(ctx, id)
	}
	return results.OperationResult[*tournamentservice.FixturesView, error]{}, nil
}

func (f *FakeTournamentService) ScheduleKickoffs(ctx context.Context, id uuid.UUID, firstRound string, interval time.Duration) (results.OperationResult[*tournamentservice.FixturesView, error], error) {
	if f.ScheduleKickoffsFunc != nil {
		return f.ScheduleKickoffsFunc(ctx, id, firstRound, interval)
	}
	return results.OperationResult[*tournamentservice.FixturesView, error]{}, nil
}

func (f *FakeTournamentService) ExportStandings(ctx context.Context, id uuid.UUID) (results.OperationResult[[]byte, error], error) {
	if f.ExportStandingsFunc != nil {
		return f.ExportStandingsFunc(ctx, id)
	}
	return results.OperationResult[[]byte, error]{}, nil
}

func (f *FakeTournamentService) StandingsChart(ctx context.Context, id uuid.UUID) (results.OperationResult[[]byte, error], error) {
	if f.StandingsChartFunc != nil {
		return f.StandingsChartFunc(ctx, id)
	}
	return results.OperationResult[[]byte, error]{}, nil
}

func (f *FakeTournamentService) ImportResults(ctx context.Context, id uuid.UUID, xlsx []byte) (results.OperationResult[*tournamentservice.ImportReport, error], error) {
	if f.ImportResultsFunc != nil {
		return f.ImportResultsFunc(ctx, id, xlsx)
	}
	return results.OperationResult[*tournamentservice.ImportReport, error]{}, nil
}

func (f *FakeTournamentService) ListConflicts(ctx context.Context, id uuid.UUID) (results.OperationResult[*tournamentservice.ConflictsView, error], error) {
	if f.ListConflictsFunc != nil {
		return f.ListConflictsFunc(ctx, id)
	}
	return results.OperationResult[*tournamentservice.ConflictsView, error]{}, nil
}

func (f *FakeTournamentService) AcceptConflict(ctx context.Context, id uuid.UUID, conflictID int64) (results.OperationResult[*tournamentservice.RebuildView, error], error) {
	if f.AcceptConflictFunc != nil {
		return f.AcceptConflictFunc(ctx, id, conflictID)
	}
	return results.OperationResult[*tournamentservice.RebuildView, error]{}, nil
}

var _ tournamentservice.Service = (*FakeTournamentService)(nil)

type FakeRebuildScheduler struct {
	mu        sync.Mutex
	Err       error
	scheduled []uuid.UUID
}

func (f *FakeRebuildScheduler) ScheduleRebuild(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, id)
	return f.Err
}

func (f *FakeRebuildScheduler) Scheduled() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.scheduled...)
}
