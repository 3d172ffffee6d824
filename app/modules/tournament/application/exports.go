package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tournamentexporters "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/exporters"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ExportStandings renders the ranked table and the schedule as an XLSX workbook.
func (s *TournamentService) ExportStandings(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[[]byte, error], error) {
	return withTelemetry(s, ctx, "ExportStandings", tournamentID.String(), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]byte, error], error) {
			tour, rows, err := s.loadRanked(ctx, db, tournamentID)
			if err != nil {
				if errors.Is(err, ErrTournamentNotFound) {
					return results.FailureResult[[]byte, error](err), nil
				}
				return results.OperationResult[[]byte, error]{}, err
			}
			fixtures, err := s.loadFixtures(ctx, db, tournamentID)
			if err != nil {
				return results.OperationResult[[]byte, error]{}, err
			}
			data, err := tournamentexporters.StandingsWorkbook(tour.Name, rows, fixtures)
			if err != nil {
				return results.OperationResult[[]byte, error]{}, err
			}
			return results.SuccessResult[[]byte, error](data), nil
		})
	})
}

// StandingsChart renders the table points of the ranked table as a PNG.
func (s *TournamentService) StandingsChart(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[[]byte, error], error) {
	return withTelemetry(s, ctx, "StandingsChart", tournamentID.String(), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]byte, error], error) {
			tour, rows, err := s.loadRanked(ctx, db, tournamentID)
			if err != nil {
				if errors.Is(err, ErrTournamentNotFound) {
					return results.FailureResult[[]byte, error](err), nil
				}
				return results.OperationResult[[]byte, error]{}, err
			}
			data, err := tournamentexporters.StandingsChart(tour.Name, rows, s.palette)
			if err != nil {
				return results.OperationResult[[]byte, error]{}, err
			}
			return results.SuccessResult[[]byte, error](data), nil
		})
	})
}

// ImportResults records every row of an XLSX results sheet in sheet order. Each row runs in its
// own transaction; rows that cannot be read or are rejected are reported and the rest continue.
func (s *TournamentService) ImportResults(ctx context.Context, tournamentID uuid.UUID, xlsx []byte) (results.OperationResult[*ImportReport, error], error) {
	return withTelemetry(s, ctx, "ImportResults", tournamentID.String(), func(ctx context.Context) (results.OperationResult[*ImportReport, error], error) {
		rows, err := tournamentexporters.ParseResults(xlsx)
		if err != nil {
			return results.FailureResult[*ImportReport, error](err), nil
		}

		report := &ImportReport{TournamentID: tournamentID}
		for _, row := range rows {
			if row.Err != nil {
				report.Failures = append(report.Failures, ImportFailure{Row: row.Row, ResultID: row.Result.ID, Reason: row.Err.Error()})
				continue
			}

			res, err := s.RecordResult(ctx, tournamentID, row.Result)
			if err != nil {
				return results.OperationResult[*ImportReport, error]{}, fmt.Errorf("row %d: %w", row.Row, err)
			}
			if res.IsFailure() {
				failure := *res.Failure
				if errors.Is(failure, ErrTournamentNotFound) {
					return results.FailureResult[*ImportReport, error](failure), nil
				}
				report.Failures = append(report.Failures, ImportFailure{Row: row.Row, ResultID: row.Result.ID, Reason: failure.Error()})
				continue
			}

			view := *res.Success
			switch {
			case view.Conflict:
				report.Conflicts++
			case view.Idempotent:
				report.Idempotent++
			default:
				report.Recorded++
			}
			report.Rows = view.Rows
		}

		if report.Rows == nil {
			standings, err := s.GetStandings(ctx, tournamentID)
			if err != nil {
				return results.OperationResult[*ImportReport, error]{}, err
			}
			if standings.IsFailure() {
				return results.FailureResult[*ImportReport, error](*standings.Failure), nil
			}
			report.Rows = (*standings.Success).Rows
		}

		s.logger.InfoContext(ctx, "Results imported",
			correlationAttr(ctx),
			slog.String("tournament_id", tournamentID.String()),
			slog.Int("recorded", report.Recorded),
			slog.Int("idempotent", report.Idempotent),
			slog.Int("conflicts", report.Conflicts),
			slog.Int("failures", len(report.Failures)),
		)
		return results.SuccessResult[*ImportReport, error](report), nil
	})
}
