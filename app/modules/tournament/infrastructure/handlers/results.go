package tournamenthandlers

import (
	"context"
	"fmt"
	"log/slog"

	tournamentevents "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/events"
	"github.com/Black-And-White-Club/rugby-bot/pkg/handlerwrapper"
	"github.com/google/uuid"
)

// HandleResultRecorded applies a result and publishes the updated table, or a rejection when
// the result cannot be aggregated.
func (h *TournamentHandlers) HandleResultRecorded(ctx context.Context, payload *tournamentevents.ResultRecordedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleResultRecorded")
	defer span.End()

	rejected := func(reason string) []handlerwrapper.Result {
		return []handlerwrapper.Result{{
			Topic: tournamentevents.ResultRejectedV1,
			Payload: &tournamentevents.ResultRejectedPayloadV1{
				TournamentID: payload.TournamentID,
				ResultID:     payload.ResultID,
				Reason:       reason,
			},
		}}
	}

	tournamentID, err := uuid.Parse(payload.TournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "Invalid tournament ID in recorded result",
			slog.String("tournament_id", payload.TournamentID),
			slog.String("result_id", payload.ResultID),
		)
		return rejected("invalid tournament id"), nil
	}

	result, err := h.service.RecordResult(ctx, tournamentID, payload.MatchResult())
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return rejected(fmt.Sprintf("%v", *result.Failure)), nil
	}

	view := *result.Success
	return []handlerwrapper.Result{{
		Topic: tournamentevents.StandingsUpdatedV1,
		Payload: &tournamentevents.StandingsUpdatedPayloadV1{
			TournamentID: view.TournamentID.String(),
			ResultID:     view.ResultID,
			Idempotent:   view.Idempotent,
			Conflict:     view.Conflict,
			Standings:    tournamentevents.StandingsFromDomain(view.Rows),
		},
	}}, nil
}

// HandleStandingsRebuildRequested recomputes a table and reports what the replay skipped.
func (h *TournamentHandlers) HandleStandingsRebuildRequested(ctx context.Context, payload *tournamentevents.StandingsRebuildRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleStandingsRebuildRequested")
	defer span.End()

	tournamentID, err := uuid.Parse(payload.TournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "Invalid tournament ID in rebuild request",
			slog.String("tournament_id", payload.TournamentID),
		)
		return nil, nil
	}

	result, err := h.service.RebuildStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		h.logger.WarnContext(ctx, "Standings rebuild failed",
			slog.String("tournament_id", payload.TournamentID),
			slog.Any("reason", *result.Failure),
		)
		return nil, nil
	}

	view := *result.Success
	return []handlerwrapper.Result{{
		Topic: tournamentevents.StandingsRebuiltV1,
		Payload: &tournamentevents.StandingsRebuiltPayloadV1{
			TournamentID: view.TournamentID.String(),
			Applied:      view.Report.Applied,
			Duplicates:   view.Report.Duplicates,
			Ignored:      view.Report.Ignored,
			Rejected:     tournamentevents.RejectedFromDomain(view.Report.Rejected),
			Standings:    tournamentevents.StandingsFromDomain(view.Rows),
		},
	}}, nil
}
