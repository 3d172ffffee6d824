package tournamenthandlers

import (
	"context"
	"fmt"
	"log/slog"

	tournamentservice "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/application"
	tournamentevents "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/events"
	"github.com/Black-And-White-Club/rugby-bot/pkg/handlerwrapper"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TournamentHandlers implements the Handlers interface.
type TournamentHandlers struct {
	service tournamentservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewTournamentHandlers creates a new TournamentHandlers instance.
func NewTournamentHandlers(
	service tournamentservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("tournament")
	}
	return &TournamentHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleTournamentCreateRequested creates a tournament and announces it.
func (h *TournamentHandlers) HandleTournamentCreateRequested(ctx context.Context, payload *tournamentevents.TournamentCreateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleTournamentCreateRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Tournament create requested",
		slog.String("name", payload.Name),
		slog.Int("teams", len(payload.Teams)),
		slog.Int("legs", payload.Legs),
	)

	result, err := h.service.CreateTournament(ctx, tournamentservice.CreateTournamentRequest{
		Name:  payload.Name,
		Teams: payload.Teams,
		Legs:  payload.Legs,
	})
	if err != nil {
		return nil, err
	}

	if result.IsFailure() {
		return []handlerwrapper.Result{{
			Topic: tournamentevents.TournamentCreateFailedV1,
			Payload: &tournamentevents.TournamentCreateFailedPayloadV1{
				Name:   payload.Name,
				Reason: fmt.Sprintf("%v", *result.Failure),
				Teams:  payload.Teams,
			},
		}}, nil
	}

	view := *result.Success
	teams := make([]string, len(view.Teams))
	for i, t := range view.Teams {
		teams[i] = string(t)
	}
	return []handlerwrapper.Result{{
		Topic: tournamentevents.TournamentCreatedV1,
		Payload: &tournamentevents.TournamentCreatedPayloadV1{
			TournamentID: view.ID.String(),
			Name:         view.Name,
			Teams:        teams,
			Legs:         view.Legs,
			Rounds:       view.Rounds,
			Fixtures:     len(view.Fixtures),
		},
	}}, nil
}

// HandleStandingsRequest replies with the ranked table. The reply goes to the request's
// reply_to subject when present, else to the shared response topic.
func (h *TournamentHandlers) HandleStandingsRequest(ctx context.Context, payload *tournamentevents.StandingsRequestPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleStandingsRequest")
	defer span.End()

	replyTopic := tournamentevents.StandingsResponseV1
	if rt, ok := ctx.Value(handlerwrapper.CtxKeyReplyTo).(string); ok && rt != "" {
		replyTopic = rt
	}
	reply := func(resp *tournamentevents.StandingsResponsePayloadV1) []handlerwrapper.Result {
		return []handlerwrapper.Result{{Topic: replyTopic, Payload: resp}}
	}

	tournamentID, err := uuid.Parse(payload.TournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "Invalid tournament ID in standings request",
			slog.String("tournament_id", payload.TournamentID),
			slog.String("error", err.Error()),
		)
		// Answer anyway so the requester does not wait for a timeout.
		return reply(&tournamentevents.StandingsResponsePayloadV1{
			TournamentID: payload.TournamentID,
			Error:        "invalid tournament id",
		}), nil
	}

	result, err := h.service.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return reply(&tournamentevents.StandingsResponsePayloadV1{
			TournamentID: payload.TournamentID,
			Error:        fmt.Sprintf("%v", *result.Failure),
		}), nil
	}

	return reply(&tournamentevents.StandingsResponsePayloadV1{
		TournamentID: payload.TournamentID,
		Standings:    tournamentevents.StandingsFromDomain((*result.Success).Rows),
	}), nil
}
