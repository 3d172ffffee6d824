// Package natsreply answers standings queries over plain NATS request-reply.
package natsreply

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	tournamentservice "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/application"
	tournamentevents "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/events"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	// QueueGroup is the queue group name for load balancing.
	QueueGroup = "backend"

	defaultTimeout = 5 * time.Second
)

// Responder serves StandingsQueryV1 requests.
type Responder struct {
	service tournamentservice.Service
	nc      *nats.Conn
	logger  *slog.Logger
	timeout time.Duration
	sub     *nats.Subscription
}

// NewResponder creates a responder. A non-positive timeout uses five seconds per request.
func NewResponder(service tournamentservice.Service, nc *nats.Conn, logger *slog.Logger, timeout time.Duration) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Responder{service: service, nc: nc, logger: logger, timeout: timeout}
}

// Start subscribes to the query subject with a queue group, so each query is answered once.
func (r *Responder) Start() error {
	sub, err := r.nc.QueueSubscribe(tournamentevents.StandingsQueryV1, QueueGroup, r.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", tournamentevents.StandingsQueryV1, err)
	}
	r.sub = sub
	return nil
}

// Stop unsubscribes.
func (r *Responder) Stop() error {
	if r.sub == nil {
		return nil
	}
	return r.sub.Unsubscribe()
}

func (r *Responder) handle(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if msg.Reply == "" {
		r.logger.WarnContext(ctx, "Standings query without reply subject", slog.String("subject", msg.Subject))
		return
	}

	resp := r.Answer(ctx, msg.Data)
	body, err := json.Marshal(resp)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to encode standings response", slog.String("error", err.Error()))
		return
	}
	if err := msg.Respond(body); err != nil {
		r.logger.ErrorContext(ctx, "Failed to send standings response",
			slog.String("tournament_id", resp.TournamentID),
			slog.String("error", err.Error()),
		)
	}
}

// Answer resolves one query payload. Every outcome produces a response, so requesters never wait
// for a timeout; infrastructure errors are reported generically.
func (r *Responder) Answer(ctx context.Context, data []byte) *tournamentevents.StandingsResponsePayloadV1 {
	var req tournamentevents.StandingsRequestPayloadV1
	if err := json.Unmarshal(data, &req); err != nil {
		return &tournamentevents.StandingsResponsePayloadV1{Error: "invalid request"}
	}

	id, err := uuid.Parse(req.TournamentID)
	if err != nil {
		return &tournamentevents.StandingsResponsePayloadV1{TournamentID: req.TournamentID, Error: "invalid tournament id"}
	}

	res, err := r.service.GetStandings(ctx, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Standings query failed",
			slog.String("tournament_id", req.TournamentID),
			slog.String("error", err.Error()),
		)
		return &tournamentevents.StandingsResponsePayloadV1{TournamentID: req.TournamentID, Error: "internal error"}
	}
	if res.IsFailure() {
		return &tournamentevents.StandingsResponsePayloadV1{TournamentID: req.TournamentID, Error: (*res.Failure).Error()}
	}

	return &tournamentevents.StandingsResponsePayloadV1{
		TournamentID: req.TournamentID,
		Standings:    tournamentevents.StandingsFromDomain((*res.Success).Rows),
	}
}
