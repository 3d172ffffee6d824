// Package httpapi serves tournament standings, fixtures and exports over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	tournamentservice "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	tournamentevents "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/events"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadBytes  = 8 << 20
)

// Handlers serves the tournament HTTP routes.
type Handlers struct {
	service   tournamentservice.Service
	scheduler tournamentservice.RebuildScheduler
	logger    *slog.Logger
}

// NewHandlers creates the HTTP handlers. A nil scheduler makes rebuild requests run inline.
func NewHandlers(service tournamentservice.Service, scheduler tournamentservice.RebuildScheduler, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{service: service, scheduler: scheduler, logger: logger}
}

// Register mounts the routes under /api/tournaments.
func (h *Handlers) Register(r chi.Router, limiter *IPRateLimiter) {
	r.Route("/api/tournaments/{id}", func(r chi.Router) {
		if limiter != nil {
			r.Use(RateLimitMiddleware(limiter))
		}
		r.Get("/standings", h.HandleGetStandings)
		r.Get("/fixtures", h.HandleGetFixtures)
		r.Get("/standings.xlsx", h.HandleExportStandings)
		r.Get("/standings.png", h.HandleStandingsChart)

		r.Get("/conflicts", h.HandleListConflicts)

		r.Post("/rebuild", h.HandleRebuild)
		r.Post("/conflicts/{conflictID}/accept", h.HandleAcceptConflict)
		r.Post("/kickoffs", h.HandleScheduleKickoffs)
		r.Post("/results.xlsx", h.HandleImportResults)
	})
}

type standingsResponse struct {
	TournamentID string                            `json:"tournament_id"`
	Standings    []tournamentevents.StandingsRowV1 `json:"standings"`
}

type fixtureResponse struct {
	Round     int        `json:"round"`
	Leg       int        `json:"leg"`
	Home      string     `json:"home"`
	Away      string     `json:"away"`
	KickoffAt *time.Time `json:"kickoff_at,omitempty"`
}

type fixturesResponse struct {
	TournamentID string            `json:"tournament_id"`
	Fixtures     []fixtureResponse `json:"fixtures"`
}

type kickoffsRequest struct {
	FirstRound string `json:"first_round"`
	Interval   string `json:"interval"`
}

type importFailureResponse struct {
	Row      int    `json:"row"`
	ResultID string `json:"result_id,omitempty"`
	Reason   string `json:"reason"`
}

type importResponse struct {
	TournamentID string                            `json:"tournament_id"`
	Recorded     int                               `json:"recorded"`
	Idempotent   int                               `json:"idempotent"`
	Conflicts    int                               `json:"conflicts"`
	Failures     []importFailureResponse           `json:"failures,omitempty"`
	Standings    []tournamentevents.StandingsRowV1 `json:"standings"`
}

type resultResponse struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	HomeTries int    `json:"home_tries"`
	AwayTries int    `json:"away_tries"`
	Status    string `json:"status"`
}

type conflictResponse struct {
	ID         int64          `json:"id"`
	ResultID   string         `json:"result_id"`
	Stored     resultResponse `json:"stored"`
	Received   resultResponse `json:"received"`
	ReceivedAt time.Time      `json:"received_at"`
}

type conflictsResponse struct {
	TournamentID string             `json:"tournament_id"`
	Conflicts    []conflictResponse `json:"conflicts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleGetStandings returns the ranked table.
func (h *Handlers) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	res, err := h.service.GetStandings(r.Context(), id)
	view, ok := unwrap(h, w, r, res, err)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, standingsResponse{
		TournamentID: id.String(),
		Standings:    tournamentevents.StandingsFromDomain(view.Rows),
	})
}

// HandleGetFixtures returns the schedule ordered by round.
func (h *Handlers) HandleGetFixtures(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	res, err := h.service.GetFixtures(r.Context(), id)
	view, ok := unwrap(h, w, r, res, err)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, toFixturesResponse(view))
}

// HandleExportStandings downloads the standings workbook.
func (h *Handlers) HandleExportStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	res, err := h.service.ExportStandings(r.Context(), id)
	data, ok := unwrap(h, w, r, res, err)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "standings-"+id.String()+".xlsx"))
	h.writeBody(w, data)
}

// HandleStandingsChart renders the table points chart.
func (h *Handlers) HandleStandingsChart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	res, err := h.service.StandingsChart(r.Context(), id)
	data, ok := unwrap(h, w, r, res, err)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	h.writeBody(w, data)
}

// HandleRebuild queues a standings rebuild, or runs it when no queue is configured.
func (h *Handlers) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}

	if h.scheduler != nil {
		if err := h.scheduler.ScheduleRebuild(r.Context(), id); err != nil {
			h.internalError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	res, err := h.service.RebuildStandings(r.Context(), id)
	view, ok := unwrap(h, w, r, res, err)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, standingsResponse{
		TournamentID: id.String(),
		Standings:    tournamentevents.StandingsFromDomain(view.Rows),
	})
}

// HandleListConflicts lists the payloads that disagreed with an already recorded result.
func (h *Handlers) HandleListConflicts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	res, err := h.service.ListConflicts(r.Context(), id)
	view, ok := unwrap(h, w, r, res, err)
	if !ok {
		return
	}
	out := conflictsResponse{TournamentID: id.String(), Conflicts: make([]conflictResponse, len(view.Conflicts))}
	for i, c := range view.Conflicts {
		out.Conflicts[i] = conflictResponse{
			ID:         c.ID,
			ResultID:   c.ResultID,
			Stored:     toResultResponse(c.Stored),
			Received:   toResultResponse(c.Received),
			ReceivedAt: c.ReceivedAt,
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}

// HandleAcceptConflict makes a conflicting payload the recorded result and returns the rebuilt table.
func (h *Handlers) HandleAcceptConflict(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	conflictID, err := strconv.ParseInt(chi.URLParam(r, "conflictID"), 10, 64)
	if err != nil || conflictID <= 0 {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid conflict id"})
		return
	}

	res, err := h.service.AcceptConflict(r.Context(), id, conflictID)
	view, ok := unwrap(h, w, r, res, err)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, standingsResponse{
		TournamentID: id.String(),
		Standings:    tournamentevents.StandingsFromDomain(view.Rows),
	})
}

// HandleScheduleKickoffs assigns kickoff times from a JSON body such as
// {"first_round": "next saturday at 3pm", "interval": "168h"}.
func (h *Handlers) HandleScheduleKickoffs(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}

	var req kickoffsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	interval, err := time.ParseDuration(req.Interval)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid interval %q", req.Interval)})
		return
	}

	res, err := h.service.ScheduleKickoffs(r.Context(), id, req.FirstRound, interval)
	view, ok := unwrap(h, w, r, res, err)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, toFixturesResponse(view))
}

// HandleImportResults records the rows of an uploaded XLSX results sheet.
func (h *Handlers) HandleImportResults(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		h.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
		return
	}

	res, err := h.service.ImportResults(r.Context(), id, body)
	report, ok := unwrap(h, w, r, res, err)
	if !ok {
		return
	}

	resp := importResponse{
		TournamentID: id.String(),
		Recorded:     report.Recorded,
		Idempotent:   report.Idempotent,
		Conflicts:    report.Conflicts,
		Standings:    tournamentevents.StandingsFromDomain(report.Rows),
	}
	for _, f := range report.Failures {
		resp.Failures = append(resp.Failures, importFailureResponse{Row: f.Row, ResultID: f.ResultID, Reason: f.Reason})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// NewHealthHandler runs every check and answers 503 naming the failed ones.
func NewHealthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var failed []string
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				failed = append(failed, name+": "+err.Error())
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if len(failed) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, strings.Join(failed, "\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	}
}

func (h *Handlers) tournamentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return uuid.Nil, false
	}
	return id, true
}

// unwrap writes the error response for a failed operation and reports whether a success value
// was returned.
func unwrap[S any](h *Handlers, w http.ResponseWriter, r *http.Request, res results.OperationResult[S, error], err error) (S, bool) {
	var zero S
	if err != nil {
		h.internalError(w, r, err)
		return zero, false
	}
	if res.IsFailure() {
		failure := *res.Failure
		status := http.StatusUnprocessableEntity
		if errors.Is(failure, tournamentservice.ErrTournamentNotFound) || errors.Is(failure, tournamentservice.ErrConflictNotFound) {
			status = http.StatusNotFound
		}
		h.writeJSON(w, status, errorResponse{Error: failure.Error()})
		return zero, false
	}
	if !res.IsSuccess() {
		h.internalError(w, r, errors.New("operation returned no result"))
		return zero, false
	}
	return *res.Success, true
}

func toResultResponse(m tournamentdomain.MatchResult) resultResponse {
	return resultResponse{
		Home:      string(m.Home),
		Away:      string(m.Away),
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		HomeTries: m.HomeTries,
		AwayTries: m.AwayTries,
		Status:    string(m.Status),
	}
}

func toFixturesResponse(view *tournamentservice.FixturesView) fixturesResponse {
	out := fixturesResponse{TournamentID: view.TournamentID.String(), Fixtures: make([]fixtureResponse, len(view.Fixtures))}
	for i, f := range view.Fixtures {
		out.Fixtures[i] = fixtureResponse{
			Round:     f.Round,
			Leg:       f.Leg,
			Home:      string(f.Home),
			Away:      string(f.Away),
			KickoffAt: f.KickoffAt,
		}
	}
	return out
}

func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "HTTP request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to write response", slog.String("error", err.Error()))
	}
}

func (h *Handlers) writeBody(w http.ResponseWriter, data []byte) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write response", slog.String("error", err.Error()))
	}
}
