package tournamentservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	tournamentexporters "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/exporters"
	tournamentdb "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/rugby-bot/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "TournamentService"

// TournamentService implements the Service interface.
type TournamentService struct {
	repo     tournamentdb.Repository
	registry *tournamentdomain.Registry
	logger   *slog.Logger
	metrics  TournamentMetrics
	tracer   trace.Tracer
	db       *bun.DB

	cache    *StandingsCache
	clock    Clock
	location *time.Location
	palette  tournamentexporters.ChartPalette

	// loaded maps a tournament id to the standings version held by the registry.
	loaded sync.Map
}

var _ Service = (*TournamentService)(nil)

// Option configures optional TournamentService collaborators.
type Option func(*TournamentService)

// WithCache serves GetStandings through cache.
func WithCache(cache *StandingsCache) Option {
	return func(s *TournamentService) { s.cache = cache }
}

// WithClock replaces the clock used to resolve relative kickoff times.
func WithClock(clock Clock) Option {
	return func(s *TournamentService) { s.clock = clock }
}

// WithLocation sets the time zone kickoff input is interpreted in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *TournamentService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithChartPalette sets the colors of rendered charts.
func WithChartPalette(p tournamentexporters.ChartPalette) Option {
	return func(s *TournamentService) { s.palette = p }
}

// NewTournamentService creates a new TournamentService.
func NewTournamentService(
	repo tournamentdb.Repository,
	registry *tournamentdomain.Registry,
	logger *slog.Logger,
	metrics TournamentMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewNoop()
	}
	s := &TournamentService{
		repo:     repo,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		clock:    RealClock{},
		location: time.UTC,
		palette:  tournamentexporters.DefaultPalette,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func correlationAttr(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", handlerwrapper.CorrelationID(ctx))
}

// ensureTable makes the registry hold the table matching tour's persisted standings version and
// returns a snapshot of it. Must run while the tournament row is locked.
func (s *TournamentService) ensureTable(ctx context.Context, db bun.IDB, tour *tournamentdb.Tournament) (*tournamentdomain.Table, error) {
	key := tour.ID.String()
	if v, ok := s.loaded.Load(tour.ID); ok && v.(int64) == tour.StandingsVersion {
		if table, ok := s.registry.Snapshot(key); ok {
			return table, nil
		}
	}

	stored, err := s.repo.ListStandings(ctx, db, tour.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}
	ids, err := s.repo.ListResultIDs(ctx, db, tour.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applied results: %w", err)
	}
	rows := make([]tournamentdomain.StandingsRow, len(stored))
	for i := range stored {
		rows[i] = stored[i].ToDomain()
	}
	table, err := tournamentdomain.RestoreTable(rows, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to restore standings: %w", err)
	}

	s.registry.Load(key, table)
	s.loaded.Store(tour.ID, tour.StandingsVersion)
	s.logger.DebugContext(ctx, "Standings table loaded",
		slog.String("tournament_id", key),
		slog.Int64("standings_version", tour.StandingsVersion),
	)
	return table, nil
}

// forget drops the in-memory table so the next writer reloads it from storage.
func (s *TournamentService) forget(id uuid.UUID) {
	s.registry.Forget(id.String())
	s.loaded.Delete(id)
}

// standingRows converts table rows to persisted rows, keeping roster order as seed.
func standingRows(id uuid.UUID, table *tournamentdomain.Table, only ...tournamentdomain.TeamName) []tournamentdb.Standing {
	teams := table.Teams()
	seeds := make(map[tournamentdomain.TeamName]int, len(teams))
	for i, t := range teams {
		seeds[t] = i
	}
	if len(only) > 0 {
		teams = only
	}
	out := make([]tournamentdb.Standing, 0, len(teams))
	for _, t := range teams {
		row, ok := table.Row(t)
		if !ok {
			continue
		}
		out = append(out, tournamentdb.StandingFromDomain(id, seeds[t], row))
	}
	return out
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *TournamentService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered", correlationAttr(ctx), slog.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				correlationAttr(ctx),
				slog.String("identifier", identifier),
				slog.String("error", err.Error()),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			correlationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.String("error", wrappedErr.Error()),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			correlationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			correlationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *TournamentService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
