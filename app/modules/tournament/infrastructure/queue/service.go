package tournamentqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tournamentservice "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/application"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const serviceName = "river"

// Metrics is the subset of the tournament metrics the queue records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// Service enqueues and runs standings rebuild jobs on River.
type Service struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	worker *RebuildStandingsWorker
	logger *slog.Logger

	metrics Metrics
}

var _ tournamentservice.RebuildScheduler = (*Service)(nil)

// Config tunes the River client.
type Config struct {
	MaxWorkers int
}

// NewService connects a pgx pool for River and registers the rebuild worker.
func NewService(ctx context.Context, dsn string, cfg Config, logger *slog.Logger, metrics Metrics) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = tournamentservice.NewNoop()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 5
	}
	logger = logger.With(slog.String("component", "river_queue"))

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	worker := NewRebuildStandingsWorker(logger)
	workers := river.NewWorkers()
	river.AddWorker(workers, worker)

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: cfg.MaxWorkers},
		},
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	logger.Info("Tournament queue service initialized")
	return &Service{
		client:  client,
		pool:    pool,
		worker:  worker,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Bind sets the service rebuild jobs run against.
func (s *Service) Bind(r Rebuilder) {
	s.worker.Bind(r)
}

// Start starts working jobs.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Tournament queue service started")
	return nil
}

// Stop waits for running jobs to finish and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Tournament queue service stopped")
	return nil
}

// ScheduleRebuild enqueues a rebuild unless one is already pending for the tournament.
func (s *Service) ScheduleRebuild(ctx context.Context, tournamentID uuid.UUID) error {
	const operation = "schedule_rebuild"
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, serviceName)
	defer func() { s.metrics.RecordOperationDuration(ctx, operation, serviceName, time.Since(start)) }()

	res, err := s.client.Insert(ctx, RebuildStandingsArgs{TournamentID: tournamentID.String()}, nil)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operation, serviceName)
		return fmt.Errorf("failed to enqueue standings rebuild: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, operation, serviceName)
	s.logger.InfoContext(ctx, "Standings rebuild enqueued",
		slog.String("tournament_id", tournamentID.String()),
		slog.Int64("job_id", res.Job.ID),
		slog.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// HealthCheck verifies the queue database is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
