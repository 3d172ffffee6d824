package tournamentqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	tournamentservice "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/application"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Rebuilder recomputes a tournament's standings.
type Rebuilder interface {
	RebuildStandings(ctx context.Context, tournamentID uuid.UUID) (results.OperationResult[*tournamentservice.RebuildView, error], error)
}

// errUnbound is returned while no Rebuilder has been bound; River retries the job later.
var errUnbound = errors.New("rebuild worker has no service bound")

// RebuildStandingsWorker runs RebuildStandingsArgs jobs.
type RebuildStandingsWorker struct {
	river.WorkerDefaults[RebuildStandingsArgs]

	rebuilder atomic.Pointer[Rebuilder]
	logger    *slog.Logger
}

// NewRebuildStandingsWorker creates a worker. Bind must be called before jobs can succeed.
func NewRebuildStandingsWorker(logger *slog.Logger) *RebuildStandingsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RebuildStandingsWorker{logger: logger}
}

// Bind sets the service jobs are run against.
func (w *RebuildStandingsWorker) Bind(r Rebuilder) {
	w.rebuilder.Store(&r)
}

// Timeout bounds a single rebuild.
func (w *RebuildStandingsWorker) Timeout(*river.Job[RebuildStandingsArgs]) time.Duration {
	return time.Minute
}

// Work rebuilds the standings. Jobs naming an unknown or malformed tournament are cancelled;
// infrastructure errors are returned so River retries with backoff.
func (w *RebuildStandingsWorker) Work(ctx context.Context, job *river.Job[RebuildStandingsArgs]) error {
	logger := w.logger.With(
		slog.String("tournament_id", job.Args.TournamentID),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)

	id, err := uuid.Parse(job.Args.TournamentID)
	if err != nil {
		logger.WarnContext(ctx, "Cancelling rebuild job with invalid tournament id")
		return river.JobCancel(fmt.Errorf("invalid tournament id %q: %w", job.Args.TournamentID, err))
	}

	rp := w.rebuilder.Load()
	if rp == nil {
		return errUnbound
	}

	res, err := (*rp).RebuildStandings(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "Standings rebuild failed", slog.String("error", err.Error()))
		return err
	}
	if res.IsFailure() {
		logger.WarnContext(ctx, "Cancelling rebuild job", slog.Any("reason", *res.Failure))
		return river.JobCancel(*res.Failure)
	}

	report := (*res.Success).Report
	logger.InfoContext(ctx, "Standings rebuilt by job",
		slog.Int("applied", report.Applied),
		slog.Int("rejected", len(report.Rejected)),
		slog.Int("ignored", len(report.Ignored)),
	)
	return nil
}
