package tournament

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tournamentservice "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	tournamenthandlers "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/handlers"
	"github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/httpapi"
	"github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/natsreply"
	tournamentqueue "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/queue"
	tournamentdb "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/repositories"
	tournamentrouter "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/router"
	"github.com/Black-And-White-Club/rugby-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Dependencies are the shared resources the module is built on.
type Dependencies struct {
	Logger     *slog.Logger
	Tracer     trace.Tracer
	DB         *bun.DB
	Publisher  message.Publisher
	Subscriber message.Subscriber
	NatsConn   *nats.Conn
	Router     *message.Router

	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry

	// HealthChecks are served on /healthz next to the module's own queue check.
	HealthChecks map[string]httpapi.HealthCheck
}

// JobQueue runs background jobs for the module's lifetime.
type JobQueue interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Module represents the tournament module.
type Module struct {
	TournamentService tournamentservice.Service
	TournamentRouter  *tournamentrouter.TournamentRouter
	Queue             JobQueue
	Responder         *natsreply.Responder
	HTTPServer        *http.Server

	config *config.Config
	logger *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	failed   chan error
}

func newModule(logger *slog.Logger, queue JobQueue, server *http.Server) *Module {
	return &Module{
		Queue:      queue,
		HTTPServer: server,
		logger:     logger,
		stop:       make(chan struct{}),
		failed:     make(chan error, 1),
	}
}

// NewTournamentModule creates a new instance of the Tournament module.
func NewTournamentModule(ctx context.Context, cfg *config.Config, deps Dependencies) (*Module, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("module", "tournament"))
	logger.InfoContext(ctx, "tournament.NewTournamentModule called")

	rules, err := cfg.ScoringRules()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var (
		metrics  tournamentservice.TournamentMetrics = tournamentservice.NewNoop()
		registry prometheus.Registerer
		gatherer prometheus.Gatherer
	)
	if deps.Registry != nil {
		pm, err := tournamentservice.NewPrometheusMetrics(deps.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register tournament metrics: %w", err)
		}
		metrics, registry, gatherer = pm, deps.Registry, deps.Registry
	}

	queue, err := tournamentqueue.NewService(ctx, cfg.Postgres.DSN,
		tournamentqueue.Config{MaxWorkers: cfg.Queue.MaxWorkers}, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tournament queue: %w", err)
	}

	service := tournamentservice.NewTournamentService(
		tournamentdb.NewRepository(deps.DB),
		tournamentdomain.NewRegistry(tournamentdomain.NewStandingsAggregator(rules)),
		logger,
		metrics,
		deps.Tracer,
		deps.DB,
		tournamentservice.WithCache(tournamentservice.NewStandingsCache(cfg.Cache.StandingsTTL, tournamentservice.RealClock{})),
		tournamentservice.WithLocation(loc),
	)
	queue.Bind(service)

	router := tournamentrouter.NewTournamentRouter(logger, deps.Router, deps.Subscriber, deps.Publisher, deps.Tracer, metrics, registry)
	handlers := tournamenthandlers.NewTournamentHandlers(service, logger, deps.Tracer)
	if err := router.Configure(ctx, handlers); err != nil {
		_ = queue.Stop(ctx)
		return nil, fmt.Errorf("failed to configure tournament router: %w", err)
	}

	var responder *natsreply.Responder
	if deps.NatsConn != nil {
		responder = natsreply.NewResponder(service, deps.NatsConn, logger, cfg.NATS.QueryTimeout)
	}

	checks := map[string]httpapi.HealthCheck{"queue": queue.HealthCheck}
	for name, check := range deps.HealthChecks {
		checks[name] = check
	}
	api := httpapi.NewHandlers(service, queue, logger)
	limiter := httpapi.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewRouter(api, limiter, gatherer, checks),
		ReadHeaderTimeout: 5 * time.Second,
	}

	m := newModule(logger, queue, server)
	m.TournamentService = service
	m.TournamentRouter = router
	m.Responder = responder
	m.config = cfg
	return m, nil
}

// Failed delivers the error that stopped Run early. Nothing is sent on a normal shutdown.
func (m *Module) Failed() <-chan error {
	return m.failed
}

func (m *Module) fail(err error) {
	select {
	case m.failed <- err:
	default:
	}
}

// Run starts the queue, the request-reply responder and the HTTP API, then blocks until ctx is
// done, Close is called or the HTTP API fails.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	m.logger.InfoContext(ctx, "Starting tournament module")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-m.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := m.Queue.Start(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Failed to start tournament queue", slog.Any("error", err))
		m.fail(fmt.Errorf("queue start: %w", err))
		return
	}
	if m.Responder != nil {
		if err := m.Responder.Start(); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start standings responder", slog.Any("error", err))
			m.fail(fmt.Errorf("responder start: %w", err))
			return
		}
	}

	go func() {
		m.logger.InfoContext(ctx, "HTTP API listening", slog.String("addr", m.HTTPServer.Addr))
		if err := m.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.ErrorContext(ctx, "HTTP API stopped", slog.Any("error", err))
			m.fail(fmt.Errorf("http api: %w", err))
			cancel()
		}
	}()

	<-ctx.Done()
	m.logger.Info("Tournament module goroutine stopped")
}

// Close stops the module and cleans up resources.
func (m *Module) Close() error {
	m.logger.Info("Stopping tournament module")

	m.stopOnce.Do(func() { close(m.stop) })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := m.HTTPServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if m.Responder != nil {
		if err := m.Responder.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("responder stop: %w", err))
		}
	}
	if err := m.Queue.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	m.logger.Info("Tournament module stopped")
	return errors.Join(errs...)
}
