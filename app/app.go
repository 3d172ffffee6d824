package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/rugby-bot/app/eventbus"
	"github.com/Black-And-White-Club/rugby-bot/app/modules/tournament"
	"github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/httpapi"
	"github.com/Black-And-White-Club/rugby-bot/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
)

// App holds the process-wide resources and the modules built on them.
type App struct {
	Config           *config.Config
	Logger           *slog.Logger
	DB               *bun.DB
	EventBus         *eventbus.EventBus
	Router           *message.Router
	Registry         *prometheus.Registry
	TournamentModule *tournament.Module

	wg sync.WaitGroup
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	app.DB = bun.NewDB(sqldb, pgdialect.New())
	if err := app.DB.PingContext(ctx); err != nil {
		_ = app.DB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	eb, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		_ = app.DB.Close()
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	app.EventBus = eb

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create Watermill router: %w", err)
	}
	app.Router = router

	if cfg.Observability.MetricsEnabled {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	module, err := tournament.NewTournamentModule(ctx, cfg, tournament.Dependencies{
		Logger:     logger,
		Tracer:     otel.Tracer("github.com/Black-And-White-Club/rugby-bot/tournament"),
		DB:         app.DB,
		Publisher:  eb.Publisher(),
		Subscriber: eb.Subscriber(),
		NatsConn:   eb.Conn(),
		Router:     router,
		Registry:   app.Registry,
		HealthChecks: map[string]httpapi.HealthCheck{
			"database": app.DB.PingContext,
			"nats":     func(context.Context) error { return eb.HealthCheck() },
		},
	})
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize tournament module: %w", err)
	}
	app.TournamentModule = module

	logger.InfoContext(ctx, "Application initialized",
		slog.String("environment", cfg.Observability.Environment),
		slog.Bool("metrics", cfg.Observability.MetricsEnabled),
	)
	return app, nil
}

// Run starts the modules and the Watermill router and blocks until ctx is cancelled, the router
// stops or a module fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.wg.Add(1)
	go app.TournamentModule.Run(ctx, &app.wg)

	routerDone := make(chan error, 1)
	go func() { routerDone <- app.Router.Run(ctx) }()

	select {
	case err := <-app.TournamentModule.Failed():
		cancel()
		<-routerDone
		return fmt.Errorf("tournament module stopped: %w", err)
	case err := <-routerDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watermill router stopped: %w", err)
		}
		return nil
	}
}

// Close shuts everything down in reverse order of construction.
func (app *App) Close() error {
	var errs []error
	if app.TournamentModule != nil {
		if err := app.TournamentModule.Close(); err != nil {
			errs = append(errs, err)
		}
		app.wg.Wait()
	}
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("router close: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus close: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	return errors.Join(errs...)
}
