package tournamentrouter

import (
	"context"
	"log/slog"
	"os"

	tournamentevents "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/events"
	tournamenthandlers "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/handlers"
	"github.com/Black-And-White-Club/rugby-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// TournamentRouter binds tournament topics to their handlers on a watermill router.
type TournamentRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	handlerMetrics handlerwrapper.Metrics
	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewTournamentRouter creates a new instance of the router. Outgoing messages are published
// to the topic carried in their metadata.
func NewTournamentRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	handlerMetrics handlerwrapper.Metrics,
	prometheusRegistry prometheus.Registerer,
) *TournamentRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &TournamentRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      handlerwrapper.NewTopicRoutingPublisher(publisher),
		tracer:         tracer,
		handlerMetrics: handlerMetrics,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure sets up the middlewares and registers the tournament handlers.
func (r *TournamentRouter) Configure(routerCtx context.Context, handlers tournamenthandlers.Handlers) error {
	if r.metricsEnabled {
		r.logger.Info("Adding Prometheus router metrics middleware for Tournament")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	return r.RegisterHandlers(routerCtx, handlers)
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "tournament." + topic
	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// RegisterHandlers binds event topics to their handler logic.
func (r *TournamentRouter) RegisterHandlers(ctx context.Context, handlers tournamenthandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Tournament Event Handlers")

	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.handlerMetrics,
	}

	// MUTATIONS
	registerHandler(deps, tournamentevents.TournamentCreateRequestedV1, handlers.HandleTournamentCreateRequested)
	registerHandler(deps, tournamentevents.ResultRecordedV1, handlers.HandleResultRecorded)
	registerHandler(deps, tournamentevents.StandingsRebuildRequestedV1, handlers.HandleStandingsRebuildRequested)

	// READS
	registerHandler(deps, tournamentevents.StandingsRequestV1, handlers.HandleStandingsRequest)

	return nil
}

// Close stops the router and cleans up resources.
func (r *TournamentRouter) Close() error {
	return r.Router.Close()
}
