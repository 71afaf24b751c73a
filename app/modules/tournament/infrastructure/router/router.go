package tournamentrouter

import (
	"context"
	"log/slog"
	"os"

	tournamentevents "github.com/Black-And-White-Club/cutline/app/modules/tournament/events"
	tournamenthandlers "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/handlers"
	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// TournamentRouter wires tournament topics to their handlers.
type TournamentRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewTournamentRouter creates a new TournamentRouter. Router metrics are
// registered on registry unless APP_ENV=test.
func NewTournamentRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *TournamentRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && os.Getenv(TestEnvironmentFlag) != TestEnvironmentValue {
		builder := metrics.NewPrometheusMetricsBuilder(registry, "cutline", "tournament")
		metricsBuilder = &builder
	}
	return &TournamentRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure registers the handlers and, outside tests, router metrics.
func (r *TournamentRouter) Configure(_ context.Context, handlers tournamenthandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.registerHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

func (r *TournamentRouter) registerHandlers(handlers tournamenthandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, tournamentevents.FieldReadyV1, handlers.HandleFieldReady)
	registerHandler(deps, tournamentevents.RoundStartRequestedV1, handlers.HandleRoundStartRequested)
	registerHandler(deps, tournamentevents.RoundScoreReportedV1, handlers.HandleRoundScoreReported)
	registerHandler(deps, tournamentevents.RoundCutRequestedV1, handlers.HandleRoundCutRequested)
	registerHandler(deps, tournamentevents.RoundAdvanceRequestedV1, handlers.HandleRoundAdvanceRequested)

	r.logger.Info("Tournament module handlers registered")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "tournament." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.publisher,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *TournamentRouter) Close() error {
	return r.Router.Close()
}
