package tournament

import (
	"context"
	"fmt"
	"log/slog"

	tournamentservice "github.com/Black-And-White-Club/cutline/app/modules/tournament/application"
	tournamenthandlers "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/handlers"
	tournamentmetrics "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/metrics"
	tournamentdb "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/repositories"
	tournamentrouter "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/router"
	tournamentscheduler "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/scheduler"
	"github.com/Black-And-White-Club/cutline/app/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
)

// Module represents the tournament module.
type Module struct {
	TournamentService tournamentservice.Service
	TournamentRouter  *tournamentrouter.TournamentRouter
	HTTPHandlers      *tournamenthandlers.HTTPHandlers
	scheduler         *tournamentscheduler.Scheduler
	logger            *slog.Logger
}

// NewTournamentModule creates and initializes a new tournament module. The
// wallet is owned by the wallet module.
func NewTournamentModule(
	ctx context.Context,
	obs *observability.Observability,
	publisher message.Publisher,
	subscriber message.Subscriber,
	router *message.Router,
	wallet tournamentservice.Wallet,
	settings tournamentservice.Settings,
) (*Module, error) {
	logger := obs.Logger.With(slog.String("module", "tournament"))
	tracer := obs.Tracer

	logger.InfoContext(ctx, "tournament.NewTournamentModule initializing")

	metrics := tournamentmetrics.NewNoop()
	if obs.Registry != nil {
		m, err := tournamentmetrics.NewPrometheus(obs.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register tournament metrics: %w", err)
		}
		metrics = m
	}

	repo := tournamentdb.NewRepository()
	scheduler, err := tournamentscheduler.NewScheduler(publisher, logger)
	if err != nil {
		return nil, err
	}
	service := tournamentservice.NewTournamentService(repo, wallet, scheduler, settings, logger, metrics, tracer)
	handlers := tournamenthandlers.NewTournamentHandlers(service, logger, tracer, metrics)

	tournamentRouter := tournamentrouter.NewTournamentRouter(logger, router, subscriber, publisher, tracer, obs.Registry)
	if err := tournamentRouter.Configure(ctx, handlers); err != nil {
		_ = scheduler.Close()
		return nil, fmt.Errorf("failed to configure tournament router: %w", err)
	}

	return &Module{
		TournamentService: service,
		TournamentRouter:  tournamentRouter,
		HTTPHandlers:      tournamenthandlers.NewHTTPHandlers(service, logger),
		scheduler:         scheduler,
		logger:            logger,
	}, nil
}

// Routes mounts the tournament HTTP API.
func (m *Module) Routes(r chi.Router) {
	m.HTTPHandlers.Routes(r)
}

// Close stops pending timers. The shared message router is closed by the app.
func (m *Module) Close() error {
	m.logger.Info("Stopping tournament module", slog.Int("pending_timers", m.scheduler.Pending()))

	if err := m.scheduler.Close(); err != nil {
		return fmt.Errorf("error closing scheduler: %w", err)
	}

	m.logger.Info("Tournament module stopped")
	return nil
}
