package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	appeventbus "github.com/Black-And-White-Club/cutline/app/eventbus"
	"github.com/Black-And-White-Club/cutline/app/modules/tournament"
	tournamentservice "github.com/Black-And-White-Club/cutline/app/modules/tournament/application"
	tournamenthandlers "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/handlers"
	"github.com/Black-And-White-Club/cutline/app/modules/wallet"
	"github.com/Black-And-White-Club/cutline/app/observability"
	"github.com/Black-And-White-Club/cutline/config"
	"github.com/Black-And-White-Club/cutline/pkg/jwt"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// App wires the modules to the event bus and the HTTP API.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	EventBus      *appeventbus.EventBus
	Router        *message.Router
	HTTP          http.Handler
	Tokens        jwt.Service

	TournamentModule *tournament.Module
	WalletModule     *wallet.Module
}

// NewApp builds every module. Nothing runs until Run.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger

	bus, err := appeventbus.NewEventBus(appeventbus.Config{
		URL:        cfg.NATS.URL,
		NKeySeed:   cfg.NATS.NKeySeed,
		QueueGroup: cfg.Observability.ServiceName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3, InitialInterval: 100 * time.Millisecond, Logger: watermill.NewSlogLogger(logger)}.Middleware,
	)

	walletModule, err := wallet.NewWalletModule(ctx, obs, bus.Publisher, bus.Subscriber, router, cfg.Game.StartingBalance)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	tournamentModule, err := tournament.NewTournamentModule(
		ctx, obs, bus.Publisher, bus.Subscriber, router,
		walletModule.WalletService,
		SettingsFromConfig(cfg),
	)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	var tokens jwt.Service
	if cfg.JWT.Secret != "" {
		tokens = jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL, cfg.JWT.Issuer)
	} else {
		logger.WarnContext(ctx, "JWT secret not set; API runs as the local account",
			slog.String("account", cfg.JWT.LocalAccount),
		)
	}

	a := &App{
		Config:           cfg,
		Observability:    obs,
		EventBus:         bus,
		Router:           router,
		Tokens:           tokens,
		TournamentModule: tournamentModule,
		WalletModule:     walletModule,
	}
	a.HTTP = a.httpHandler()
	return a, nil
}

// SettingsFromConfig converts the game section into service settings.
func SettingsFromConfig(cfg *config.Config) tournamentservice.Settings {
	return tournamentservice.Settings{
		BuyInOptions:      cfg.Game.BuyInOptions,
		Variants:          cfg.Variants,
		FieldFillInterval: cfg.Game.FieldFillInterval,
		LobbyTimeout:      cfg.Game.LobbyTimeout,
		CutRevealDelay:    cfg.Game.CutRevealDelay,
		PostRoundWait:     cfg.Game.PostRoundWait,
	}
}

func (a *App) httpHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if reg := a.Observability.Registry; reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	limiter := tournamenthandlers.NewClientLimiter(rate.Limit(a.Config.HTTP.RateLimit), a.Config.HTTP.RateBurst)
	r.Route("/api", func(r chi.Router) {
		r.Use(tournamenthandlers.CORSMiddleware(a.Config.HTTP.AllowedOrigins))
		r.Use(jwt.AccountMiddleware(a.Tokens, a.Config.JWT.LocalAccount))
		r.Use(tournamenthandlers.RateLimitMiddleware(limiter, a.Config.JWT.LocalAccount))

		a.TournamentModule.Routes(r)
		a.WalletModule.Routes(r)
	})
	return r
}

// Run starts the message router, then blocks until ctx is cancelled or the
// router stops.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- a.Router.Run(ctx)
	}()

	select {
	case <-a.Router.Running():
		logger.InfoContext(ctx, "Message router running")
	case err := <-routerErr:
		return fmt.Errorf("message router stopped during startup: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-routerErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("message router stopped: %w", err)
		}
		return nil
	}
}

// Close shuts down modules, the router and the bus, in that order.
func (a *App) Close() error {
	var errs []error
	if err := a.TournamentModule.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.Router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close message router: %w", err))
	}
	if err := a.EventBus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close event bus: %w", err))
	}
	return errors.Join(errs...)
}
