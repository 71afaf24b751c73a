package wallet

import (
	"context"
	"fmt"
	"log/slog"

	walletservice "github.com/Black-And-White-Club/cutline/app/modules/wallet/application"
	wallethandlers "github.com/Black-And-White-Club/cutline/app/modules/wallet/infrastructure/handlers"
	walletdb "github.com/Black-And-White-Club/cutline/app/modules/wallet/infrastructure/repositories"
	walletrouter "github.com/Black-And-White-Club/cutline/app/modules/wallet/infrastructure/router"
	"github.com/Black-And-White-Club/cutline/app/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
)

// Module represents the wallet module.
type Module struct {
	WalletService walletservice.Service
	handlers      *wallethandlers.WalletHandlers
	logger        *slog.Logger
}

// NewWalletModule creates the wallet module and subscribes it to payouts.
func NewWalletModule(
	ctx context.Context,
	obs *observability.Observability,
	publisher message.Publisher,
	subscriber message.Subscriber,
	router *message.Router,
	startingBalance float64,
) (*Module, error) {
	logger := obs.Logger.With(slog.String("module", "wallet"))
	logger.InfoContext(ctx, "wallet.NewWalletModule initializing")

	service := walletservice.NewWalletService(walletdb.NewRepository(startingBalance), publisher, logger, obs.Tracer)
	handlers := wallethandlers.NewWalletHandlers(service, logger)

	if err := walletrouter.NewWalletRouter(logger, router, subscriber, publisher, obs.Tracer).Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure wallet router: %w", err)
	}

	return &Module{
		WalletService: service,
		handlers:      handlers,
		logger:        logger,
	}, nil
}

// Routes mounts GET /wallet.
func (m *Module) Routes(r chi.Router) {
	r.Get("/wallet", m.handlers.HandleGetWallet)
}
