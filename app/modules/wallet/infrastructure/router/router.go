package walletrouter

import (
	"context"
	"log/slog"

	tournamentevents "github.com/Black-And-White-Club/cutline/app/modules/tournament/events"
	wallethandlers "github.com/Black-And-White-Club/cutline/app/modules/wallet/infrastructure/handlers"
	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// WalletRouter subscribes the wallet to tournament payouts.
type WalletRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

func NewWalletRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *WalletRouter {
	return &WalletRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure registers the payout handler.
func (r *WalletRouter) Configure(_ context.Context, handlers wallethandlers.Handlers) error {
	handlerName := "wallet." + tournamentevents.TournamentFinishedV1

	r.Router.AddNoPublisherHandler(
		handlerName,
		tournamentevents.TournamentFinishedV1,
		r.subscriber,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			r.logger,
			r.tracer,
			r.publisher,
			handlers.HandleTournamentFinished,
		),
	)

	r.logger.Info("Wallet module handlers registered",
		slog.String("subject", tournamentevents.TournamentFinishedV1),
	)
	return nil
}

func (r *WalletRouter) Close() error {
	return r.Router.Close()
}
