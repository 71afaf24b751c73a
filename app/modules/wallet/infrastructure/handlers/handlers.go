package wallethandlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	tournamentevents "github.com/Black-And-White-Club/cutline/app/modules/tournament/events"
	walletservice "github.com/Black-And-White-Club/cutline/app/modules/wallet/application"
	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/cutline/pkg/jwt"
)

// WalletHandlers implements Handlers and the wallet HTTP endpoint.
type WalletHandlers struct {
	service walletservice.Service
	logger  *slog.Logger
}

// NewWalletHandlers creates a new WalletHandlers instance.
func NewWalletHandlers(service walletservice.Service, logger *slog.Logger) *WalletHandlers {
	return &WalletHandlers{service: service, logger: logger}
}

// HandleTournamentFinished credits the user's share of the pool.
func (h *WalletHandlers) HandleTournamentFinished(ctx context.Context, payload *tournamentevents.TournamentFinishedPayloadV1) ([]handlerwrapper.Result, error) {
	if !payload.UserWon || payload.UserPayout <= 0 {
		return nil, nil
	}

	res, err := h.service.Credit(ctx, payload.AccountID, payload.UserPayout, payload.TournamentID)
	if err != nil {
		return nil, err
	}
	if res.IsFailure() {
		h.logger.WarnContext(ctx, "Payout rejected",
			slog.String("account_id", payload.AccountID),
			slog.String("tournament_id", payload.TournamentID),
			slog.String("error", (*res.Failure).Error()),
		)
	}
	return nil, nil
}

// HandleGetWallet returns the caller's balance and ledger.
func (h *WalletHandlers) HandleGetWallet(w http.ResponseWriter, r *http.Request) {
	acct, err := h.service.Account(r.Context(), jwt.AccountFromContext(r.Context()))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Wallet lookup failed", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(acct)
}
