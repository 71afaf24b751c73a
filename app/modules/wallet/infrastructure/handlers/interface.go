package wallethandlers

import (
	"context"

	tournamentevents "github.com/Black-And-White-Club/cutline/app/modules/tournament/events"
	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
)

// Handlers are the event handlers of the wallet module.
type Handlers interface {
	HandleTournamentFinished(ctx context.Context, payload *tournamentevents.TournamentFinishedPayloadV1) ([]handlerwrapper.Result, error)
}
