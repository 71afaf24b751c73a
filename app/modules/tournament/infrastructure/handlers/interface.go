package tournamenthandlers

import (
	"context"

	tournamentevents "github.com/Black-And-White-Club/cutline/app/modules/tournament/events"
	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
)

// Handlers are the event handlers of the tournament module.
type Handlers interface {
	HandleFieldReady(ctx context.Context, payload *tournamentevents.TimerPayloadV1) ([]handlerwrapper.Result, error)
	HandleRoundStartRequested(ctx context.Context, payload *tournamentevents.TimerPayloadV1) ([]handlerwrapper.Result, error)
	HandleRoundScoreReported(ctx context.Context, payload *tournamentevents.RoundScoreReportedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRoundCutRequested(ctx context.Context, payload *tournamentevents.TimerPayloadV1) ([]handlerwrapper.Result, error)
	HandleRoundAdvanceRequested(ctx context.Context, payload *tournamentevents.TimerPayloadV1) ([]handlerwrapper.Result, error)
}
