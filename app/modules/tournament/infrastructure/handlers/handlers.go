package tournamenthandlers

import (
	"context"
	"errors"
	"log/slog"

	tournamentservice "github.com/Black-And-White-Club/cutline/app/modules/tournament/application"
	tournamentevents "github.com/Black-And-White-Club/cutline/app/modules/tournament/events"
	tournamentmetrics "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/metrics"
	"github.com/Black-And-White-Club/cutline/pkg/eventbus"
	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/cutline/pkg/results"
	"go.opentelemetry.io/otel/trace"
)

// TournamentHandlers implements the Handlers interface.
type TournamentHandlers struct {
	service tournamentservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics tournamentmetrics.TournamentMetrics
}

// NewTournamentHandlers creates a new TournamentHandlers instance.
func NewTournamentHandlers(
	service tournamentservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics tournamentmetrics.TournamentMetrics,
) Handlers {
	if metrics == nil {
		metrics = tournamentmetrics.NewNoop()
	}
	return &TournamentHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}

// HandleFieldReady seats the field once it has filled.
func (h *TournamentHandlers) HandleFieldReady(ctx context.Context, payload *tournamentevents.TimerPayloadV1) ([]handlerwrapper.Result, error) {
	res, err := h.service.StartField(ctx, payload.SessionID)
	return nil, h.settle(ctx, tournamentevents.FieldReadyV1, payload.SessionID, failureOf(res), err)
}

// HandleRoundStartRequested starts a round whose lobby countdown expired.
func (h *TournamentHandlers) HandleRoundStartRequested(ctx context.Context, payload *tournamentevents.TimerPayloadV1) ([]handlerwrapper.Result, error) {
	res, err := h.service.BeginRound(ctx, payload.SessionID, payload.Round)
	return nil, h.settle(ctx, tournamentevents.RoundStartRequestedV1, payload.SessionID, failureOf(res), err)
}

// HandleRoundScoreReported records the mini-game result.
func (h *TournamentHandlers) HandleRoundScoreReported(ctx context.Context, payload *tournamentevents.RoundScoreReportedPayloadV1) ([]handlerwrapper.Result, error) {
	res, err := h.service.ReportScore(ctx, payload.SessionID, payload.Round, payload.Score)
	return nil, h.settle(ctx, tournamentevents.RoundScoreReportedV1, payload.SessionID, failureOf(res), err)
}

// HandleRoundCutRequested applies the cut and announces the result, plus
// the payout when the tournament ended. A redelivered cut for a finished
// tournament announces the stored outcome again; the wallet credits each
// tournament once.
func (h *TournamentHandlers) HandleRoundCutRequested(ctx context.Context, payload *tournamentevents.TimerPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleRoundCutRequested")
	defer span.End()

	res, err := h.service.ResolveRound(ctx, payload.SessionID, payload.Round)
	if err != nil || res.IsFailure() {
		return nil, h.settle(ctx, tournamentevents.RoundCutRequestedV1, payload.SessionID, failureOf(res), err)
	}

	outcome := res.Success
	if outcome.Replayed {
		h.logger.InfoContext(ctx, "Re-publishing resolved round",
			slog.String("session_id", outcome.Session.ID),
			slog.Int("round", outcome.Round.Round),
		)
	}
	out := []handlerwrapper.Result{{
		Topic: eventbus.ScopedTopic(tournamentevents.RoundResolvedV1, outcome.Session.ID),
		Payload: &tournamentevents.RoundResolvedPayloadV1{
			SessionID: outcome.Session.ID,
			AccountID: outcome.Session.AccountID,
			Result:    outcome.Round,
		},
	}}

	if r := outcome.Result; r != nil {
		out = append(out, handlerwrapper.Result{
			Topic: tournamentevents.TournamentFinishedV1,
			Payload: &tournamentevents.TournamentFinishedPayloadV1{
				SessionID:    outcome.Session.ID,
				TournamentID: outcome.Session.ID,
				AccountID:    outcome.Session.AccountID,
				Variant:      outcome.Session.Variant,
				BuyIn:        outcome.Session.BuyIn,
				PrizePool:    r.PrizePool,
				Winners:      r.Winners,
				Share:        r.Share,
				UserWon:      r.UserWon,
				UserPayout:   r.UserPayout,
			},
		})
	}
	return out, nil
}

// HandleRoundAdvanceRequested ends the post-round review.
func (h *TournamentHandlers) HandleRoundAdvanceRequested(ctx context.Context, payload *tournamentevents.TimerPayloadV1) ([]handlerwrapper.Result, error) {
	res, err := h.service.AdvanceRound(ctx, payload.SessionID, payload.Round)
	return nil, h.settle(ctx, tournamentevents.RoundAdvanceRequestedV1, payload.SessionID, failureOf(res), err)
}

func failureOf[S any](res results.OperationResult[S, error]) error {
	if res.Failure == nil {
		return nil
	}
	return *res.Failure
}

// settle decides what happens to the message. Infrastructure errors are
// returned so the router retries; events that no longer match the session
// are acknowledged and dropped.
func (h *TournamentHandlers) settle(ctx context.Context, topic, sessionID string, failure, err error) error {
	if err != nil {
		return err
	}
	if failure == nil {
		return nil
	}
	if errors.Is(failure, tournamentservice.ErrStaleEvent) ||
		errors.Is(failure, tournamentservice.ErrInvalidPhase) ||
		errors.Is(failure, tournamentservice.ErrSessionNotFound) {
		h.metrics.RecordStaleEvent(ctx, topic)
		h.logger.InfoContext(ctx, "Dropping stale event",
			slog.String("topic", topic),
			slog.String("session_id", sessionID),
			slog.String("reason", failure.Error()),
		)
		return nil
	}
	h.logger.WarnContext(ctx, "Event rejected",
		slog.String("topic", topic),
		slog.String("session_id", sessionID),
		slog.String("error", failure.Error()),
	)
	return nil
}
