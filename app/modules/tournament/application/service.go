package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	tournamentmetrics "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/metrics"
	tournamentdb "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/cutline/pkg/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "TournamentService"

// ScoreSourceFactory builds the fallback score source for a score range.
type ScoreSourceFactory func(tournamentdomain.ScoreRange) tournamentdomain.ScoreSource

// TournamentService implements the Service interface.
type TournamentService struct {
	repo      tournamentdb.Repository
	wallet    Wallet
	scheduler Scheduler
	settings  Settings
	logger    *slog.Logger
	metrics   tournamentmetrics.TournamentMetrics
	tracer    trace.Tracer

	scores ScoreSourceFactory
	seeds  func() float64
	now    func() time.Time
	newID  func() string
}

// Option customises a TournamentService.
type Option func(*TournamentService)

// WithRandomness replaces the fallback score source and tie-break seeds.
func WithRandomness(scores ScoreSourceFactory, seeds func() float64) Option {
	return func(s *TournamentService) {
		if scores != nil {
			s.scores = scores
		}
		if seeds != nil {
			s.seeds = seeds
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *TournamentService) { s.now = now }
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *TournamentService) { s.newID = newID }
}

// NewTournamentService creates a new TournamentService.
func NewTournamentService(
	repo tournamentdb.Repository,
	wallet Wallet,
	scheduler Scheduler,
	settings Settings,
	logger *slog.Logger,
	metrics tournamentmetrics.TournamentMetrics,
	tracer trace.Tracer,
	opts ...Option,
) *TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = tournamentmetrics.NewNoop()
	}
	s := &TournamentService{
		repo:      repo,
		wallet:    wallet,
		scheduler: scheduler,
		settings:  settings,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		scores:    defaultScores,
		seeds:     rand.Float64,
		now:       time.Now,
		newID:     newSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultScores draws from the package-level generator, which is safe for
// concurrent sessions.
func defaultScores(r tournamentdomain.ScoreRange) tournamentdomain.ScoreSource {
	return tournamentdomain.ScoreFunc(func(tournamentdomain.Player, int) int {
		return r.Min + rand.IntN(r.Max-r.Min+1)
	})
}

func (s *TournamentService) variant(name string) (tournamentdomain.Variant, bool) {
	v, ok := s.settings.Variants[name]
	return v, ok
}

// failureErrors are reported to callers as domain failures rather than
// infrastructure errors.
var failureErrors = []error{
	ErrSessionNotFound,
	ErrUnknownVariant,
	ErrInvalidBuyIn,
	ErrInvalidPhase,
	ErrStaleEvent,
	ErrNotYourSession,
	tournamentdomain.ErrTournamentFinished,
	tournamentdomain.ErrOutOfOrder,
	tournamentdomain.ErrInvalidScore,
}

func isFailure(err error) bool {
	for _, target := range failureErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mutate runs fn on the session under its lock and sorts the outcome into a
// success, a domain failure or an infrastructure error.
func mutate[S any](
	s *TournamentService,
	ctx context.Context,
	sessionID string,
	fn func(*tournamentdb.Session) error,
	view func(*tournamentdb.Session) S,
) (results.OperationResult[S, error], error) {
	updated, err := s.repo.Update(ctx, sessionID, func(sess *tournamentdb.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		sess.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return results.FailureResult[S, error](fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)), nil
		}
		if isFailure(err) {
			return results.FailureResult[S, error](err), nil
		}
		return results.OperationResult[S, error]{}, err
	}
	return results.SuccessResult[S, error](view(updated)), nil
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *TournamentService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	correlationID := slog.String("correlation_id", handlerwrapper.CorrelationID(ctx))
	s.logger.InfoContext(ctx, "Operation triggered", correlationID, slog.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				correlationID,
				slog.String("identifier", identifier),
				slog.String("error", err.Error()),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			correlationID,
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.String("error", wrappedErr.Error()),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			correlationID,
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			correlationID,
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}
