package tournamentservice

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/cutline/pkg/results"
)

// Service drives tournament sessions through their phases. Timer-driven
// operations take the round they were armed for; zero means "current".
type Service interface {
	ListContests(ctx context.Context, accountID string) (results.OperationResult[ContestList, error], error)
	JoinContest(ctx context.Context, req JoinContestRequest) (results.OperationResult[SessionView, error], error)
	GetSession(ctx context.Context, sessionID string) (results.OperationResult[SessionView, error], error)

	StartField(ctx context.Context, sessionID string) (results.OperationResult[SessionView, error], error)
	BeginRound(ctx context.Context, sessionID string, round int) (results.OperationResult[SessionView, error], error)
	ReportScore(ctx context.Context, sessionID string, round int, score *int) (results.OperationResult[SessionView, error], error)
	ResolveRound(ctx context.Context, sessionID string, round int) (results.OperationResult[RoundOutcome, error], error)
	AdvanceRound(ctx context.Context, sessionID string, round int) (results.OperationResult[SessionView, error], error)
	ExitToLobby(ctx context.Context, sessionID string) (results.OperationResult[SessionView, error], error)

	RenderProgressChart(ctx context.Context, sessionID string) ([]byte, error)
	ExportStandings(ctx context.Context, sessionID string) ([]byte, error)
}

// Wallet is the balance ledger the service debits buy-ins from.
type Wallet interface {
	Balance(ctx context.Context, accountID string) (float64, error)
	Debit(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error)
}

// Scheduler publishes an event after a delay. A session has at most one
// pending timer; scheduling again replaces it.
type Scheduler interface {
	Schedule(ctx context.Context, sessionID string, delay time.Duration, topic string, payload any) error
	Cancel(sessionID string)
}
