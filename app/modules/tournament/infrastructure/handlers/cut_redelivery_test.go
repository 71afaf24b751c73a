package tournamenthandlers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	tournamentservice "github.com/Black-And-White-Club/cutline/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	tournamentevents "github.com/Black-And-White-Club/cutline/app/modules/tournament/events"
	tournamentmetrics "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/metrics"
	tournamentdb "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/cutline/pkg/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type freeWallet struct{}

func (freeWallet) Balance(context.Context, string) (float64, error) { return 1000, nil }

func (freeWallet) Debit(_ context.Context, _ string, amount float64, _ string) (results.OperationResult[float64, error], error) {
	return results.SuccessResult[float64, error](1000 - amount), nil
}

type idleScheduler struct{}

func (idleScheduler) Schedule(context.Context, string, time.Duration, string, any) error { return nil }
func (idleScheduler) Cancel(string)                                                      {}

// flakyPublisher fails the first publish on failTopic.
type flakyPublisher struct {
	mu        sync.Mutex
	failTopic string
	failed    bool
	published map[string]int
}

func (p *flakyPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic == p.failTopic && !p.failed {
		p.failed = true
		return errors.New("broker unavailable")
	}
	p.published[topic] += len(msgs)
	return nil
}

func (p *flakyPublisher) Close() error { return nil }

func (p *flakyPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published[topic]
}

// playToFinalCut drives a basketball session up to the scoring phase of its
// last round, with player N scoring 20-N every round.
func playToFinalCut(t *testing.T, svc tournamentservice.Service) {
	t.Helper()
	ctx := context.Background()
	userScore := 19

	res, err := svc.JoinContest(ctx, tournamentservice.JoinContestRequest{AccountID: "acct", Variant: "basketball", BuyIn: 10})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	res, err = svc.StartField(ctx, "s1")
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	for round := 1; ; round++ {
		res, err = svc.BeginRound(ctx, "s1", round)
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		res, err = svc.ReportScore(ctx, "s1", round, &userScore)
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		if round == 4 {
			return
		}

		outcome, err := svc.ResolveRound(ctx, "s1", round)
		require.NoError(t, err)
		require.True(t, outcome.IsSuccess())
		require.Nil(t, outcome.Success.Result, "round %d must not finish the tournament", round)
		res, err = svc.AdvanceRound(ctx, "s1", round)
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
	}
}

func TestCutRedeliveryRepublishesFinishedTournament(t *testing.T) {
	logger := slog.Default()
	tracer := noop.NewTracerProvider().Tracer("test")

	svc := tournamentservice.NewTournamentService(
		tournamentdb.NewRepository(),
		freeWallet{},
		idleScheduler{},
		tournamentservice.DefaultSettings(),
		logger,
		tournamentmetrics.NewNoop(),
		tracer,
		tournamentservice.WithRandomness(func(tournamentdomain.ScoreRange) tournamentdomain.ScoreSource {
			return tournamentdomain.ScoreFunc(func(p tournamentdomain.Player, _ int) int { return 20 - int(p.ID) })
		}, func() float64 { return 0.5 }),
		tournamentservice.WithIDGenerator(func() string { return "s1" }),
	)
	playToFinalCut(t, svc)

	pub := &flakyPublisher{failTopic: tournamentevents.TournamentFinishedV1, published: map[string]int{}}
	h := NewTournamentHandlers(svc, logger, tracer, nil)
	handle := handlerwrapper.WrapTransformingTyped("cut", logger, tracer, pub, h.HandleRoundCutRequested)

	msg, err := handlerwrapper.NewMessage(context.Background(), tournamentevents.TimerPayloadV1{
		SessionID: "s1",
		Phase:     tournamentdomain.PhaseScoring,
		Round:     4,
	})
	require.NoError(t, err)

	require.Error(t, handle(msg), "first delivery hits the broker failure")
	assert.Equal(t, 0, pub.count(tournamentevents.TournamentFinishedV1))

	require.NoError(t, handle(msg), "redelivery succeeds")
	assert.Equal(t, 1, pub.count(tournamentevents.TournamentFinishedV1))

	view, err := svc.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, view.IsSuccess())
	assert.Equal(t, tournamentdomain.PhaseFinished, view.Success.Phase)
	assert.Equal(t, 4, view.Success.CurrentRound)
}
