package walletservice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	walletevents "github.com/Black-And-White-Club/cutline/app/modules/wallet/events"
	walletdb "github.com/Black-And-White-Club/cutline/app/modules/wallet/infrastructure/repositories"
	"github.com/Black-And-White-Club/cutline/pkg/eventbus"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordingPublisher struct {
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.topics = append(p.topics, topic)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestWallet(pub message.Publisher) *WalletService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewWalletService(walletdb.NewRepository(100), pub, logger, noop.NewTracerProvider().Tracer("test"))
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestWalletService_Debit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		amount      float64
		prior       []float64
		wantBalance float64
		wantFailure error
	}{
		{name: "debit within balance", amount: 20, wantBalance: 80},
		{name: "debit whole balance", amount: 100, wantBalance: 0},
		{name: "overdraw", amount: 100.01, wantFailure: ErrInsufficientFunds},
		{name: "overdraw after earlier debits", amount: 50, prior: []float64{30, 30}, wantFailure: ErrInsufficientFunds},
		{name: "zero amount", amount: 0, wantFailure: ErrInvalidAmount},
		{name: "negative amount", amount: -5, wantFailure: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestWallet(nil)
			for i, p := range tt.prior {
				res, err := svc.Debit(ctx, "acct", p, string(rune('a'+i)))
				require.NoError(t, err)
				require.True(t, res.IsSuccess())
			}

			res, err := svc.Debit(ctx, "acct", tt.amount, "session-1")
			require.NoError(t, err)

			if tt.wantFailure != nil {
				require.True(t, res.IsFailure())
				assert.ErrorIs(t, *res.Failure, tt.wantFailure)
				return
			}
			require.True(t, res.IsSuccess())
			assert.InDelta(t, tt.wantBalance, *res.Success, 1e-9)
		})
	}
}

func TestWalletService_Idempotency(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestWallet(pub)

	res, err := svc.Debit(ctx, "acct", 10, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 90.0, *res.Success)

	res, err = svc.Debit(ctx, "acct", 10, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 90.0, *res.Success, "replayed debit must not charge twice")

	res, err = svc.Credit(ctx, "acct", 45, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 135.0, *res.Success, "credit with the debit's reference is a distinct movement")

	res, err = svc.Credit(ctx, "acct", 45, "t-1")
	require.NoError(t, err)
	assert.Equal(t, 135.0, *res.Success)

	acct, err := svc.Account(ctx, "acct")
	require.NoError(t, err)
	require.Len(t, acct.Entries, 2)
	assert.Equal(t, walletdb.Entry{Reference: "debit:t-1", Amount: -10, Balance: 90, CreatedAt: svc.now()}, acct.Entries[0])
	assert.Equal(t, "credit:t-1", acct.Entries[1].Reference)

	scoped := eventbus.ScopedTopic(walletevents.BalanceUpdatedV1, "acct")
	assert.Equal(t, []string{scoped, scoped}, pub.topics)
}

func TestWalletService_PublishFailureKeepsLedger(t *testing.T) {
	ctx := context.Background()
	svc := newTestWallet(&recordingPublisher{err: assert.AnError})

	res, err := svc.Credit(ctx, "acct", 5, "t-9")
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	balance, err := svc.Balance(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, 105.0, balance)
}

func TestWalletService_BalanceEvent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 4}, watermill.NewSlogLogger(logger))
	t.Cleanup(func() { _ = pubsub.Close() })

	msgs, err := pubsub.Subscribe(context.Background(), eventbus.ScopedTopic(walletevents.BalanceUpdatedV1, "acct"))
	require.NoError(t, err)

	svc := newTestWallet(pubsub)
	_, err = svc.Debit(context.Background(), "acct", 25, "s-1")
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		msg.Ack()
		assert.JSONEq(t, `{"account_id":"acct","reference":"s-1","amount":-25,"balance":75}`, string(msg.Payload))
	case <-time.After(5 * time.Second):
		t.Fatal("no balance event")
	}
}
