package walletservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	walletevents "github.com/Black-And-White-Club/cutline/app/modules/wallet/events"
	walletdb "github.com/Black-And-White-Club/cutline/app/modules/wallet/infrastructure/repositories"
	"github.com/Black-And-White-Club/cutline/pkg/eventbus"
	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/cutline/pkg/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WalletService implements Service.
type WalletService struct {
	repo      walletdb.Repository
	publisher message.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewWalletService creates a WalletService. A nil publisher disables
// balance notifications.
func NewWalletService(repo walletdb.Repository, publisher message.Publisher, logger *slog.Logger, tracer trace.Tracer) *WalletService {
	return &WalletService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
		now:       time.Now,
	}
}

func (s *WalletService) Balance(ctx context.Context, accountID string) (float64, error) {
	acct, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	return acct.Balance, nil
}

func (s *WalletService) Account(ctx context.Context, accountID string) (*walletdb.Account, error) {
	acct, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	return acct, nil
}

// Debit takes a buy-in. Overdrawing is a failure, not an error.
func (s *WalletService) Debit(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error) {
	return s.move(ctx, "Debit", accountID, -amount, reference)
}

// Credit pays out winnings.
func (s *WalletService) Credit(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error) {
	return s.move(ctx, "Credit", accountID, amount, reference)
}

func (s *WalletService) move(ctx context.Context, op, accountID string, delta float64, reference string) (results.OperationResult[float64, error], error) {
	ctx, span := s.tracer.Start(ctx, "WalletService."+op, trace.WithAttributes(
		attribute.String("account_id", accountID),
		attribute.String("reference", reference),
		attribute.Float64("amount", delta),
	))
	defer span.End()

	if delta == 0 || (op == "Debit") != (delta < 0) {
		return results.FailureResult[float64, error](fmt.Errorf("%w: %v", ErrInvalidAmount, delta)), nil
	}

	key := strings.ToLower(op) + ":" + reference
	replayed := false
	acct, err := s.repo.Apply(ctx, accountID, func(a *walletdb.Account) error {
		if a.HasReference(key) {
			replayed = true
			return nil
		}
		if a.Balance+delta < 0 {
			return fmt.Errorf("%w: balance %.2f, need %.2f", ErrInsufficientFunds, a.Balance, -delta)
		}
		a.Balance += delta
		a.Entries = append(a.Entries, walletdb.Entry{
			Reference: key,
			Amount:    delta,
			Balance:   a.Balance,
			CreatedAt: s.now(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			s.logger.InfoContext(ctx, "Debit refused",
				slog.String("account_id", accountID),
				slog.String("reason", err.Error()),
			)
			return results.FailureResult[float64, error](err), nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return results.OperationResult[float64, error]{}, fmt.Errorf("%s %s: %w", op, accountID, err)
	}

	if replayed {
		s.logger.InfoContext(ctx, "Ledger movement already applied",
			slog.String("account_id", accountID),
			slog.String("reference", reference),
		)
		return results.SuccessResult[float64, error](acct.Balance), nil
	}

	s.logger.InfoContext(ctx, "Balance updated",
		slog.String("account_id", accountID),
		slog.String("operation", op),
		slog.Float64("amount", delta),
		slog.Float64("balance", acct.Balance),
	)
	s.announce(ctx, accountID, reference, delta, acct.Balance)
	return results.SuccessResult[float64, error](acct.Balance), nil
}

// announce publishes the new balance. The ledger is already committed, so a
// publish failure is only logged.
func (s *WalletService) announce(ctx context.Context, accountID, reference string, amount, balance float64) {
	if s.publisher == nil {
		return
	}
	msg, err := handlerwrapper.NewMessage(ctx, &walletevents.BalanceUpdatedPayloadV1{
		AccountID: accountID,
		Reference: reference,
		Amount:    amount,
		Balance:   balance,
	})
	if err == nil {
		err = eventbus.PublishScoped(s.publisher, walletevents.BalanceUpdatedV1, accountID, msg)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish balance update",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
	}
}
