package walletservice

import (
	"context"

	walletdb "github.com/Black-And-White-Club/cutline/app/modules/wallet/infrastructure/repositories"
	"github.com/Black-And-White-Club/cutline/pkg/results"
)

// Service is the account ledger. Debit and Credit are idempotent per
// reference: replaying one returns the current balance unchanged.
type Service interface {
	Balance(ctx context.Context, accountID string) (float64, error)
	Account(ctx context.Context, accountID string) (*walletdb.Account, error)
	Debit(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error)
	Credit(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error)
}
