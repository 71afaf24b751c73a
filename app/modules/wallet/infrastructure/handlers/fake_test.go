package wallethandlers

import (
	"context"

	walletservice "github.com/Black-And-White-Club/cutline/app/modules/wallet/application"
	walletdb "github.com/Black-And-White-Club/cutline/app/modules/wallet/infrastructure/repositories"
	"github.com/Black-And-White-Club/cutline/pkg/results"
)

type FakeWalletService struct {
	trace []string

	AccountFunc func(ctx context.Context, accountID string) (*walletdb.Account, error)
	CreditFunc  func(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error)
}

func NewFakeWalletService() *FakeWalletService {
	return &FakeWalletService{trace: []string{}}
}

func (f *FakeWalletService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeWalletService) Balance(ctx context.Context, accountID string) (float64, error) {
	f.record("Balance")
	return 0, nil
}

func (f *FakeWalletService) Account(ctx context.Context, accountID string) (*walletdb.Account, error) {
	f.record("Account")
	if f.AccountFunc != nil {
		return f.AccountFunc(ctx, accountID)
	}
	return &walletdb.Account{ID: accountID}, nil
}

func (f *FakeWalletService) Debit(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error) {
	f.record("Debit")
	return results.OperationResult[float64, error]{}, nil
}

func (f *FakeWalletService) Credit(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error) {
	f.record("Credit")
	if f.CreditFunc != nil {
		return f.CreditFunc(ctx, accountID, amount, reference)
	}
	return results.SuccessResult[float64, error](amount), nil
}

var _ walletservice.Service = (*FakeWalletService)(nil)
