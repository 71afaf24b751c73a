package walletdb

import (
	"context"
	"sync"
)

// MemoryRepository keeps accounts in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*Account
	opening  float64
}

// NewRepository returns an empty in-memory store. Accounts open with
// startingBalance; zero means StartingBalance.
func NewRepository(startingBalance float64) Repository {
	if startingBalance <= 0 {
		startingBalance = StartingBalance
	}
	return &MemoryRepository{accounts: make(map[string]*Account), opening: startingBalance}
}

func (r *MemoryRepository) account(id string) *Account {
	a, ok := r.accounts[id]
	if !ok {
		a = &Account{ID: id, Balance: r.opening}
		r.accounts[id] = a
	}
	return a
}

func (r *MemoryRepository) Get(ctx context.Context, accountID string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.account(accountID).clone(), nil
}

func (r *MemoryRepository) Apply(ctx context.Context, accountID string, fn func(*Account) error) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	working := r.account(accountID).clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.accounts[accountID] = working
	return working.clone(), nil
}
