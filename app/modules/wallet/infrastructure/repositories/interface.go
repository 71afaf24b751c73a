package walletdb

import "context"

// Repository stores wallet accounts. Accounts are opened lazily with
// StartingBalance.
type Repository interface {
	Get(ctx context.Context, accountID string) (*Account, error)
	// Apply runs fn on the account under the store lock. The account is
	// saved only when fn returns nil.
	Apply(ctx context.Context, accountID string, fn func(*Account) error) (*Account, error)
}
