package walletdb

import "time"

// StartingBalance is credited to an account the first time it is seen.
const StartingBalance = 1000.00

// Entry is one ledger movement. Debits are negative; Reference is
// prefixed with the movement kind, e.g. "debit:<session>".
type Entry struct {
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is a balance and its ledger.
type Account struct {
	ID      string  `json:"id"`
	Balance float64 `json:"balance"`
	Entries []Entry `json:"entries"`
}

// HasReference reports whether a movement with ref was already applied.
func (a *Account) HasReference(ref string) bool {
	for _, e := range a.Entries {
		if e.Reference == ref {
			return true
		}
	}
	return false
}

func (a *Account) clone() *Account {
	c := *a
	c.Entries = append([]Entry(nil), a.Entries...)
	return &c
}
