package walletevents

// BalanceUpdatedV1 is published, scoped by account id, after every ledger
// movement.
const BalanceUpdatedV1 = "wallet.balance.updated.v1"

// BalanceUpdatedPayloadV1 announces a new balance.
type BalanceUpdatedPayloadV1 struct {
	AccountID string  `json:"account_id"`
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Balance   float64 `json:"balance"`
}
