package domain

import "time"

// Transaction is a single completed transfer between two accounts.
// Transactions are immutable once created and form an append-only log.
type Transaction struct {
	TransactionID int64     `json:"transactionID"` // Monotonically assigned by the ledger
	Date          time.Time `json:"date"`
	FromAccountID int64     `json:"fromAccountID"`
	ToAccountID   int64     `json:"toAccountID"`
	Amount        int64     `json:"amount"` // Positive, integer minor units
	Details       string    `json:"details"`
}
