package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Transactions (audit records)
// ============================================================

// Transaction kinds.
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxPayment    = "payment"
)

// Transaction records a completed movement of funds. It is an immutable
// value and never touches balances itself.
type Transaction struct {
	ID          string          `json:"transaction_id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	FromAccount string          `json:"from_account,omitempty"`
	ToAccount   string          `json:"to_account,omitempty"`
}

// NewTransaction builds a transaction record stamped with now.
// The amount must be positive.
func NewTransaction(id, kind string, amount decimal.Decimal, description string, now time.Time) (Transaction, error) {
	if id == "" {
		return Transaction{}, &ErrValidation{Field: "transaction_id", Message: "required"}
	}
	if !amount.IsPositive() {
		return Transaction{}, &ErrValidation{Field: "amount", Message: "must be greater than zero"}
	}
	return Transaction{
		ID:          id,
		Kind:        kind,
		Amount:      amount,
		Timestamp:   now,
		Description: description,
	}, nil
}

// Between returns a copy of t with source and destination accounts set.
func (t Transaction) Between(from, to string) Transaction {
	t.FromAccount = from
	t.ToAccount = to
	return t
}
