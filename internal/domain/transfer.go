package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transfer stages.
const (
	StageWithdraw = "withdraw"
	StageDeposit  = "deposit"
)

// TransferError reports which step of a transfer failed. When the deposit
// step fails the withdrawn amount has already been restored to the source
// account, and RolledBack is true.
type TransferError struct {
	From       string
	To         string
	Stage      string
	RolledBack bool
	Err        error
}

func (e *TransferError) Error() string {
	msg := fmt.Sprintf("transfer %s -> %s failed at %s: %v", e.From, e.To, e.Stage, e.Err)
	if e.RolledBack {
		msg += " (withdrawal reversed)"
	}
	return msg
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Transfer moves amount from one account to another: a withdraw on from
// followed by a deposit on to.
//
// Both accounts stay locked for the whole operation, acquired in ascending
// account-number order, so no caller observes a half-done transfer and two
// transfers in opposite directions cannot deadlock. Account numbers must be
// unique for the ordering to hold. A transfer to the same account locks it
// once and leaves the balance unchanged.
func Transfer(from, to *Account, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ErrValidation{Field: "amount", Message: "must be greater than zero"}
	}

	if from == to {
		from.mu.Lock()
		defer from.mu.Unlock()
		return applyTransfer(from, to, amount)
	}

	first, second := from, to
	if second.number < first.number {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	return applyTransfer(from, to, amount)
}

// applyTransfer expects both account locks to be held.
func applyTransfer(from, to *Account, amount decimal.Decimal) error {
	if err := from.withdraw(amount); err != nil {
		return &TransferError{From: from.number, To: to.number, Stage: StageWithdraw, Err: err}
	}
	if err := to.deposit(amount); err != nil {
		// from was open a moment ago and we still hold its lock
		if rbErr := from.deposit(amount); rbErr != nil {
			return &TransferError{
				From: from.number, To: to.number, Stage: StageDeposit,
				Err: fmt.Errorf("%w; reversal failed: %v", err, rbErr),
			}
		}
		return &TransferError{From: from.number, To: to.number, Stage: StageDeposit, RolledBack: true, Err: err}
	}
	return nil
}
