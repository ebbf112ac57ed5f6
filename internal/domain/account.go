package domain

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Accounts
// ============================================================

// Account holds the balance of one customer.
//
// Every mutation is serialized on the account's own mutex, so the funds
// check in Withdraw and the balance write happen as one step. The balance
// never goes negative and nothing changes once the account is closed.
type Account struct {
	mu sync.Mutex

	number   string
	customer Customer
	openedAt time.Time

	balance decimal.Decimal
	closed  bool
}

// NewAccount creates an open account with a zero balance.
func NewAccount(number string, customer Customer, openedAt time.Time) *Account {
	return &Account{
		number:   number,
		customer: customer,
		openedAt: openedAt,
		balance:  decimal.Zero,
	}
}

// Number returns the account number.
func (a *Account) Number() string { return a.number }

// Customer returns the owning customer.
func (a *Account) Customer() Customer { return a.customer }

// OpenedAt returns when the account was created.
func (a *Account) OpenedAt() time.Time { return a.openedAt }

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// IsClosed reports whether the account has been closed.
func (a *Account) IsClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deposit(amount)
}

// Withdraw removes amount from the balance. Withdrawing the whole balance
// is allowed and leaves the account at zero.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.withdraw(amount)
}

// Close marks the account closed. Closing twice is a no-op.
func (a *Account) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

// Snapshot returns a consistent copy of the account state.
func (a *Account) Snapshot() AccountView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AccountView{
		Number:   a.number,
		Customer: a.customer,
		Balance:  a.balance,
		Closed:   a.closed,
		OpenedAt: a.openedAt,
	}
}

// deposit and withdraw expect a.mu to be held.

func (a *Account) deposit(amount decimal.Decimal) error {
	if a.closed {
		return a.closedError("deposit")
	}
	if amount.IsNegative() {
		return &ErrValidation{Field: "amount", Message: "must not be negative"}
	}
	a.balance = a.balance.Add(amount)
	return nil
}

func (a *Account) withdraw(amount decimal.Decimal) error {
	if a.closed {
		return a.closedError("withdraw")
	}
	if amount.IsNegative() {
		return &ErrValidation{Field: "amount", Message: "must not be negative"}
	}
	if amount.GreaterThan(a.balance) {
		return &ErrInsufficientFunds{Account: a.number, Available: a.balance, Required: amount}
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

func (a *Account) closedError(op string) error {
	return &ErrInvalidOperation{Operation: op, Reason: fmt.Sprintf("account %s is closed", a.number)}
}

// AccountView is a point-in-time copy of an Account.
type AccountView struct {
	Number   string
	Customer Customer
	Balance  decimal.Decimal
	Closed   bool
	OpenedAt time.Time
}
