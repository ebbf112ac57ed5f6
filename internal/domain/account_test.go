package domain_test

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newAccount(number string) *domain.Account {
	return domain.NewAccount(number, domain.NewCustomer("cust-1", "Alice"), time.Now())
}

func TestAccount_AliceScenario(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	account := newAccount("ACC1001")
	assert.True(account.Balance().Equal(dec("0.00")))

	require.NoError(account.Deposit(dec("100.00")))
	assert.Equal("100.00", account.Balance().StringFixed(2))

	require.NoError(account.Withdraw(dec("40.00")))
	assert.Equal("60.00", account.Balance().StringFixed(2))

	err := account.Withdraw(dec("100.00"))
	var insufficient *domain.ErrInsufficientFunds
	require.ErrorAs(err, &insufficient)
	assert.Equal("ACC1001", insufficient.Account)
	assert.True(insufficient.Available.Equal(dec("60")))
	assert.True(insufficient.Required.Equal(dec("100")))
	assert.Equal("60.00", account.Balance().StringFixed(2), "balance must be unchanged after a rejected withdraw")

	account.Close()
	assert.Equal("60.00", account.Balance().StringFixed(2), "close freezes the balance")

	var invalid *domain.ErrInvalidOperation
	require.ErrorAs(account.Deposit(dec("1.00")), &invalid)
	assert.Equal("deposit", invalid.Operation)
}

func TestAccount_DepositWithdrawRoundTrip(t *testing.T) {
	account := newAccount("ACC1001")
	require.NoError(t, account.Deposit(dec("12.34")))

	before := account.Balance()
	require.NoError(t, account.Deposit(dec("0.10")))
	require.NoError(t, account.Withdraw(dec("0.10")))

	assert.True(t, account.Balance().Equal(before))
}

func TestAccount_NoRepresentationDrift(t *testing.T) {
	account := newAccount("ACC1001")
	for i := 0; i < 1000; i++ {
		require.NoError(t, account.Deposit(dec("0.10")))
	}
	assert.Equal(t, "100.00", account.Balance().StringFixed(2))
	assert.True(t, account.Balance().Equal(dec("100")))

	for i := 0; i < 1000; i++ {
		require.NoError(t, account.Withdraw(dec("0.10")))
	}
	assert.True(t, account.Balance().IsZero())
}

func TestAccount_WithdrawExactBalance(t *testing.T) {
	account := newAccount("ACC1001")
	require.NoError(t, account.Deposit(dec("75.50")))

	require.NoError(t, account.Withdraw(dec("75.50")))
	assert.True(t, account.Balance().IsZero())
}

func TestAccount_WithdrawBalancePlusEpsilon(t *testing.T) {
	account := newAccount("ACC1001")
	require.NoError(t, account.Deposit(dec("75.50")))

	err := account.Withdraw(dec("75.51"))

	var insufficient *domain.ErrInsufficientFunds
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, account.Balance().Equal(dec("75.50")))
}

func TestAccount_ZeroAmountsAllowed(t *testing.T) {
	account := newAccount("ACC1001")

	assert.NoError(t, account.Deposit(decimal.Zero))
	assert.NoError(t, account.Withdraw(decimal.Zero))
	assert.True(t, account.Balance().IsZero())
}

func TestAccount_NegativeAmountsRejected(t *testing.T) {
	tests := []struct {
		name string
		op   func(*domain.Account) error
	}{
		{"deposit", func(a *domain.Account) error { return a.Deposit(dec("-1")) }},
		{"withdraw", func(a *domain.Account) error { return a.Withdraw(dec("-1")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := newAccount("ACC1001")
			require.NoError(t, account.Deposit(dec("10")))

			var validation *domain.ErrValidation
			require.ErrorAs(t, tt.op(account), &validation)
			assert.Equal(t, "amount", validation.Field)
			assert.True(t, account.Balance().Equal(dec("10")))
		})
	}
}

func TestAccount_ClosedRejectsEveryMutation(t *testing.T) {
	account := newAccount("ACC1001")
	require.NoError(t, account.Deposit(dec("10")))
	account.Close()

	var invalid *domain.ErrInvalidOperation
	assert.ErrorAs(t, account.Deposit(dec("1")), &invalid)
	assert.ErrorAs(t, account.Withdraw(dec("1")), &invalid)
	assert.ErrorAs(t, account.Withdraw(dec("100")), &invalid, "closed takes precedence over insufficient funds")
	assert.ErrorAs(t, account.Deposit(dec("-1")), &invalid, "closed takes precedence over validation")
	assert.True(t, account.Balance().Equal(dec("10")))
}

func TestAccount_CloseIsIdempotent(t *testing.T) {
	account := newAccount("ACC1001")
	require.NoError(t, account.Deposit(dec("5")))

	account.Close()
	once := account.Snapshot()
	account.Close()
	twice := account.Snapshot()

	assert.Equal(t, once, twice)
	assert.True(t, account.IsClosed())
}

func TestAccount_Snapshot(t *testing.T) {
	openedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	account := domain.NewAccount("ACC1009", domain.NewCustomer("cust-9", "Nine"), openedAt)
	require.NoError(t, account.Deposit(dec("3.21")))

	v := account.Snapshot()
	assert.Equal(t, "ACC1009", v.Number)
	assert.Equal(t, "cust-9", v.Customer.ID)
	assert.True(t, v.Balance.Equal(dec("3.21")))
	assert.False(t, v.Closed)
	assert.Equal(t, openedAt, v.OpenedAt)
}

func TestAccount_RandomSequenceNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	account := newAccount("ACC1001")

	for i := 0; i < 5000; i++ {
		amount := decimal.New(rng.Int63n(10000), -2)
		if rng.Intn(2) == 0 {
			require.NoError(t, account.Deposit(amount))
		} else {
			before := account.Balance()
			err := account.Withdraw(amount)
			var insufficient *domain.ErrInsufficientFunds
			if err != nil {
				require.True(t, errors.As(err, &insufficient))
				require.True(t, account.Balance().Equal(before))
			}
		}
		require.False(t, account.Balance().IsNegative())
	}
}

func TestAccount_ConcurrentWithdrawsNeverOverdraw(t *testing.T) {
	account := newAccount("ACC1001")
	require.NoError(t, account.Deposit(dec("100")))

	const workers = 200
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if err := account.Withdraw(dec("1")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, succeeded)
	assert.True(t, account.Balance().IsZero())
}

func TestAccount_ConcurrentDepositsNoLostUpdate(t *testing.T) {
	account := newAccount("ACC1001")

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, account.Deposit(dec("0.01")))
		}()
	}
	wg.Wait()

	assert.Equal(t, "1.00", account.Balance().StringFixed(2))
}
