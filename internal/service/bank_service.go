// Package service provides the business logic layer (use cases).
// BankService is the registry for accounts and credit cards; PaymentService
// moves funds between accounts; CustomerDirectory resolves customer
// references for both.
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var bankTracer = otel.Tracer("service/bank")

// BankService issues accounts and credit cards and is the single lookup
// point for both. Entries are never removed, so a number is never handed
// out twice while the service lives.
type BankService struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	cards    map[string]*domain.CreditCard

	accountIDs port.IDAllocator
	cardIDs    port.IDAllocator
	journal    port.Journal
	metrics    *observability.Metrics
	logger     *zap.Logger

	now     func() time.Time
	newTxID func() string
}

// NewBankService creates a new bank service.
func NewBankService(
	accountIDs port.IDAllocator,
	cardIDs port.IDAllocator,
	journal port.Journal,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BankService {
	return &BankService{
		accounts:   make(map[string]*domain.Account),
		cards:      make(map[string]*domain.CreditCard),
		accountIDs: accountIDs,
		cardIDs:    cardIDs,
		journal:    journal,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		newTxID:    uuid.NewString,
	}
}

// ============================================================
// Accounts
// ============================================================

// OpenAccount registers a new zero-balance account for customer.
func (s *BankService) OpenAccount(ctx context.Context, customer domain.Customer) *domain.Account {
	_, span := bankTracer.Start(ctx, "BankService.OpenAccount")
	defer span.End()

	s.mu.Lock()
	number := s.accountIDs.Next()
	for s.accounts[number] != nil {
		number = s.accountIDs.Next()
	}
	account := domain.NewAccount(number, customer, s.now())
	s.accounts[number] = account
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("customer.id", customer.ID),
		attribute.String("account.number", number),
	)
	s.metrics.IncrOperation(observability.OpOpenAccount, observability.ResultSuccess)
	s.logger.Info("account opened",
		zap.String("account_number", number),
		zap.String("customer_id", customer.ID),
	)
	return account
}

// CloseAccount closes account. It stays registered and queryable.
func (s *BankService) CloseAccount(ctx context.Context, account *domain.Account) {
	_, span := bankTracer.Start(ctx, "BankService.CloseAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.number", account.Number()))

	account.Close()

	s.metrics.IncrOperation(observability.OpCloseAccount, observability.ResultSuccess)
	s.logger.Info("account closed",
		zap.String("account_number", account.Number()),
		zap.String("balance", domain.FormatMoney(account.Balance())),
	)
}

// CloseAccountByNumber closes the account registered under number.
func (s *BankService) CloseAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	account, err := s.requireAccount(number)
	if err != nil {
		s.observe(observability.OpCloseAccount, err)
		return nil, err
	}
	s.CloseAccount(ctx, account)
	return account, nil
}

// GetAccount looks an account up by number. The second result is false
// when the number is unknown.
func (s *BankService) GetAccount(accountNumber string) (*domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountNumber]
	return a, ok
}

// ListAccounts returns the accounts owned by customerID, ordered by number.
func (s *BankService) ListAccounts(customerID string) []*domain.Account {
	s.mu.RLock()
	out := make([]*domain.Account, 0)
	for _, a := range s.accounts {
		if a.Customer().ID == customerID {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out
}

// Deposit adds amount to the account registered under number and records
// the movement in the journal.
func (s *BankService) Deposit(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, error) {
	ctx, span := bankTracer.Start(ctx, "BankService.Deposit")
	defer span.End()
	span.SetAttributes(attribute.String("account.number", number), attribute.String("amount", amount.String()))

	account, err := s.requireAccount(number)
	if err == nil {
		err = account.Deposit(amount)
	}
	s.observe(observability.OpDeposit, err)
	if err != nil {
		s.logger.Debug("deposit rejected", zap.String("account_number", number), zap.Error(err))
		return nil, err
	}

	s.record(ctx, domain.TxDeposit, amount, "deposit", "", number)
	return account, nil
}

// Withdraw removes amount from the account registered under number and
// records the movement in the journal.
func (s *BankService) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, error) {
	ctx, span := bankTracer.Start(ctx, "BankService.Withdraw")
	defer span.End()
	span.SetAttributes(attribute.String("account.number", number), attribute.String("amount", amount.String()))

	account, err := s.requireAccount(number)
	if err == nil {
		err = account.Withdraw(amount)
	}
	s.observe(observability.OpWithdraw, err)
	if err != nil {
		s.logger.Debug("withdraw rejected", zap.String("account_number", number), zap.Error(err))
		return nil, err
	}

	s.record(ctx, domain.TxWithdrawal, amount, "withdrawal", number, "")
	return account, nil
}

func (s *BankService) requireAccount(number string) (*domain.Account, error) {
	a, ok := s.GetAccount(number)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "account", ID: number}
	}
	return a, nil
}

// ============================================================
// Credit Cards
// ============================================================

// IssueCreditCard registers a new active Visa card for customer.
func (s *BankService) IssueCreditCard(ctx context.Context, customer domain.Customer) *domain.CreditCard {
	return s.IssueCreditCardWithBrand(ctx, customer, domain.BrandVisa)
}

// IssueCreditCardWithBrand registers a new active card on the given brand.
func (s *BankService) IssueCreditCardWithBrand(ctx context.Context, customer domain.Customer, brand domain.CardBrand) *domain.CreditCard {
	_, span := bankTracer.Start(ctx, "BankService.IssueCreditCard")
	defer span.End()

	s.mu.Lock()
	number := s.cardIDs.Next()
	for s.cards[number] != nil {
		number = s.cardIDs.Next()
	}
	card := domain.NewCreditCard(number, customer, brand, s.now())
	s.cards[number] = card
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("customer.id", customer.ID),
		attribute.String("card.number", number),
		attribute.String("card.brand", brand.String()),
	)
	s.metrics.IncrOperation(observability.OpIssueCard, observability.ResultSuccess)
	s.logger.Info("credit card issued",
		zap.String("card_number", number),
		zap.String("customer_id", customer.ID),
		zap.String("brand", brand.String()),
	)
	return card
}

// SuspendCreditCard deactivates card.
func (s *BankService) SuspendCreditCard(ctx context.Context, card *domain.CreditCard) {
	_, span := bankTracer.Start(ctx, "BankService.SuspendCreditCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.number", card.Number()))

	card.Suspend()

	s.metrics.IncrOperation(observability.OpSuspendCard, observability.ResultSuccess)
	s.logger.Info("credit card suspended", zap.String("card_number", card.Number()))
}

// ReportCreditCardStolen flags card stolen. This cannot be undone.
func (s *BankService) ReportCreditCardStolen(ctx context.Context, card *domain.CreditCard) {
	_, span := bankTracer.Start(ctx, "BankService.ReportCreditCardStolen")
	defer span.End()
	span.SetAttributes(attribute.String("card.number", card.Number()))

	card.ReportStolen()

	s.metrics.IncrOperation(observability.OpReportStolen, observability.ResultSuccess)
	s.logger.Warn("credit card reported stolen",
		zap.String("card_number", card.Number()),
		zap.String("customer_id", card.Owner().ID),
	)
}

// SuspendCreditCardByNumber suspends the card registered under number.
func (s *BankService) SuspendCreditCardByNumber(ctx context.Context, number string) (*domain.CreditCard, error) {
	card, err := s.requireCard(number)
	if err != nil {
		s.observe(observability.OpSuspendCard, err)
		return nil, err
	}
	s.SuspendCreditCard(ctx, card)
	return card, nil
}

// ReportCreditCardStolenByNumber reports the card registered under number stolen.
func (s *BankService) ReportCreditCardStolenByNumber(ctx context.Context, number string) (*domain.CreditCard, error) {
	card, err := s.requireCard(number)
	if err != nil {
		s.observe(observability.OpReportStolen, err)
		return nil, err
	}
	s.ReportCreditCardStolen(ctx, card)
	return card, nil
}

// GetCreditCard looks a card up by number. The second result is false
// when the number is unknown.
func (s *BankService) GetCreditCard(cardNumber string) (*domain.CreditCard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[cardNumber]
	return c, ok
}

// ListCreditCards returns the cards owned by customerID, ordered by number.
func (s *BankService) ListCreditCards(customerID string) []*domain.CreditCard {
	s.mu.RLock()
	out := make([]*domain.CreditCard, 0)
	for _, c := range s.cards {
		if c.Owner().ID == customerID {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out
}

func (s *BankService) requireCard(number string) (*domain.CreditCard, error) {
	c, ok := s.GetCreditCard(number)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "credit card", ID: number}
	}
	return c, nil
}

// ============================================================
// Helpers
// ============================================================

// Counts returns how many accounts and cards are registered.
func (s *BankService) Counts() (accounts, cards int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), len(s.cards)
}

func (s *BankService) observe(operation string, err error) {
	observeOutcome(s.metrics, operation, err)
}

// record journals a completed movement. Zero amounts move nothing and are
// not journaled.
func (s *BankService) record(ctx context.Context, kind string, amount decimal.Decimal, description, from, to string) {
	if !amount.IsPositive() {
		return
	}
	tx, err := domain.NewTransaction(s.newTxID(), kind, amount, description, s.now())
	if err != nil {
		s.logger.Error("failed to build journal entry", zap.String("kind", kind), zap.Error(err))
		return
	}
	recordTransaction(ctx, s.journal, s.logger, tx.Between(from, to))
}
