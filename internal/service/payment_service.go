package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var paymentTracer = otel.Tracer("service/payment")

// PaymentService moves funds between two accounts as one logical step.
// Failed payments are reported to the caller and never retried.
type PaymentService struct {
	bank    *BankService
	journal port.Journal
	metrics *observability.Metrics
	logger  *zap.Logger

	now     func() time.Time
	newTxID func() string
}

// NewPaymentService creates a new payment service.
func NewPaymentService(bank *BankService, journal port.Journal, metrics *observability.Metrics, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		bank:    bank,
		journal: journal,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		newTxID: uuid.NewString,
	}
}

// MakePayment withdraws amount from `from` and deposits it into `to`.
//
// If the withdrawal fails neither account changes. If the deposit fails the
// withdrawal is reversed before the error is returned. Paying an account
// from itself leaves its balance unchanged but is rejected under the same
// conditions as any other payment.
func (p *PaymentService) MakePayment(ctx context.Context, from, to *domain.Account, amount decimal.Decimal, description string) (domain.Transaction, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.MakePayment")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.from", from.Number()),
		attribute.String("payment.to", to.Number()),
		attribute.String("payment.amount", amount.String()),
	)

	start := time.Now()
	err := domain.Transfer(from, to, amount)
	p.metrics.ObservePayment(time.Since(start))
	observeOutcome(p.metrics, observability.OpPayment, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment rejected")

		var transferErr *domain.TransferError
		if errors.As(err, &transferErr) && transferErr.RolledBack {
			p.metrics.IncrPaymentRollback()
			p.logger.Warn("payment rolled back",
				zap.String("from_account", from.Number()),
				zap.String("to_account", to.Number()),
				zap.String("amount", domain.FormatMoney(amount)),
				zap.Error(err),
			)
		} else {
			p.logger.Info("payment rejected",
				zap.String("from_account", from.Number()),
				zap.String("to_account", to.Number()),
				zap.String("reason", RejectionReason(err)),
			)
		}
		return domain.Transaction{}, err
	}

	if description == "" {
		description = fmt.Sprintf("payment %s -> %s", from.Number(), to.Number())
	}
	tx, err := domain.NewTransaction(p.newTxID(), domain.TxPayment, amount, description, p.now())
	if err != nil {
		// amount was validated by Transfer; only a broken id source lands here
		p.logger.Error("failed to build payment record", zap.Error(err))
		return domain.Transaction{}, err
	}
	tx = tx.Between(from.Number(), to.Number())
	recordTransaction(ctx, p.journal, p.logger, tx)

	span.SetAttributes(attribute.String("transaction.id", tx.ID))
	p.logger.Info("payment completed",
		zap.String("transaction_id", tx.ID),
		zap.String("from_account", from.Number()),
		zap.String("to_account", to.Number()),
		zap.String("amount", domain.FormatMoney(amount)),
	)
	return tx, nil
}

// Source looks up a paying account by number.
func (p *PaymentService) Source(number string) (*domain.Account, bool) {
	return p.bank.GetAccount(number)
}

// MakePaymentByNumber resolves both accounts in the registry and pays
// between them. An unknown number yields *domain.ErrNotFound.
func (p *PaymentService) MakePaymentByNumber(ctx context.Context, fromNumber, toNumber string, amount decimal.Decimal, description string) (domain.Transaction, error) {
	from, err := p.bank.requireAccount(fromNumber)
	if err != nil {
		observeOutcome(p.metrics, observability.OpPayment, err)
		return domain.Transaction{}, err
	}
	to, err := p.bank.requireAccount(toNumber)
	if err != nil {
		observeOutcome(p.metrics, observability.OpPayment, err)
		return domain.Transaction{}, err
	}
	return p.MakePayment(ctx, from, to, amount, description)
}
