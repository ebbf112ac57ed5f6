package service

import (
	"context"
	"errors"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/port"

	"go.uber.org/zap"
)

// Rejection reasons reported to metrics.
const (
	ReasonInvalidOperation  = "invalid_operation"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonValidation        = "validation"
	ReasonNotFound          = "not_found"
	ReasonOther             = "other"
)

// RejectionReason classifies a failed operation.
func RejectionReason(err error) string {
	var invalid *domain.ErrInvalidOperation
	var insufficient *domain.ErrInsufficientFunds
	var validation *domain.ErrValidation
	var notFound *domain.ErrNotFound

	switch {
	case errors.As(err, &invalid):
		return ReasonInvalidOperation
	case errors.As(err, &insufficient):
		return ReasonInsufficientFunds
	case errors.As(err, &validation):
		return ReasonValidation
	case errors.As(err, &notFound):
		return ReasonNotFound
	default:
		return ReasonOther
	}
}

func observeOutcome(m *observability.Metrics, operation string, err error) {
	if err == nil {
		m.IncrOperation(operation, observability.ResultSuccess)
		return
	}
	m.IncrOperation(operation, observability.ResultRejected)
	m.IncrRejection(RejectionReason(err))
}

// recordTransaction writes tx to the journal. The funds have already moved
// by the time this runs, so caller cancellation is ignored and a journal
// failure is logged, not returned.
func recordTransaction(ctx context.Context, journal port.Journal, logger *zap.Logger, tx domain.Transaction) {
	if err := journal.Record(context.WithoutCancel(ctx), tx); err != nil {
		logger.Error("failed to record transaction",
			zap.String("transaction_id", tx.ID),
			zap.String("kind", tx.Kind),
			zap.Error(err),
		)
	}
}
