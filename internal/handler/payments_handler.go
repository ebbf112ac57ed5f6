package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Payments: POST /v1/payments
// ============================================================

func paymentHandler(payments *service.PaymentService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/payments")
		defer span.End()
		start := time.Now()
		defer func() { metrics.RecordRequestDuration(observability.OpPayment, time.Since(start)) }()

		var req domain.PaymentRequest
		if !decodeBody(w, r, &req) {
			return
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("payment.from", req.FromAccount),
			attribute.String("payment.to", req.ToAccount),
		)

		// only the payer's owner may move funds out
		if from, ok := payments.Source(req.FromAccount); ok && !requireOwner(w, r, from.Customer().ID, logger) {
			return
		}

		tx, err := payments.MakePaymentByNumber(ctx, req.FromAccount, req.ToAccount, amount, req.Description)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, domain.NewPaymentReceipt(tx))
	}
}
