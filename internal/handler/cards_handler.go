package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Credit Card Handlers
// ============================================================

func issueCardHandler(bank *service.BankService, customers *service.CustomerDirectory, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards")
		defer span.End()
		start := time.Now()
		defer func() { metrics.RecordRequestDuration(observability.OpIssueCard, time.Since(start)) }()

		var req domain.IssueCardRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !requireOwner(w, r, req.CustomerID, logger) {
			return
		}
		brand, err := domain.ParseCardBrand(req.Brand)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("customer.id", req.CustomerID),
			attribute.String("card.brand", brand.String()),
		)

		customer, err := customers.Resolve(ctx, req.CustomerID, req.CustomerName)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		card := bank.IssueCreditCardWithBrand(ctx, customer, brand)
		writeJSON(w, http.StatusCreated, domain.NewCreditCardAPIResponse(card.Snapshot()))
	}
}

func getCardHandler(bank *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/cards/{cardNumber}")
		defer span.End()

		number := chi.URLParam(r, "cardNumber")
		card, ok := bank.GetCreditCard(number)
		if !ok {
			handleServiceError(w, &domain.ErrNotFound{Resource: "credit card", ID: number}, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewCreditCardAPIResponse(card.Snapshot()))
	}
}

func listCardsHandler(bank *service.BankService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/cards")
		defer span.End()

		cards := bank.ListCreditCards(chi.URLParam(r, "customerId"))
		resp := make([]domain.CreditCardAPIResponse, 0, len(cards))
		for _, c := range cards {
			resp = append(resp, domain.NewCreditCardAPIResponse(c.Snapshot()))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func suspendCardHandler(bank *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards/{cardNumber}/suspend")
		defer span.End()

		card, err := bank.SuspendCreditCardByNumber(ctx, chi.URLParam(r, "cardNumber"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewCreditCardAPIResponse(card.Snapshot()))
	}
}

func reportStolenHandler(bank *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards/{cardNumber}/report-stolen")
		defer span.End()

		card, err := bank.ReportCreditCardStolenByNumber(ctx, chi.URLParam(r, "cardNumber"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewCreditCardAPIResponse(card.Snapshot()))
	}
}
