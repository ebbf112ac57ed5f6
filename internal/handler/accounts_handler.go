package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Accounts Handlers
// ============================================================

func openAccountHandler(bank *service.BankService, customers *service.CustomerDirectory, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts")
		defer span.End()
		start := time.Now()
		defer func() { metrics.RecordRequestDuration(observability.OpOpenAccount, time.Since(start)) }()

		var req domain.OpenAccountRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !requireOwner(w, r, req.CustomerID, logger) {
			return
		}
		span.SetAttributes(attribute.String("customer.id", req.CustomerID))

		customer, err := customers.Resolve(ctx, req.CustomerID, req.CustomerName)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		account := bank.OpenAccount(ctx, customer)
		writeJSON(w, http.StatusCreated, domain.NewAccountAPIResponse(account.Snapshot()))
	}
}

func getAccountHandler(bank *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountNumber}")
		defer span.End()

		number := chi.URLParam(r, "accountNumber")
		account, ok := bank.GetAccount(number)
		if !ok {
			handleServiceError(w, &domain.ErrNotFound{Resource: "account", ID: number}, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewAccountAPIResponse(account.Snapshot()))
	}
}

func listAccountsHandler(bank *service.BankService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/customers/{customerId}/accounts")
		defer span.End()

		accounts := bank.ListAccounts(chi.URLParam(r, "customerId"))
		resp := make([]domain.AccountAPIResponse, 0, len(accounts))
		for _, a := range accounts {
			resp = append(resp, domain.NewAccountAPIResponse(a.Snapshot()))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func depositHandler(bank *service.BankService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts/{accountNumber}/deposit")
		defer span.End()
		start := time.Now()
		defer func() { metrics.RecordRequestDuration(observability.OpDeposit, time.Since(start)) }()

		number, amount, ok := accountAmountRequest(w, r, logger)
		if !ok {
			return
		}
		span.SetAttributes(attribute.String("account.number", number))

		account, err := bank.Deposit(ctx, number, amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewAccountAPIResponse(account.Snapshot()))
	}
}

func withdrawHandler(bank *service.BankService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts/{accountNumber}/withdraw")
		defer span.End()
		start := time.Now()
		defer func() { metrics.RecordRequestDuration(observability.OpWithdraw, time.Since(start)) }()

		number, amount, ok := accountAmountRequest(w, r, logger)
		if !ok {
			return
		}
		span.SetAttributes(attribute.String("account.number", number))

		account, err := bank.Withdraw(ctx, number, amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewAccountAPIResponse(account.Snapshot()))
	}
}

func closeAccountHandler(bank *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts/{accountNumber}/close")
		defer span.End()

		account, err := bank.CloseAccountByNumber(ctx, chi.URLParam(r, "accountNumber"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.NewAccountAPIResponse(account.Snapshot()))
	}
}

// accountAmountRequest reads the account number from the path and the
// amount from the body.
func accountAmountRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, decimal.Decimal, bool) {
	number := chi.URLParam(r, "accountNumber")

	var req domain.AmountRequest
	if !decodeBody(w, r, &req) {
		return "", decimal.Zero, false
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		handleServiceError(w, err, logger)
		return "", decimal.Zero, false
	}
	return number, amount, true
}
