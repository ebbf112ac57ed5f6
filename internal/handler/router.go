package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups the use cases exposed over HTTP. Tokens may be nil, in
// which case mutating routes are not authenticated.
type Services struct {
	Bank      *service.BankService
	Payments  *service.PaymentService
	Customers *service.CustomerDirectory
	Tokens    *service.TokenService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Bank))
	r.Get("/readyz", readyzHandler(svc.Bank))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/ledger", ledgerMetricsHandler(metrics))

		// Reads
		r.Get("/accounts/{accountNumber}", getAccountHandler(svc.Bank, logger))
		r.Get("/customers/{customerId}/accounts", listAccountsHandler(svc.Bank))
		r.Get("/cards/{cardNumber}", getCardHandler(svc.Bank, logger))
		r.Get("/customers/{customerId}/cards", listCardsHandler(svc.Bank))

		// Writes
		r.Group(func(r chi.Router) {
			if svc.Tokens != nil {
				r.Use(JWTAuthMiddleware(svc.Tokens, logger))
			}

			r.Post("/accounts", openAccountHandler(svc.Bank, svc.Customers, metrics, logger))
			accountOwner := r.With(AccountOwnerMiddleware(svc.Bank, logger))
			accountOwner.Post("/accounts/{accountNumber}/deposit", depositHandler(svc.Bank, metrics, logger))
			accountOwner.Post("/accounts/{accountNumber}/withdraw", withdrawHandler(svc.Bank, metrics, logger))
			accountOwner.Post("/accounts/{accountNumber}/close", closeAccountHandler(svc.Bank, logger))

			r.Post("/cards", issueCardHandler(svc.Bank, svc.Customers, metrics, logger))
			cardOwner := r.With(CardOwnerMiddleware(svc.Bank, logger))
			cardOwner.Post("/cards/{cardNumber}/suspend", suspendCardHandler(svc.Bank, logger))
			cardOwner.Post("/cards/{cardNumber}/report-stolen", reportStolenHandler(svc.Bank, logger))

			r.Post("/payments", paymentHandler(svc.Payments, metrics, logger))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(bank *service.BankService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := domain.HealthStatus{
			Status: "healthy",
			Services: []domain.ServiceHealth{
				{Name: "ledger-api", Status: "healthy", LastChecked: time.Now().Format(time.RFC3339)},
			},
		}
		if bank != nil {
			status.Accounts, status.Cards = bank.Counts()
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func readyzHandler(bank *service.BankService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bank == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
		accounts, cards := bank.Counts()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ready",
			"accounts": accounts,
			"cards":    cards,
		})
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
