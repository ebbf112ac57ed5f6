package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const customerIDKey contextKey = "customerID"

// JWTAuthMiddleware resolves the bearer token to a customer and stores the
// customer ID in the request context. Failures are answered as 401.
func JWTAuthMiddleware(tokens *service.TokenService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customerID, err := authenticate(r, tokens)
			if err != nil {
				logger.Warn("auth: request rejected",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), customerIDKey, customerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate returns the token subject. Every error is a
// *domain.ErrUnauthorized.
func authenticate(r *http.Request, tokens *service.TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", &domain.ErrUnauthorized{Message: "missing bearer token"}
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", &domain.ErrUnauthorized{Message: "invalid authorization header"}
	}

	claims, err := tokens.ValidateAccessToken(token)
	if err != nil {
		return "", err
	}
	return claims.Sub, nil
}

// CustomerIDFromContext extracts the authenticated customer ID from context.
func CustomerIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(customerIDKey).(string)
	return v
}

// ============================================================
// Ownership
// ============================================================

// authorizeOwner checks that the authenticated customer, if any, is the
// owner of the ledger entity being touched.
func authorizeOwner(ctx context.Context, ownerID string) error {
	sub := CustomerIDFromContext(ctx)
	if sub == "" || sub == ownerID {
		return nil
	}
	return &domain.ErrForbidden{CustomerID: sub, OwnerID: ownerID}
}

// requireOwner answers 403 and returns false when the token belongs to a
// different customer than ownerID.
func requireOwner(w http.ResponseWriter, r *http.Request, ownerID string, logger *zap.Logger) bool {
	if err := authorizeOwner(r.Context(), ownerID); err != nil {
		handleServiceError(w, err, logger)
		return false
	}
	return true
}

// AccountOwnerMiddleware guards /accounts/{accountNumber} writes. Unknown
// accounts pass through so the handler can answer 404.
func AccountOwnerMiddleware(bank *service.BankService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if account, ok := bank.GetAccount(chi.URLParam(r, "accountNumber")); ok &&
				!requireOwner(w, r, account.Customer().ID, logger) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CardOwnerMiddleware guards /cards/{cardNumber} writes.
func CardOwnerMiddleware(bank *service.BankService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if card, ok := bank.GetCreditCard(chi.URLParam(r, "cardNumber")); ok &&
				!requireOwner(w, r, card.Owner().ID, logger) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
