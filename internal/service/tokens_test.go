package service_test

import (
	"testing"
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := service.NewTokenService("secret", time.Minute)

	token, err := svc.Sign("cust-1")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cust-1", claims.Sub)
	assert.Equal(t, "access", claims.Type)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := service.NewTokenService("secret", time.Minute)

	other, err := service.NewTokenService("other-secret", time.Minute).Sign("cust-1")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.AccessClaims{
		Sub:  "cust-1",
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.AccessClaims{
		Sub:  "cust-1",
		Type: "refresh",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, service.AccessClaims{
		Sub:  "cust-1",
		Type: "access",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": other,
		"expired":      expired,
		"wrong type":   refresh,
		"alg none":     unsigned,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(token)
			var unauthorized *domain.ErrUnauthorized
			assert.ErrorAs(t, err, &unauthorized)
		})
	}
}
