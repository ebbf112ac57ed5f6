package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Error types for consistent error handling across the ledger.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrInvalidOperation indicates a structurally disallowed state transition,
// such as mutating a closed account.
type ErrInvalidOperation struct {
	Operation string
	Reason    string
}

func (e *ErrInvalidOperation) Error() string {
	return fmt.Sprintf("invalid operation [%s]: %s", e.Operation, e.Reason)
}

// ErrInsufficientFunds indicates not enough balance for the operation.
type ErrInsufficientFunds struct {
	Account   string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds on %s: available=%s required=%s",
		e.Account, FormatMoney(e.Available), FormatMoney(e.Required))
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates an authenticated customer acting on an entity
// owned by someone else.
type ErrForbidden struct {
	CustomerID string
	OwnerID    string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("customer %s may not act for customer %s", e.CustomerID, e.OwnerID)
}
