// Package domain defines the core ledger entities: accounts, credit cards,
// transfers and the audit records they produce. These types hold their own
// invariants and locking and know nothing about transport or storage.
package domain

import "time"

// ============================================================
// API request/response bodies
// ============================================================

// OpenAccountRequest is the body for POST /v1/accounts.
type OpenAccountRequest struct {
	CustomerID   string `json:"customer_id" validate:"required,max=64"`
	CustomerName string `json:"customer_name,omitempty" validate:"max=120"`
}

// AmountRequest is the body for deposit and withdraw calls.
// Amounts travel as decimal strings ("100.00") to avoid float rounding.
type AmountRequest struct {
	Amount string `json:"amount" validate:"required,numeric,startsnotwith=-"`
}

// AccountAPIResponse is returned by the account endpoints.
type AccountAPIResponse struct {
	AccountNumber string `json:"accountNumber"`
	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName"`
	Balance       string `json:"balance"`
	Closed        bool   `json:"closed"`
	OpenedAt      string `json:"openedAt"`
}

// NewAccountAPIResponse renders an account view for the API.
func NewAccountAPIResponse(v AccountView) AccountAPIResponse {
	return AccountAPIResponse{
		AccountNumber: v.Number,
		CustomerID:    v.Customer.ID,
		CustomerName:  v.Customer.Name,
		Balance:       FormatMoney(v.Balance),
		Closed:        v.Closed,
		OpenedAt:      v.OpenedAt.Format(time.RFC3339),
	}
}

// IssueCardRequest is the body for POST /v1/cards.
type IssueCardRequest struct {
	CustomerID   string `json:"customer_id" validate:"required,max=64"`
	CustomerName string `json:"customer_name,omitempty" validate:"max=120"`
	Brand        string `json:"brand,omitempty"` // Visa, Mastercard, Bitcoin, Ethereum, Sui
}

// CreditCardAPIResponse is returned by the card endpoints.
type CreditCardAPIResponse struct {
	CardNumber string `json:"cardNumber"`
	CustomerID string `json:"customerId"`
	OwnerName  string `json:"ownerName"`
	Brand      string `json:"brand"`
	Status     string `json:"status"`
	Active     bool   `json:"active"`
	Stolen     bool   `json:"stolen"`
	IssuedAt   string `json:"issuedAt"`
}

// NewCreditCardAPIResponse renders a card view for the API.
func NewCreditCardAPIResponse(v CreditCardView) CreditCardAPIResponse {
	return CreditCardAPIResponse{
		CardNumber: v.Number,
		CustomerID: v.Owner.ID,
		OwnerName:  v.Owner.Name,
		Brand:      v.Brand.String(),
		Status:     v.Status,
		Active:     v.Active,
		Stolen:     v.Stolen,
		IssuedAt:   v.IssuedAt.Format(time.RFC3339),
	}
}

// PaymentRequest is the body for POST /v1/payments.
type PaymentRequest struct {
	FromAccount string `json:"from_account" validate:"required"`
	ToAccount   string `json:"to_account" validate:"required"`
	Amount      string `json:"amount" validate:"required,numeric,startsnotwith=-"`
	Description string `json:"description,omitempty" validate:"max=140"`
}

// PaymentReceipt is returned after a successful payment.
type PaymentReceipt struct {
	TransactionID string `json:"transactionId"`
	FromAccount   string `json:"fromAccount"`
	ToAccount     string `json:"toAccount"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	Timestamp     string `json:"timestamp"`
}

// NewPaymentReceipt renders a payment transaction for the API.
func NewPaymentReceipt(tx Transaction) PaymentReceipt {
	return PaymentReceipt{
		TransactionID: tx.ID,
		FromAccount:   tx.FromAccount,
		ToAccount:     tx.ToAccount,
		Amount:        FormatMoney(tx.Amount),
		Description:   tx.Description,
		Timestamp:     tx.Timestamp.Format(time.RFC3339),
	}
}
