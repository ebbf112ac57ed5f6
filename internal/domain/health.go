package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
	Accounts int             `json:"accounts"`
	Cards    int             `json:"cards"`
}

// ServiceHealth represents the health of an individual component.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// LedgerMetrics is returned by GET /v1/metrics/ledger.
type LedgerMetrics struct {
	AccountsOpened       int64   `json:"accountsOpened"`
	CardsIssued          int64   `json:"cardsIssued"`
	Deposits             int64   `json:"deposits"`
	Withdrawals          int64   `json:"withdrawals"`
	Payments             int64   `json:"payments"`
	PaymentsRolledBack   int64   `json:"paymentsRolledBack"`
	RejectedOps          int64   `json:"rejectedOperations"`
	CustomerCacheHitRate float64 `json:"customerCacheHitRate"`
}
