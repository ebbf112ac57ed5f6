package observability

import (
	"time"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Operation labels.
const (
	OpOpenAccount  = "open_account"
	OpCloseAccount = "close_account"
	OpDeposit      = "deposit"
	OpWithdraw     = "withdraw"
	OpIssueCard    = "issue_card"
	OpSuspendCard  = "suspend_card"
	OpReportStolen = "report_stolen"
	OpPayment      = "payment"
)

// Result labels.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operations       *prometheus.CounterVec
	rejections       *prometheus.CounterVec
	paymentDuration  prometheus.Histogram
	paymentRollbacks prometheus.Counter
	requestDuration  *prometheus.HistogramVec
	externalErrors   *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// ledger metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Ledger operations by kind and result.",
			},
			[]string{"operation", "result"},
		),
		rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_rejections_total",
				Help: "Rejected ledger operations by reason.",
			},
			[]string{"reason"},
		),
		paymentDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_payment_duration_seconds",
				Help:    "Time spent moving funds between two accounts.",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),
		paymentRollbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_payment_rollbacks_total",
				Help: "Payments whose withdrawal was reversed after the deposit failed.",
			},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// TrackRegistry exposes the number of registered accounts and cards as
// gauges read from counts at scrape time. Call it once per Metrics.
func (m *Metrics) TrackRegistry(counts func() (accounts, cards int)) {
	factory := promauto.With(m.Registry)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "ledger_accounts_registered",
			Help: "Accounts held in the registry, open or closed.",
		},
		func() float64 {
			a, _ := counts()
			return float64(a)
		},
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "ledger_cards_registered",
			Help: "Credit cards held in the registry.",
		},
		func() float64 {
			_, c := counts()
			return float64(c)
		},
	)
}

// IncrOperation counts an operation outcome.
func (m *Metrics) IncrOperation(operation, result string) {
	m.operations.WithLabelValues(operation, result).Inc()
}

// IncrRejection counts a rejected operation by reason.
func (m *Metrics) IncrRejection(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

// ObservePayment records how long a payment held its account locks.
func (m *Metrics) ObservePayment(d time.Duration) {
	m.paymentDuration.Observe(d.Seconds())
}

// IncrPaymentRollback counts a compensated payment.
func (m *Metrics) IncrPaymentRollback() {
	m.paymentRollbacks.Inc()
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// Snapshot returns the current counter values for GET /v1/metrics/ledger.
func (m *Metrics) Snapshot() *domain.LedgerMetrics {
	success := func(op string) int64 {
		return int64(getCounterValue(m.operations, op, ResultSuccess))
	}

	var rejected float64
	for _, op := range []string{
		OpOpenAccount, OpCloseAccount, OpDeposit, OpWithdraw,
		OpIssueCard, OpSuspendCard, OpReportStolen, OpPayment,
	} {
		rejected += getCounterValue(m.operations, op, ResultRejected)
	}

	hits := getCounterValue(m.cacheHits, "customer")
	misses := getCounterValue(m.cacheMisses, "customer")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.LedgerMetrics{
		AccountsOpened:       success(OpOpenAccount),
		CardsIssued:          success(OpIssueCard),
		Deposits:             success(OpDeposit),
		Withdrawals:          success(OpWithdraw),
		Payments:             success(OpPayment),
		PaymentsRolledBack:   int64(readCounter(m.paymentRollbacks)),
		RejectedOps:          int64(rejected),
		CustomerCacheHitRate: hitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	return readCounter(cv.WithLabelValues(labels...))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
