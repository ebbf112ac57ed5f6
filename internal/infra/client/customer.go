package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// CustomerClient resolves customer references from the external customer API.
type CustomerClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
}

// NewCustomerClient creates a new CustomerClient.
func NewCustomerClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *CustomerClient {
	return &CustomerClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
	}
}

type customerPayload struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
}

// IsCustomerNotFound reports whether err is the provider's answer for an
// unknown customer. Pass it to resilience.NewCircuitBreaker so lookups of
// unknown ids never open the breaker for everyone else.
func IsCustomerNotFound(err error) bool {
	var notFound *domain.ErrNotFound
	return errors.As(err, &notFound)
}

// GetCustomer fetches a customer with retry, circuit breaker, bulkhead, and tracing.
// An unknown customer yields *domain.ErrNotFound and is not retried.
func (c *CustomerClient) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CustomerClient.GetCustomer")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	result, err := c.cb.Execute(func() (any, error) {
		var payload customerPayload
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			endpoint := fmt.Sprintf("%s/v1/customers/%s", c.baseURL, url.PathEscape(customerID))
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return resilience.Permanent(err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return resilience.Permanent(&domain.ErrNotFound{Resource: "customer", ID: customerID})
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("customer API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&payload)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &payload, nil
	})
	if err != nil {
		if IsCustomerNotFound(err) {
			return nil, err
		}
		return nil, &domain.ErrExternalService{Service: "customers", Err: err}
	}

	p := result.(*customerPayload)
	if p.CustomerID == "" {
		p.CustomerID = customerID
	}
	return &domain.Customer{ID: p.CustomerID, Name: p.Name}, nil
}
