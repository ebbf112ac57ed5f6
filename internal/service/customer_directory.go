package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CustomerDirectory turns a customer id into a customer reference.
//
// With a provider configured the id is looked up (through the cache) and
// the caller-supplied name is ignored. Without one the ledger trusts the
// caller and builds the reference from the id and name it was given.
type CustomerDirectory struct {
	provider port.CustomerProvider
	cache    port.Cache[*domain.Customer]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewCustomerDirectory creates a directory. provider may be nil.
func NewCustomerDirectory(provider port.CustomerProvider, cache port.Cache[*domain.Customer], metrics *observability.Metrics, logger *zap.Logger) *CustomerDirectory {
	return &CustomerDirectory{provider: provider, cache: cache, metrics: metrics, logger: logger}
}

// Resolve returns the customer reference for customerID.
func (d *CustomerDirectory) Resolve(ctx context.Context, customerID, name string) (domain.Customer, error) {
	ctx, span := bankTracer.Start(ctx, "CustomerDirectory.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	if customerID == "" {
		return domain.Customer{}, &domain.ErrValidation{Field: "customer_id", Message: "required"}
	}

	if d.provider == nil {
		if name == "" {
			return domain.Customer{}, &domain.ErrValidation{Field: "customer_name", Message: "required"}
		}
		return domain.NewCustomer(customerID, name), nil
	}

	cacheKey := "customer:" + customerID
	if c, ok := d.cache.Get(cacheKey); ok {
		d.metrics.IncrCacheHit("customer")
		return *c, nil
	}
	d.metrics.IncrCacheMiss("customer")

	c, err := d.provider.GetCustomer(ctx, customerID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return domain.Customer{}, err
		}
		d.metrics.IncrExternalError("customers")
		d.logger.Error("failed to resolve customer",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return domain.Customer{}, fmt.Errorf("customer lookup: %w", err)
	}

	d.cache.Set(cacheKey, c)
	return *c, nil
}
