// Package port defines the interfaces (ports) for the ledger's collaborators.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
)

// IDAllocator hands out identifiers. Next must never return the same
// value twice for the lifetime of the allocator.
type IDAllocator interface {
	Next() string
}

// CustomerProvider resolves customer references from the identity system.
type CustomerProvider interface {
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)
}

// Journal receives a record of every completed movement of funds.
type Journal interface {
	Record(ctx context.Context, tx domain.Transaction) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
