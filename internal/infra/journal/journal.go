// Package journal keeps an audit trail of completed fund movements.
// In production, this could be backed by an append-only store.
package journal

import (
	"context"
	"sync"

	"github.com/boddenberg/openbanking-ledger-go/internal/domain"

	"go.uber.org/zap"
)

// InMemory is a thread-safe, append-only journal.
type InMemory struct {
	mu      sync.RWMutex
	entries []domain.Transaction
	logger  *zap.Logger
}

// New creates an empty journal. Each record is also written to logger at
// debug level.
func New(logger *zap.Logger) *InMemory {
	return &InMemory{logger: logger}
}

// Record appends tx to the journal.
func (j *InMemory) Record(ctx context.Context, tx domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	j.entries = append(j.entries, tx)
	j.mu.Unlock()

	j.logger.Debug("journal entry recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("kind", tx.Kind),
		zap.String("amount", tx.Amount.String()),
		zap.String("from_account", tx.FromAccount),
		zap.String("to_account", tx.ToAccount),
	)
	return nil
}

// Len returns the number of recorded entries.
func (j *InMemory) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Entries returns a copy of all entries in insertion order.
func (j *InMemory) Entries() []domain.Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]domain.Transaction, len(j.entries))
	copy(out, j.entries)
	return out
}
