// Package idgen allocates registry identifiers from monotonic counters.
package idgen

import (
	"strconv"
	"sync/atomic"
)

// Default seeds. The first allocated numbers are ACC1001 and CARD5001.
const (
	AccountPrefix = "ACC"
	AccountSeed   = 1000
	CardPrefix    = "CARD"
	CardSeed      = 5000
)

// Sequence is a prefixed, monotonically increasing counter.
// It is safe for concurrent use.
type Sequence struct {
	prefix string
	last   atomic.Int64
}

// NewSequence creates a sequence whose first value is seed+1.
func NewSequence(prefix string, seed int64) *Sequence {
	s := &Sequence{prefix: prefix}
	s.last.Store(seed)
	return s
}

// NewAccountSequence returns the default account number sequence.
func NewAccountSequence() *Sequence {
	return NewSequence(AccountPrefix, AccountSeed)
}

// NewCardSequence returns the default card number sequence.
func NewCardSequence() *Sequence {
	return NewSequence(CardPrefix, CardSeed)
}

// Next returns the next identifier.
func (s *Sequence) Next() string {
	return s.prefix + strconv.FormatInt(s.last.Add(1), 10)
}
