// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"slices"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
)

// Mempool represents the set of pending transactions kept in the order
// defined by the select strategy. The transactions to mine first are at
// the tail of the pool.
type Mempool struct {
	pool     []database.Transaction
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default sort strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyWeight)
}

// NewWithStrategy constructs a new mempool with specified sort strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     []database.Transaction{},
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Schedule adds a transaction to the pool and restores the pool order. If
// the transaction can't be ordered the pool is left unchanged and the error
// from the select strategy is returned.
func (mp *Mempool) Schedule(tx database.Transaction) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	pool := append(slices.Clone(mp.pool), tx)
	if err := mp.selectFn(pool); err != nil {
		return len(mp.pool), err
	}

	mp.pool = pool

	return len(mp.pool), nil
}

// PeekRecent returns a copy of the last howMany transactions in pool order.
// If howMany is larger than the pool, the whole pool is returned.
func (mp *Mempool) PeekRecent(howMany int) []database.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return slices.Clone(tail(mp.pool, howMany))
}

// Drain removes the last howMany transactions from the pool and returns
// them in pool order. If fewer are pending, the pool is emptied.
func (mp *Mempool) Drain(howMany int) []database.Transaction {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := slices.Clone(tail(mp.pool, howMany))
	mp.pool = slices.Clone(mp.pool[:len(mp.pool)-len(trans)])

	return trans
}

// Copy returns a copy of all the transactions in pool order.
func (mp *Mempool) Copy() []database.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return slices.Clone(mp.pool)
}

// =============================================================================

// tail returns the last n elements of the slice. A negative n returns
// nothing.
func tail(trans []database.Transaction, n int) []database.Transaction {
	switch {
	case n <= 0:
		return trans[len(trans):]
	case n >= len(trans):
		return trans
	}

	return trans[len(trans)-n:]
}
