// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
)

// EventHandler defines a function that is called when events
// occur in the processing of the chain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing background mining support.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start the chain.
type Config struct {
	Genesis        genesis.Genesis
	SelectStrategy string // Empty uses selector.StrategyWeight.
	EvHandler      EventHandler
}

// State manages the blockchain. It owns the sealed blocks, the mempool and
// the single candidate block being mined.
type State struct {
	evHandler EventHandler
	genesis   genesis.Genesis
	mempool   *mempool.Mempool

	// mineMu serializes mining operations so only one search runs against
	// the candidate at a time. It is never held while mu is being waited on.
	mineMu sync.Mutex

	mu         sync.RWMutex
	complexity uint
	blocks     []database.Block
	candidate  *database.Block

	Worker Worker
}

// New constructs a new chain with a genesis block and the genesis seed
// transactions scheduled in the mempool.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("validating genesis: %w", err)
	}

	// Construct a mempool with the specified sort strategy. The weight
	// strategy is used when none is named.
	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = selector.StrategyWeight
	}

	mp, err := mempool.NewWithStrategy(strategy)
	if err != nil {
		return nil, err
	}

	for _, tx := range cfg.Genesis.Transactions {
		if _, err := mp.Schedule(tx); err != nil {
			return nil, fmt.Errorf("scheduling genesis transaction %s: %w", tx, err)
		}
	}

	// The genesis block is never mined, it is the anchor for the first
	// block's previous hash.
	genesisBlock := database.NewGenesisBlock(time.Now())

	state := State{
		evHandler:  ev,
		genesis:    cfg.Genesis,
		mempool:    mp,
		complexity: uint(cfg.Genesis.Complexity),
		blocks:     []database.Block{genesisBlock},
	}

	ev("state: New: chain started: complexity[%d]: seeded txs[%d]", state.complexity, mp.Count())

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the chain down.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started")
	defer s.evHandler("state: Shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// SetComplexity changes the number of leading zero bytes required to seal
// the next block. This allows a search to be retried after exhaustion.
func (s *State) SetComplexity(complexity uint) error {
	if complexity > database.HashSize {
		return database.ErrInvalidComplexity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: SetComplexity: from[%d]: to[%d]", s.complexity, complexity)
	s.complexity = complexity

	return nil
}
