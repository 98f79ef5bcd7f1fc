package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// ErrNoCandidate is returned when a candidate block is requested and no
// mining cycle is active.
var ErrNoCandidate = errors.New("no block is being mined")

// =============================================================================

// QueryRecentTransactions returns up to the last n transactions in the
// mempool in pool order, lightest first.
func (s *State) QueryRecentTransactions(n int) []database.Transaction {
	return s.mempool.PeekRecent(n)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryRecentBlocks returns up to the last n sealed blocks in chain order.
// The genesis block is part of the chain.
func (s *State) QueryRecentBlocks(n int) []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	switch {
	case n <= 0:
		start = len(s.blocks)
	case n < len(s.blocks):
		start = len(s.blocks) - n
	}

	out := make([]database.Block, 0, len(s.blocks)-start)
	for _, block := range s.blocks[start:] {
		out = append(out, block.Clone())
	}

	return out
}

// QueryLatestBlock returns a copy of the last block in the chain.
func (s *State) QueryLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blocks[len(s.blocks)-1].Clone()
}

// QueryChainLength returns the number of blocks in the chain including the
// genesis block.
func (s *State) QueryChainLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blocks)
}

// QueryCandidate returns a copy of the block being mined. The boolean is
// false when no mining cycle is active.
func (s *State) QueryCandidate() (database.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.candidate == nil {
		return database.Block{}, false
	}

	return s.candidate.Clone(), true
}

// QueryComplexity returns the complexity the next block will be mined with.
func (s *State) QueryComplexity() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.complexity
}

// QueryGenesis returns a copy of the genesis information.
func (s *State) QueryGenesis() genesis.Genesis {
	return s.genesis
}

// VerifyChain walks the chain checking every block after the genesis block
// is sealed correctly and linked to its predecessor.
func (s *State) VerifyChain() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.blocks[0].IsSealed() || !s.blocks[0].PrevBlockHash.IsZero() {
		return fmt.Errorf("genesis block has been modified")
	}

	for i := 1; i < len(s.blocks); i++ {
		if err := s.blocks[i].ValidateBlock(s.blocks[i-1]); err != nil {
			return fmt.Errorf("blk[%d]: %w", i, err)
		}
	}

	return nil
}
