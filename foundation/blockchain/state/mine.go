package state

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// GetOrCreateCandidate returns the block currently being mined. If there is
// no candidate, the heaviest transactions are drained from the mempool into
// a new candidate linked to the latest sealed block. Calling this again
// before the candidate is sealed returns the same candidate.
func (s *State) GetOrCreateCandidate() database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.candidate != nil {
		return s.candidate.Clone()
	}

	trans := s.mempool.Drain(int(s.genesis.TransPerBlock))
	latest := s.blocks[len(s.blocks)-1]

	candidate := database.NewBlock(latest, trans, time.Now())
	s.candidate = &candidate

	s.evHandler("state: GetOrCreateCandidate: new candidate: blk[%d]: prevBlk[%s]: txs[%d]: mempool[%d]", candidate.Number, latest.Hash, len(trans), s.mempool.Count())

	return candidate.Clone()
}

// ConfirmPending mines the candidate block and on success appends it to the
// chain and clears the candidate. The returned block carries its number in
// the chain. On failure, including ErrMiningExhausted
// and cancellation, the candidate is left intact for a retry.
func (s *State) ConfirmPending(ctx context.Context) (database.Block, error) {
	s.mineMu.Lock()
	defer s.mineMu.Unlock()

	s.evHandler("state: ConfirmPending: MINING: started")
	defer s.evHandler("state: ConfirmPending: MINING: completed")

	candidate := s.GetOrCreateCandidate()

	s.mu.RLock()
	complexity := s.complexity
	s.mu.RUnlock()

	args := database.POWArgs{
		Complexity:    complexity,
		StartNonce:    0,
		EndNonce:      s.genesis.EndNonce(),
		ProgressEvery: s.genesis.ProgressEvery,
		EvHandler:     s.evHandler,
	}

	sealed, err := database.POW(ctx, candidate, args)
	if err != nil {
		if ctx.Err() != nil {
			return database.Block{}, ctx.Err()
		}
		return database.Block{}, fmt.Errorf("mining candidate: %w", err)
	}

	if err := s.appendBlock(sealed); err != nil {
		return database.Block{}, err
	}

	return sealed.Clone(), nil
}

// =============================================================================

// appendBlock validates the sealed block against the latest block, moves it
// into the chain and clears the candidate slot.
func (s *State) appendBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.blocks[len(s.blocks)-1]
	if err := block.ValidateBlock(latest); err != nil {
		s.evHandler("state: appendBlock: ERROR: %s", err)
		return fmt.Errorf("validating block: %w", err)
	}

	s.blocks = append(s.blocks, block)
	s.candidate = nil

	s.evHandler("state: appendBlock: blk[%d]: hash[%s]: txs[%d]", block.Number, block.Hash, len(block.Trans))

	return nil
}
