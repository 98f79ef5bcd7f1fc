package state

import "github.com/ardanlabs/powledger/foundation/blockchain/database"

// SubmitTransaction accepts a transaction for inclusion in a future block.
// The only failure is a weight that can't be ordered against the pool.
func (s *State) SubmitTransaction(tx database.Transaction) error {
	n, err := s.mempool.Schedule(tx)
	if err != nil {
		s.evHandler("state: SubmitTransaction: REJECTED: tx[%s]: %s", tx, err)
		return err
	}

	s.evHandler("state: SubmitTransaction: tx[%s]: mempool[%d]", tx, n)

	return nil
}
