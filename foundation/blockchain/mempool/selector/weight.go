package selector

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// weightSort orders the transactions by ascending weight. Transactions with
// the same weight keep the order they were scheduled in.
var weightSort = func(trans []database.Transaction) error {
	for i, tx := range trans {
		if !tx.IsComparable() {
			return fmt.Errorf("tx[%d] %s: %w", i, tx, ErrNotComparable)
		}
	}

	sort.Stable(byWeight(trans))

	return nil
}
