// Package selector provides the ordering policies used to keep the mempool
// sorted.
package selector

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyWeight = "weight"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyWeight: weightSort,
}

// ErrNotComparable is returned when a transaction weight can't be ordered,
// such as a NaN weight.
var ErrNotComparable = errors.New("transaction weight is not comparable")

// Func defines a function that takes the transactions in the mempool and
// orders them in place so the transactions to be mined first are at the end
// of the slice. If any transaction can't be ordered the function must return
// an error and leave the slice untouched.
type Func func(trans []database.Transaction) error

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// byWeight provides sorting support by the transaction weight value.
type byWeight []database.Transaction

// Len returns the number of transactions in the list.
func (bw byWeight) Len() int {
	return len(bw)
}

// Less helps to sort the list by weight in ascending order so the
// heaviest transactions end up at the tail.
func (bw byWeight) Less(i, j int) bool {
	return bw[i].Weight < bw[j].Weight
}

// Swap moves transactions in the order of the weight value.
func (bw byWeight) Swap(i, j int) {
	bw[i], bw[j] = bw[j], bw[i]
}
