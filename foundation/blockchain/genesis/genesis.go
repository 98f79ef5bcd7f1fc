// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time              `json:"date"`
	Complexity    uint16                 `json:"complexity"`      // Number of leading zero bytes needed to solve the hash solution.
	TransPerBlock uint16                 `json:"trans_per_block"` // The maximum number of transactions that can be in a block.
	ProgressEvery uint64                 `json:"progress_every"`  // Progress is reported for every nonce that is a multiple.
	MaxNonce      uint64                 `json:"max_nonce"`       // Last nonce tried before mining gives up. Zero searches the full range.
	Transactions  []database.Transaction `json:"transactions"`    // Transactions scheduled when the chain starts.
}

// Default returns the genesis used when no file is provided. It seeds the
// mempool with eleven transactions weighted 0.0 through 1.0.
func Default() Genesis {
	trans := make([]database.Transaction, 0, 11)
	for i := range 11 {
		trans = append(trans, database.NewTransaction("Initial data", float32(i)/10))
	}

	return Genesis{
		Date:          time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		Complexity:    3,
		TransPerBlock: 10,
		ProgressEvery: 10_000,
		Transactions:  trans,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. An empty path returns the
// default genesis.
func Load(path string) (Genesis, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("genesis %q: %w", path, err)
	}

	return genesis, nil
}

// EndNonce returns the last nonce a mining search tries.
func (g Genesis) EndNonce() uint64 {
	if g.MaxNonce == 0 {
		return database.MaxNonce
	}
	return g.MaxNonce
}

// Validate checks the genesis values can be used to start a chain.
func (g Genesis) Validate() error {
	if g.Complexity > database.HashSize {
		return database.ErrInvalidComplexity
	}

	if g.TransPerBlock == 0 {
		return fmt.Errorf("trans_per_block must be greater than 0")
	}

	for i, tx := range g.Transactions {
		if !tx.IsComparable() {
			return fmt.Errorf("transaction %d has a weight that can't be ordered", i)
		}
	}

	return nil
}
