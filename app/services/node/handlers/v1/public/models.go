package public

import (
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// SubmitTx is the payload for a new transaction.
type SubmitTx struct {
	Data   string   `json:"data" validate:"required"`
	Weight *float32 `json:"weight" validate:"required,gte=0,lte=1"`
}

// Tx is the view of a transaction.
type Tx struct {
	Data   string  `json:"data"`
	Weight float32 `json:"weight"`
}

// Block is the view of a sealed or candidate block.
type Block struct {
	Number        uint64        `json:"number"`
	TimeStamp     uint64        `json:"timestamp"`
	Time          time.Time     `json:"time"`
	Hash          database.Hash `json:"hash"`
	PrevBlockHash database.Hash `json:"prev_block_hash"`
	Nonce         uint64        `json:"nonce"`
	Complexity    uint          `json:"complexity"`
	Sealed        bool          `json:"sealed"`
	Trans         []Tx          `json:"trans"`
}

// =============================================================================

func toTxs(trans []database.Transaction) []Tx {
	txs := make([]Tx, len(trans))
	for i, tx := range trans {
		txs[i] = Tx{
			Data:   tx.Data,
			Weight: tx.Weight,
		}
	}
	return txs
}

func toBlock(block database.Block) Block {
	return Block{
		Number:        block.Number,
		TimeStamp:     uint64(block.TimeStamp.Unix()),
		Time:          block.TimeStamp.UTC(),
		Hash:          block.Hash,
		PrevBlockHash: block.PrevBlockHash,
		Nonce:         block.Nonce,
		Complexity:    block.Complexity,
		Sealed:        block.IsSealed(),
		Trans:         toTxs(block.Trans),
	}
}
