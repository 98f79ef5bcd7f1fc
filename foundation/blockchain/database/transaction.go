package database

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Transaction is the unit of pending work that is batched into a block. The
// weight is the priority used by the mempool to decide which transactions
// are mined first. Weights are expected to be in the range [0.0, 1.0] but
// that is enforced at the edges of the system, not here.
type Transaction struct {
	Data   string  `json:"data"`
	Weight float32 `json:"weight"`
}

// NewTransaction constructs a new transaction.
func NewTransaction(data string, weight float32) Transaction {
	return Transaction{
		Data:   data,
		Weight: weight,
	}
}

// IsComparable reports whether the weight can be ordered against other
// weights. A NaN weight can't be sorted.
func (tx Transaction) IsComparable() bool {
	return !math.IsNaN(float64(tx.Weight))
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("%q:%g", tx.Data, tx.Weight)
}

// appendBytes appends the payload bytes followed by the big endian encoding
// of the weight. This is the transaction's contribution to a block preimage.
func (tx Transaction) appendBytes(buf []byte) []byte {
	buf = append(buf, tx.Data...)
	return binary.BigEndian.AppendUint32(buf, math.Float32bits(tx.Weight))
}
