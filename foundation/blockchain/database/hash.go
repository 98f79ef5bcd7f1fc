package database

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HashSize is the number of bytes in a block hash.
const HashSize = 32

// Hash represents a SHA-256 digest.
type Hash [HashSize]byte

// ZeroHash represents the hash of an unsealed block and the previous hash
// of the genesis block.
var ZeroHash Hash

// IsZero reports whether the hash is the all zero sentinel.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// String returns the 0x prefixed hex form of the hash.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(text []byte) error {
	b, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("decoding hash: %w", err)
	}

	if len(b) != HashSize {
		return fmt.Errorf("invalid hash length, got %d, exp %d", len(b), HashSize)
	}

	copy(h[:], b)
	return nil
}
