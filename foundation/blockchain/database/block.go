package database

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

// MaxNonce is the last nonce tried before a search is considered exhausted.
const MaxNonce = math.MaxUint64

// Set of error variables for mining and validating blocks.
var (
	ErrMiningExhausted   = errors.New("nonce range exhausted without a solution")
	ErrInvalidComplexity = fmt.Errorf("complexity must be between 0 and %d", HashSize)
)

// =============================================================================

// Block represents a group of transactions batched together. A block is a
// candidate until a nonce is found and the hash is set. From then on it is
// sealed and must never change.
type Block struct {
	Number        uint64        // Position in the chain, the genesis block is 0.
	TimeStamp     time.Time     // Time the block was assembled.
	Hash          Hash          // Zero until the block is sealed.
	PrevBlockHash Hash          // Hash of the previous block, zero for the genesis block.
	Trans         []Transaction // Transactions in the order they were drained from the mempool.
	Nonce         uint64        // Value identified to solve the hash solution.
	Complexity    uint          // Number of leading zero bytes the hash was solved for.
}

// NewBlock constructs a candidate block that follows the specified
// previous block.
func NewBlock(prevBlock Block, trans []Transaction, now time.Time) Block {
	return Block{
		Number:        prevBlock.Number + 1,
		TimeStamp:     now,
		PrevBlockHash: prevBlock.Hash,
		Trans:         trans,
	}
}

// NewGenesisBlock constructs the first block of a chain. It carries no
// transactions and is never mined.
func NewGenesisBlock(now time.Time) Block {
	return Block{
		TimeStamp: now,
		Trans:     []Transaction{},
	}
}

// IsSealed reports whether a nonce has been found for this block.
func (b Block) IsSealed() bool {
	return !b.Hash.IsZero()
}

// Clone returns a copy of the block that doesn't share the transaction
// slice with the original.
func (b Block) Clone() Block {
	b.Trans = slices.Clone(b.Trans)
	if b.Trans == nil {
		b.Trans = []Transaction{}
	}
	return b
}

// Preimage returns the deterministic set of bytes that is hashed together
// with a nonce: the previous hash, the big endian timestamp in seconds and
// then every transaction in order.
func (b Block) Preimage() []byte {
	buf := make([]byte, 0, HashSize+8+len(b.Trans)*16)
	buf = append(buf, b.PrevBlockHash[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(b.TimeStamp.Unix()))

	for _, tx := range b.Trans {
		buf = tx.appendBytes(buf)
	}

	return buf
}

// ComputeHash returns the hash of the block for the specified nonce.
func (b Block) ComputeHash(nonce uint64) Hash {
	h := newHasher(b.Preimage())
	return h.sum(nonce)
}

// ValidateBlock checks the block is sealed correctly and that it can follow
// the specified previous block in the chain.
func (b Block) ValidateBlock(previousBlock Block) error {
	if !b.IsSealed() {
		return errors.New("block is not sealed")
	}

	if b.Complexity > HashSize {
		return ErrInvalidComplexity
	}

	nextNumber := previousBlock.Number + 1
	if b.Number != nextNumber {
		return fmt.Errorf("this block is not the next number, got %d, exp %d", b.Number, nextNumber)
	}

	if b.PrevBlockHash != previousBlock.Hash {
		return fmt.Errorf("parent block hash doesn't match our known parent, got %s, exp %s", b.PrevBlockHash, previousBlock.Hash)
	}

	hash := b.ComputeHash(b.Nonce)
	if hash != b.Hash {
		return fmt.Errorf("block hash doesn't match the nonce, got %s, exp %s", b.Hash, hash)
	}

	if !isHashSolved(b.Complexity, hash) {
		return fmt.Errorf("%s invalid block hash for complexity %d", hash, b.Complexity)
	}

	return nil
}

// =============================================================================

// POWArgs represents the set of arguments required to run a mining search.
type POWArgs struct {
	Complexity    uint
	StartNonce    uint64
	EndNonce      uint64 // Inclusive. Use MaxNonce to search the full range.
	ProgressEvery uint64 // Emit progress for every nonce that is a multiple. Zero turns it off.
	EvHandler     func(v string, args ...any)
}

// POW performs the work of finding a nonce for the candidate block. The
// candidate is not modified, a sealed copy is returned on success. If the
// nonce range is consumed without a solution ErrMiningExhausted is returned.
func POW(ctx context.Context, candidate Block, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	if args.Complexity > HashSize {
		return Block{}, ErrInvalidComplexity
	}

	if args.StartNonce > args.EndNonce {
		return Block{}, fmt.Errorf("invalid nonce range [%d, %d]", args.StartNonce, args.EndNonce)
	}

	ev("database: POW: MINING: started: prevBlk[%s]: txs[%d]: complexity[%d]", candidate.PrevBlockHash, len(candidate.Trans), args.Complexity)
	defer ev("database: POW: MINING: completed")

	for _, tx := range candidate.Trans {
		ev("database: POW: MINING: tx[%s]", tx)
	}

	start := time.Now()
	h := newHasher(candidate.Preimage())

	var attempts uint64
	for nonce := args.StartNonce; ; nonce++ {
		attempts++

		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED: attempts[%d]", attempts)
			return Block{}, ctx.Err()
		}

		if args.ProgressEvery > 0 && nonce%args.ProgressEvery == 0 {
			ev("database: POW: MINING: progress: nonce[%d]: attempts[%d]", nonce, attempts)
		}

		hash := h.sum(nonce)
		if isHashSolved(args.Complexity, hash) {
			sealed := candidate
			sealed.Hash = hash
			sealed.Nonce = nonce
			sealed.Complexity = args.Complexity

			ev("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", sealed.PrevBlockHash, sealed.Hash, nonce)
			ev("database: POW: MINING: attempts[%d]: elapsed[%v]", attempts, time.Since(start))

			return sealed, nil
		}

		if nonce == args.EndNonce {
			break
		}
	}

	ev("database: POW: MINING: EXHAUSTED: attempts[%d]", attempts)

	return Block{}, ErrMiningExhausted
}

// isHashSolved checks the hash to make sure it complies with the POW rules.
// The first complexity bytes of the hash need to be zero.
func isHashSolved(complexity uint, hash Hash) bool {
	if complexity > HashSize {
		return false
	}

	for _, b := range hash[:complexity] {
		if b != 0 {
			return false
		}
	}

	return true
}

// =============================================================================

// hasher reuses one buffer holding the preimage followed by room for the
// big endian nonce so each attempt doesn't allocate.
type hasher struct {
	buf []byte
	at  int
}

func newHasher(preimage []byte) *hasher {
	buf := make([]byte, len(preimage)+8)
	copy(buf, preimage)

	return &hasher{
		buf: buf,
		at:  len(preimage),
	}
}

func (h *hasher) sum(nonce uint64) Hash {
	binary.BigEndian.PutUint64(h.buf[h.at:], nonce)
	return sha256.Sum256(h.buf)
}
