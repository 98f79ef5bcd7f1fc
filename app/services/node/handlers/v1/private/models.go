package private

// Status represents the state of the chain for operators.
type Status struct {
	Blocks          int    `json:"blocks"`
	LatestBlockHash string `json:"latest_block_hash"`
	Complexity      uint   `json:"complexity"`
	Mempool         int    `json:"mempool"`
	Mining          bool   `json:"mining"`
	TransPerBlock   uint16 `json:"trans_per_block"`
	MaxNonce        uint64 `json:"max_nonce"`
	Subscribers     int    `json:"subscribers"`
}

// Complexity is the payload for changing the mining complexity.
type Complexity struct {
	Complexity *uint `json:"complexity" validate:"required,lte=32"`
}
