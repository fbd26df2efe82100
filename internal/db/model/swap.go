package model

const SwapCollection = "swaps"

// Swap is append-only, one document per (txHash, logIndex).
type Swap struct {
	ID              string `bson:"_id"` // "<txHash>-<logIndex>"
	ChainID         uint64 `bson:"chain_id"`
	TxHash          string `bson:"tx_hash"`
	TokenIn         string `bson:"token_in"`  // lowercased
	TokenOut        string `bson:"token_out"` // lowercased
	AmountIn        string `bson:"amount_in"`
	AmountOut       string `bson:"amount_out"`
	ExecutedAt      int64  `bson:"executed_at"`
	ExecutedAtBlock string `bson:"executed_at_block"`
}
