package model

import (
	"fmt"

	"github.com/LSUDOKO/DeleGator.AI/internal/types"
)

const RebalanceCollection = "rebalances"

// Rebalance records one execution attempt. Append-only, one document per
// (txHash, logIndex).
type Rebalance struct {
	ID              string                `bson:"_id"` // "<txHash>-<logIndex>"
	ChainID         uint64                `bson:"chain_id"`
	StrategyID      string                `bson:"strategy_id"`
	TxHash          string                `bson:"tx_hash"`
	DriftBps        int64                 `bson:"drift_bps"`
	GasUsed         string                `bson:"gas_used"`
	Status          types.RebalanceStatus `bson:"status"`
	ErrorReason     string                `bson:"error_reason,omitempty"`
	ExecutedAt      int64                 `bson:"executed_at"`
	ExecutedAtBlock string                `bson:"executed_at_block"`
}

func TxLogEntityID(txHash string, logIndex uint64) string {
	return fmt.Sprintf("%s-%d", txHash, logIndex)
}
