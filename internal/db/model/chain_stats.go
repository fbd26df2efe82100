package model

import "strconv"

const ChainStatsCollection = "chain_stats"

// ChainStats is the per-chain running-totals row, created lazily on the
// first event for that chain. Invariants maintained by the stats updater:
// active counts never exceed totals and successful + failed = total
// rebalances.
type ChainStats struct {
	ID                   string `bson:"_id"` // decimal chain id
	ChainID              uint64 `bson:"chain_id"`
	TotalStrategies      uint64 `bson:"total_strategies"`
	ActiveStrategies     uint64 `bson:"active_strategies"`
	TotalDelegations     uint64 `bson:"total_delegations"`
	ActiveDelegations    uint64 `bson:"active_delegations"`
	TotalRebalances      uint64 `bson:"total_rebalances"`
	SuccessfulRebalances uint64 `bson:"successful_rebalances"`
	FailedRebalances     uint64 `bson:"failed_rebalances"`
	TotalGasUsed         string `bson:"total_gas_used"`
	LastUpdatedAt        int64  `bson:"last_updated_at"`
	LastUpdatedAtBlock   string `bson:"last_updated_at_block"`
}

// NewChainStats returns a zeroed stats row for the given chain.
func NewChainStats(chainID uint64) *ChainStats {
	return &ChainStats{
		ID:           strconv.FormatUint(chainID, 10),
		ChainID:      chainID,
		TotalGasUsed: "0",
	}
}
