package model

import "fmt"

const StrategyCollection = "strategies"

// Strategy is the materialized view of a user strategy. Big-integer fields
// are stored as decimal strings to avoid precision loss.
type Strategy struct {
	ID                string   `bson:"_id"` // "<chainId>-<strategyId>"
	ChainID           uint64   `bson:"chain_id"`
	StrategyID        string   `bson:"strategy_id"`
	User              string   `bson:"user"` // lowercased
	Tokens            []string `bson:"tokens"`
	Weights           []uint64 `bson:"weights"`
	RebalanceInterval int64    `bson:"rebalance_interval"` // seconds
	IsActive          bool     `bson:"is_active"`
	CreatedAt         int64    `bson:"created_at"`
	CreatedAtBlock    string   `bson:"created_at_block"`
	UpdatedAt         int64    `bson:"updated_at"`
	UpdatedAtBlock    string   `bson:"updated_at_block"`
}

// StrategyEntityID builds the deterministic strategy identifier, making
// handler re-execution idempotent.
func StrategyEntityID(chainID uint64, strategyID string) string {
	return fmt.Sprintf("%d-%s", chainID, strategyID)
}
