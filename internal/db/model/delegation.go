package model

import "fmt"

const DelegationCollection = "delegations"

type Delegation struct {
	ID             string `bson:"_id"` // "<chainId>-<delegationHash>"
	ChainID        uint64 `bson:"chain_id"`
	DelegationHash string `bson:"delegation_hash"`
	User           string `bson:"user"`     // lowercased
	Delegate       string `bson:"delegate"` // lowercased
	StrategyID     string `bson:"strategy_id"`
	IsActive       bool   `bson:"is_active"`
	CreatedAt      int64  `bson:"created_at"`
	CreatedAtBlock string `bson:"created_at_block"`
	RevokedAt      *int64 `bson:"revoked_at,omitempty"`
	RevokedAtBlock string `bson:"revoked_at_block,omitempty"`
}

// DelegationEntityID keys delegations by chain plus hash. A bare hash is
// unique per chain event but could collide across chains.
func DelegationEntityID(chainID uint64, delegationHash string) string {
	return fmt.Sprintf("%d-%s", chainID, delegationHash)
}
