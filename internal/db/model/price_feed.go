package model

import "fmt"

const PriceFeedCollection = "price_feeds"

// PriceFeed holds the latest observed price per (chain, token).
// Latest-wins overwrite.
type PriceFeed struct {
	ID             string `bson:"_id"` // "<chainId>-<token>"
	ChainID        uint64 `bson:"chain_id"`
	Token          string `bson:"token"` // lowercased
	Price          string `bson:"price"`
	PublishTime    int64  `bson:"publish_time"`
	UpdatedAt      int64  `bson:"updated_at"`
	UpdatedAtBlock string `bson:"updated_at_block"`
}

func PriceFeedEntityID(chainID uint64, token string) string {
	return fmt.Sprintf("%d-%s", chainID, token)
}
