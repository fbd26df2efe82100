package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LSUDOKO/DeleGator.AI/internal/config"
)

const setupTimeout = 30 * time.Second

// index specifications per collection, secondary to the _id key
var collectionIndexes = map[string][]mongo.IndexModel{
	StrategyCollection: {
		{Keys: bson.D{{Key: "chain_id", Value: 1}, {Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
	},
	DelegationCollection: {
		{Keys: bson.D{{Key: "strategy_id", Value: 1}}},
		{Keys: bson.D{{Key: "delegation_hash", Value: 1}}},
	},
	RebalanceCollection: {
		{Keys: bson.D{{Key: "strategy_id", Value: 1}, {Key: "executed_at", Value: -1}}},
	},
	PriceFeedCollection: {
		{Keys: bson.D{{Key: "chain_id", Value: 1}}},
	},
	SwapCollection: {
		{Keys: bson.D{{Key: "chain_id", Value: 1}, {Key: "executed_at", Value: -1}}},
	},
	ChainStatsCollection: nil,
}

// Setup creates the collections and secondary indexes used by the indexer.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	database := client.Database(cfg.DbName)
	for collection, indexes := range collectionIndexes {
		if err := createCollection(ctx, database, collection); err != nil {
			return err
		}
		if len(indexes) == 0 {
			continue
		}
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}

	return client.Disconnect(ctx)
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) error {
	// collection creation is idempotent apart from the NamespaceExists error
	err := database.CreateCollection(ctx, collectionName)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists" {
			return nil
		}
		return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
	}

	return nil
}
