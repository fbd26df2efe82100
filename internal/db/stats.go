package db

import (
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
)

// GetChainStats returns the stats row for a chain, or a zeroed row when none
// exists yet. The row is persisted lazily by the first UpsertChainStats.
func (db *Database) GetChainStats(ctx context.Context, chainID uint64) (*model.ChainStats, error) {
	id := strconv.FormatUint(chainID, 10)
	filter := bson.M{"_id": id}
	res := db.collection(model.ChainStatsCollection).FindOne(ctx, filter)

	var stats model.ChainStats
	err := res.Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.NewChainStats(chainID), nil
		}
		return nil, err
	}

	return &stats, nil
}

// UpsertChainStats writes back a stats row read through GetChainStats.
// Callers are expected to be serialized per chain; the read-modify-write is
// not isolated against concurrent writers for the same chain.
func (db *Database) UpsertChainStats(ctx context.Context, stats *model.ChainStats) error {
	filter := bson.M{"_id": stats.ID}
	update := bson.M{"$set": stats}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.ChainStatsCollection).UpdateOne(ctx, filter, update, opts)
	return err
}
