package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
)

func (db *Database) SaveNewStrategy(ctx context.Context, strategy *model.Strategy) error {
	_, err := db.collection(model.StrategyCollection).
		InsertOne(ctx, strategy)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     strategy.ID,
						Message: "strategy already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetStrategyByID(ctx context.Context, id string) (*model.Strategy, error) {
	filter := bson.M{"_id": id}
	res := db.collection(model.StrategyCollection).FindOne(ctx, filter)

	var strategy model.Strategy
	err := res.Decode(&strategy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: "strategy not found by id",
			}
		}
		return nil, err
	}

	return &strategy, nil
}

func (db *Database) UpdateStrategyConfig(
	ctx context.Context,
	id string,
	weights []uint64,
	rebalanceInterval int64,
	updatedAt int64,
	updatedAtBlock string,
) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"weights":            weights,
			"rebalance_interval": rebalanceInterval,
			"updated_at":         updatedAt,
			"updated_at_block":   updatedAtBlock,
		},
	}

	res, err := db.collection(model.StrategyCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     id,
			Message: "strategy not found when updating config",
		}
	}

	return nil
}

// DeactivateStrategy flips is_active to false. The returned flag reports
// whether the strategy was active before the call, so the caller can guard
// the active-strategies decrement against replayed deactivations.
func (db *Database) DeactivateStrategy(
	ctx context.Context,
	id string,
	updatedAt int64,
	updatedAtBlock string,
) (bool, error) {
	filter := bson.M{"_id": id, "is_active": true}
	update := bson.M{
		"$set": bson.M{
			"is_active":        false,
			"updated_at":       updatedAt,
			"updated_at_block": updatedAtBlock,
		},
	}

	res := db.collection(model.StrategyCollection).FindOneAndUpdate(ctx, filter, update)
	if res.Err() == nil {
		return true, nil
	}
	if !errors.Is(res.Err(), mongo.ErrNoDocuments) {
		return false, res.Err()
	}

	// either the strategy is already inactive (no-op) or it does not exist
	if _, err := db.GetStrategyByID(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}
