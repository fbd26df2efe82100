package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
)

func (db *Database) SaveRebalance(ctx context.Context, rebalance *model.Rebalance) error {
	_, err := db.collection(model.RebalanceCollection).
		InsertOne(ctx, rebalance)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     rebalance.ID,
						Message: "rebalance already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetRebalanceByID(ctx context.Context, id string) (*model.Rebalance, error) {
	filter := bson.M{"_id": id}
	res := db.collection(model.RebalanceCollection).FindOne(ctx, filter)

	var rebalance model.Rebalance
	err := res.Decode(&rebalance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: "rebalance not found by id",
			}
		}
		return nil, err
	}

	return &rebalance, nil
}
