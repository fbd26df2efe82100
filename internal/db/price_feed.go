package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
)

// UpsertPriceFeed overwrites the stored price for a (chain, token) pair.
// Latest write wins.
func (db *Database) UpsertPriceFeed(ctx context.Context, feed *model.PriceFeed) error {
	filter := bson.M{"_id": feed.ID}
	update := bson.M{"$set": feed}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.PriceFeedCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetPriceFeedByID(ctx context.Context, id string) (*model.PriceFeed, error) {
	filter := bson.M{"_id": id}
	res := db.collection(model.PriceFeedCollection).FindOne(ctx, filter)

	var feed model.PriceFeed
	err := res.Decode(&feed)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: "price feed not found by id",
			}
		}
		return nil, err
	}

	return &feed, nil
}
