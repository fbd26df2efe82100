package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
)

func (db *Database) SaveNewDelegation(ctx context.Context, delegation *model.Delegation) error {
	_, err := db.collection(model.DelegationCollection).
		InsertOne(ctx, delegation)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     delegation.ID,
						Message: "delegation already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetDelegationByID(ctx context.Context, id string) (*model.Delegation, error) {
	filter := bson.M{"_id": id}
	res := db.collection(model.DelegationCollection).FindOne(ctx, filter)

	var delegation model.Delegation
	err := res.Decode(&delegation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: "delegation not found by id",
			}
		}
		return nil, err
	}

	return &delegation, nil
}

// RevokeDelegation deactivates a delegation and stamps the revocation
// block/timestamp. The returned flag reports whether the delegation was
// active before the call; a revocation replayed on an already-revoked
// delegation must not decrement active counters again.
func (db *Database) RevokeDelegation(
	ctx context.Context,
	id string,
	revokedAt int64,
	revokedAtBlock string,
) (bool, error) {
	filter := bson.M{"_id": id, "is_active": true}
	update := bson.M{
		"$set": bson.M{
			"is_active":        false,
			"revoked_at":       revokedAt,
			"revoked_at_block": revokedAtBlock,
		},
	}

	res := db.collection(model.DelegationCollection).FindOneAndUpdate(ctx, filter, update)
	if res.Err() == nil {
		return true, nil
	}
	if !errors.Is(res.Err(), mongo.ErrNoDocuments) {
		return false, res.Err()
	}

	if _, err := db.GetDelegationByID(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}
