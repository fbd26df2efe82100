package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
)

func (db *Database) SaveSwap(ctx context.Context, swap *model.Swap) error {
	_, err := db.collection(model.SwapCollection).
		InsertOne(ctx, swap)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     swap.ID,
						Message: "swap already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}
