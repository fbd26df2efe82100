package services

import (
	"context"

	"github.com/LSUDOKO/DeleGator.AI/internal/chainlog"
	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
	"github.com/LSUDOKO/DeleGator.AI/internal/types"
	"github.com/LSUDOKO/DeleGator.AI/internal/utils"
)

func (s *Service) processPriceFeedUpdatedEvent(
	ctx context.Context, chainLog *chainlog.Log,
) *types.Error {
	token, err := paramStr(chainLog.Params, "token")
	if err != nil {
		return err
	}
	priceRaw, err := paramStr(chainLog.Params, "price")
	if err != nil {
		return err
	}
	price, parseErr := utils.ParseBigInt(priceRaw)
	if parseErr != nil {
		return types.NewValidationFailedError(parseErr)
	}
	publishTime, err := paramInt64(chainLog.Params, "publishTime")
	if err != nil {
		return err
	}

	normalizedToken := utils.NormalizeAddress(token)
	feed := &model.PriceFeed{
		ID:             model.PriceFeedEntityID(chainLog.ChainID, normalizedToken),
		ChainID:        chainLog.ChainID,
		Token:          normalizedToken,
		Price:          price.String(),
		PublishTime:    publishTime,
		UpdatedAt:      chainLog.BlockTimestamp,
		UpdatedAtBlock: chainLog.BlockNumber.String(),
	}

	// Latest wins, replays simply rewrite the same snapshot.
	if dbErr := s.db.UpsertPriceFeed(ctx, feed); dbErr != nil {
		return types.NewInternalServiceError(dbErr)
	}

	s.notifyBackend(ctx, chainLog, map[string]any{
		"token":       token,
		"price":       price.String(),
		"publishTime": int64String(publishTime),
	})

	return nil
}
