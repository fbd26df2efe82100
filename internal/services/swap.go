package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/LSUDOKO/DeleGator.AI/internal/chainlog"
	"github.com/LSUDOKO/DeleGator.AI/internal/db"
	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
	"github.com/LSUDOKO/DeleGator.AI/internal/types"
	"github.com/LSUDOKO/DeleGator.AI/internal/utils"
)

func (s *Service) processSwapExecutedEvent(
	ctx context.Context, chainLog *chainlog.Log,
) *types.Error {
	tokenIn, err := paramStr(chainLog.Params, "tokenIn")
	if err != nil {
		return err
	}
	tokenOut, err := paramStr(chainLog.Params, "tokenOut")
	if err != nil {
		return err
	}
	amountInRaw, err := paramStr(chainLog.Params, "amountIn")
	if err != nil {
		return err
	}
	amountIn, parseErr := utils.ParseBigInt(amountInRaw)
	if parseErr != nil {
		return types.NewValidationFailedError(parseErr)
	}
	amountOutRaw, err := paramStr(chainLog.Params, "amountOut")
	if err != nil {
		return err
	}
	amountOut, parseErr := utils.ParseBigInt(amountOutRaw)
	if parseErr != nil {
		return types.NewValidationFailedError(parseErr)
	}

	swap := &model.Swap{
		ID:              model.TxLogEntityID(chainLog.TxHash, chainLog.LogIndex),
		ChainID:         chainLog.ChainID,
		TxHash:          chainLog.TxHash,
		TokenIn:         utils.NormalizeAddress(tokenIn),
		TokenOut:        utils.NormalizeAddress(tokenOut),
		AmountIn:        amountIn.String(),
		AmountOut:       amountOut.String(),
		ExecutedAt:      chainLog.BlockTimestamp,
		ExecutedAtBlock: chainLog.BlockNumber.String(),
	}

	if dbErr := s.db.SaveSwap(ctx, swap); dbErr != nil {
		if db.IsDuplicateKeyError(dbErr) {
			log.Ctx(ctx).Debug().
				Str("swap_id", swap.ID).
				Msg("Ignoring duplicate swap executed event")
		} else {
			return types.NewInternalServiceError(dbErr)
		}
	}

	s.notifyBackend(ctx, chainLog, map[string]any{
		"tokenIn":   tokenIn,
		"tokenOut":  tokenOut,
		"amountIn":  amountIn.String(),
		"amountOut": amountOut.String(),
	})

	return nil
}
