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

func (s *Service) processRebalanceExecutedEvent(
	ctx context.Context, chainLog *chainlog.Log,
) *types.Error {
	strategyID, err := paramStr(chainLog.Params, "strategyId")
	if err != nil {
		return err
	}
	driftBps, err := paramInt64(chainLog.Params, "driftBps")
	if err != nil {
		return err
	}
	gasUsedRaw, err := paramStr(chainLog.Params, "gasUsed")
	if err != nil {
		return err
	}
	gasUsed, parseErr := utils.ParseBigInt(gasUsedRaw)
	if parseErr != nil {
		return types.NewValidationFailedError(parseErr)
	}

	rebalance := &model.Rebalance{
		ID:              model.TxLogEntityID(chainLog.TxHash, chainLog.LogIndex),
		ChainID:         chainLog.ChainID,
		StrategyID:      model.StrategyEntityID(chainLog.ChainID, strategyID),
		TxHash:          chainLog.TxHash,
		DriftBps:        driftBps,
		GasUsed:         gasUsed.String(),
		Status:          types.RebalanceStatusSuccess,
		ExecutedAt:      chainLog.BlockTimestamp,
		ExecutedAtBlock: chainLog.BlockNumber.String(),
	}

	if dbErr := s.db.SaveRebalance(ctx, rebalance); dbErr != nil {
		if db.IsDuplicateKeyError(dbErr) {
			log.Ctx(ctx).Debug().
				Str("rebalance_id", rebalance.ID).
				Msg("Ignoring duplicate rebalance executed event")
		} else {
			return types.NewInternalServiceError(dbErr)
		}
	} else {
		if err := s.applyStatsDelta(ctx, chainLog, statsDelta{
			totalRebalances:      1,
			successfulRebalances: 1,
			gasUsed:              gasUsed.String(),
		}); err != nil {
			return err
		}
	}

	s.notifyBackend(ctx, chainLog, map[string]any{
		"strategyId": strategyID,
		"driftBps":   int64String(driftBps),
		"gasUsed":    gasUsed.String(),
	})

	return nil
}

func (s *Service) processRebalanceFailedEvent(
	ctx context.Context, chainLog *chainlog.Log,
) *types.Error {
	strategyID, err := paramStr(chainLog.Params, "strategyId")
	if err != nil {
		return err
	}
	reason, err := paramStr(chainLog.Params, "reason")
	if err != nil {
		return err
	}

	rebalance := &model.Rebalance{
		ID:              model.TxLogEntityID(chainLog.TxHash, chainLog.LogIndex),
		ChainID:         chainLog.ChainID,
		StrategyID:      model.StrategyEntityID(chainLog.ChainID, strategyID),
		TxHash:          chainLog.TxHash,
		DriftBps:        0,
		GasUsed:         "0",
		Status:          types.RebalanceStatusFailed,
		ErrorReason:     reason,
		ExecutedAt:      chainLog.BlockTimestamp,
		ExecutedAtBlock: chainLog.BlockNumber.String(),
	}

	if dbErr := s.db.SaveRebalance(ctx, rebalance); dbErr != nil {
		if db.IsDuplicateKeyError(dbErr) {
			log.Ctx(ctx).Debug().
				Str("rebalance_id", rebalance.ID).
				Msg("Ignoring duplicate rebalance failed event")
		} else {
			return types.NewInternalServiceError(dbErr)
		}
	} else {
		if err := s.applyStatsDelta(ctx, chainLog, statsDelta{
			totalRebalances:  1,
			failedRebalances: 1,
		}); err != nil {
			return err
		}
	}

	s.notifyBackend(ctx, chainLog, map[string]any{
		"strategyId": strategyID,
		"reason":     reason,
	})

	return nil
}
