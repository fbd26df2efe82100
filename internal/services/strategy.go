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

func (s *Service) processStrategyCreatedEvent(
	ctx context.Context, chainLog *chainlog.Log,
) *types.Error {
	strategyID, err := paramStr(chainLog.Params, "strategyId")
	if err != nil {
		return err
	}
	user, err := paramStr(chainLog.Params, "user")
	if err != nil {
		return err
	}
	tokens, err := paramStrs(chainLog.Params, "tokens")
	if err != nil {
		return err
	}
	weights, err := paramWeights(chainLog.Params, "weights")
	if err != nil {
		return err
	}
	rebalanceInterval, err := paramInt64(chainLog.Params, "rebalanceInterval")
	if err != nil {
		return err
	}

	normalizedTokens := make([]string, len(tokens))
	for i, token := range tokens {
		normalizedTokens[i] = utils.NormalizeAddress(token)
	}

	strategy := &model.Strategy{
		ID:                model.StrategyEntityID(chainLog.ChainID, strategyID),
		ChainID:           chainLog.ChainID,
		StrategyID:        strategyID,
		User:              utils.NormalizeAddress(user),
		Tokens:            normalizedTokens,
		Weights:           weights,
		RebalanceInterval: rebalanceInterval,
		IsActive:          true,
		CreatedAt:         chainLog.BlockTimestamp,
		CreatedAtBlock:    chainLog.BlockNumber.String(),
		UpdatedAt:         chainLog.BlockTimestamp,
		UpdatedAtBlock:    chainLog.BlockNumber.String(),
	}

	if dbErr := s.db.SaveNewStrategy(ctx, strategy); dbErr != nil {
		if db.IsDuplicateKeyError(dbErr) {
			// Replayed log, entity and stats already reflect it.
			log.Ctx(ctx).Debug().
				Str("strategy_id", strategy.ID).
				Msg("Ignoring duplicate strategy created event")
		} else {
			return types.NewInternalServiceError(dbErr)
		}
	} else {
		if err := s.applyStatsDelta(ctx, chainLog, statsDelta{
			totalStrategies:  1,
			activeStrategies: 1,
		}); err != nil {
			return err
		}
	}

	s.notifyBackend(ctx, chainLog, map[string]any{
		"strategyId":        strategyID,
		"user":              user,
		"tokens":            tokens,
		"weights":           weightStrings(weights),
		"rebalanceInterval": int64String(rebalanceInterval),
	})

	return nil
}

func (s *Service) processStrategyUpdatedEvent(
	ctx context.Context, chainLog *chainlog.Log,
) *types.Error {
	strategyID, err := paramStr(chainLog.Params, "strategyId")
	if err != nil {
		return err
	}
	weights, err := paramWeights(chainLog.Params, "weights")
	if err != nil {
		return err
	}
	rebalanceInterval, err := paramInt64(chainLog.Params, "rebalanceInterval")
	if err != nil {
		return err
	}

	entityID := model.StrategyEntityID(chainLog.ChainID, strategyID)
	dbErr := s.db.UpdateStrategyConfig(
		ctx,
		entityID,
		weights,
		rebalanceInterval,
		chainLog.BlockTimestamp,
		chainLog.BlockNumber.String(),
	)
	if dbErr != nil {
		if db.IsNotFoundError(dbErr) {
			// Referential gap: the creation log was never seen. Skip the
			// mutation but still relay, the backend keeps its own state.
			log.Ctx(ctx).Warn().
				Str("strategy_id", entityID).
				Str("tx_hash", chainLog.TxHash).
				Msg("Strategy updated event for unknown strategy")
		} else {
			return types.NewInternalServiceError(dbErr)
		}
	}

	s.notifyBackend(ctx, chainLog, map[string]any{
		"strategyId":        strategyID,
		"weights":           weightStrings(weights),
		"rebalanceInterval": int64String(rebalanceInterval),
	})

	return nil
}

func (s *Service) processStrategyDeactivatedEvent(
	ctx context.Context, chainLog *chainlog.Log,
) *types.Error {
	strategyID, err := paramStr(chainLog.Params, "strategyId")
	if err != nil {
		return err
	}

	entityID := model.StrategyEntityID(chainLog.ChainID, strategyID)
	wasActive, dbErr := s.db.DeactivateStrategy(
		ctx,
		entityID,
		chainLog.BlockTimestamp,
		chainLog.BlockNumber.String(),
	)
	if dbErr != nil {
		if db.IsNotFoundError(dbErr) {
			log.Ctx(ctx).Warn().
				Str("strategy_id", entityID).
				Str("tx_hash", chainLog.TxHash).
				Msg("Strategy deactivated event for unknown strategy")
		} else {
			return types.NewInternalServiceError(dbErr)
		}
	} else if wasActive {
		// Only the transition out of active decrements, so a replayed or
		// duplicate deactivation cannot drive the counter below the truth.
		if err := s.applyStatsDelta(ctx, chainLog, statsDelta{
			activeStrategies: -1,
		}); err != nil {
			return err
		}
	}

	s.notifyBackend(ctx, chainLog, map[string]any{
		"strategyId": strategyID,
	})

	return nil
}
