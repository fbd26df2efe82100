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

func (s *Service) processDelegationCreatedEvent(
	ctx context.Context, chainLog *chainlog.Log,
) *types.Error {
	delegationHash, err := paramStr(chainLog.Params, "delegationHash")
	if err != nil {
		return err
	}
	user, err := paramStr(chainLog.Params, "user")
	if err != nil {
		return err
	}
	delegate, err := paramStr(chainLog.Params, "delegate")
	if err != nil {
		return err
	}
	strategyID, err := paramStr(chainLog.Params, "strategyId")
	if err != nil {
		return err
	}

	delegation := &model.Delegation{
		ID:             model.DelegationEntityID(chainLog.ChainID, delegationHash),
		ChainID:        chainLog.ChainID,
		DelegationHash: delegationHash,
		User:           utils.NormalizeAddress(user),
		Delegate:       utils.NormalizeAddress(delegate),
		StrategyID:     model.StrategyEntityID(chainLog.ChainID, strategyID),
		IsActive:       true,
		CreatedAt:      chainLog.BlockTimestamp,
		CreatedAtBlock: chainLog.BlockNumber.String(),
	}

	if dbErr := s.db.SaveNewDelegation(ctx, delegation); dbErr != nil {
		if db.IsDuplicateKeyError(dbErr) {
			log.Ctx(ctx).Debug().
				Str("delegation_id", delegation.ID).
				Msg("Ignoring duplicate delegation created event")
		} else {
			return types.NewInternalServiceError(dbErr)
		}
	} else {
		if err := s.applyStatsDelta(ctx, chainLog, statsDelta{
			totalDelegations:  1,
			activeDelegations: 1,
		}); err != nil {
			return err
		}
	}

	s.notifyBackend(ctx, chainLog, map[string]any{
		"delegationHash": delegationHash,
		"user":           user,
		"delegate":       delegate,
		"strategyId":     strategyID,
	})

	return nil
}

func (s *Service) processDelegationRevokedEvent(
	ctx context.Context, chainLog *chainlog.Log,
) *types.Error {
	delegationHash, err := paramStr(chainLog.Params, "delegationHash")
	if err != nil {
		return err
	}

	entityID := model.DelegationEntityID(chainLog.ChainID, delegationHash)
	wasActive, dbErr := s.db.RevokeDelegation(
		ctx,
		entityID,
		chainLog.BlockTimestamp,
		chainLog.BlockNumber.String(),
	)
	if dbErr != nil {
		if db.IsNotFoundError(dbErr) {
			log.Ctx(ctx).Warn().
				Str("delegation_id", entityID).
				Str("tx_hash", chainLog.TxHash).
				Msg("Delegation revoked event for unknown delegation")
		} else {
			return types.NewInternalServiceError(dbErr)
		}
	} else if wasActive {
		if err := s.applyStatsDelta(ctx, chainLog, statsDelta{
			activeDelegations: -1,
		}); err != nil {
			return err
		}
	}

	s.notifyBackend(ctx, chainLog, map[string]any{
		"delegationHash": delegationHash,
	})

	return nil
}
