package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LSUDOKO/DeleGator.AI/internal/chainlog"
	"github.com/LSUDOKO/DeleGator.AI/internal/observability/metrics"
	"github.com/LSUDOKO/DeleGator.AI/internal/relay"
	"github.com/LSUDOKO/DeleGator.AI/internal/types"
)

// Entry point for processing chain logs
func (s *Service) processLog(ctx context.Context, chainLog *chainlog.Log) *types.Error {
	start := time.Now()

	var err *types.Error

	switch chainLog.Type {
	case types.EventStrategyCreated:
		log.Debug().Msg("Processing strategy created event")
		err = s.processStrategyCreatedEvent(ctx, chainLog)
	case types.EventStrategyUpdated:
		log.Debug().Msg("Processing strategy updated event")
		err = s.processStrategyUpdatedEvent(ctx, chainLog)
	case types.EventStrategyDeactivated:
		log.Debug().Msg("Processing strategy deactivated event")
		err = s.processStrategyDeactivatedEvent(ctx, chainLog)
	case types.EventDelegationCreated:
		log.Debug().Msg("Processing delegation created event")
		err = s.processDelegationCreatedEvent(ctx, chainLog)
	case types.EventDelegationRevoked:
		log.Debug().Msg("Processing delegation revoked event")
		err = s.processDelegationRevokedEvent(ctx, chainLog)
	case types.EventRebalanceExecuted:
		log.Debug().Msg("Processing rebalance executed event")
		err = s.processRebalanceExecutedEvent(ctx, chainLog)
	case types.EventRebalanceFailed:
		log.Debug().Msg("Processing rebalance failed event")
		err = s.processRebalanceFailedEvent(ctx, chainLog)
	case types.EventPriceFeedUpdated:
		log.Debug().Msg("Processing price feed updated event")
		err = s.processPriceFeedUpdatedEvent(ctx, chainLog)
	case types.EventSwapExecuted:
		log.Debug().Msg("Processing swap executed event")
		err = s.processSwapExecutedEvent(ctx, chainLog)
	default:
		log.Warn().
			Str("event_type", chainLog.Type.String()).
			Msg("Skipping unrecognized event type")
	}

	metrics.RecordEventProcessingDuration(time.Since(start), chainLog.Type.String(), err != nil)

	return err
}

// notifyBackend relays the processed event to the backend without blocking
// the mutation path. Delivery failures are handled inside the relay client.
func (s *Service) notifyBackend(ctx context.Context, chainLog *chainlog.Log, data map[string]any) {
	envelope := &relay.Envelope{
		ChainID:         chainLog.ChainID,
		EventName:       chainLog.Type.String(),
		BlockNumber:     chainLog.BlockNumber.String(),
		TransactionHash: chainLog.TxHash,
		LogIndex:        chainLog.LogIndex,
		Data:            data,
	}
	s.relayWg.Add(1)
	go func() {
		defer s.relayWg.Done()
		s.relay.Notify(context.WithoutCancel(ctx), envelope)
	}()
}

func paramStr(params map[string]any, key string) (string, *types.Error) {
	raw, ok := params[key]
	if !ok {
		return "", types.NewErrorWithMsg(
			http.StatusBadRequest,
			types.ValidationError,
			fmt.Sprintf("missing event parameter: %s", key),
		)
	}
	value, ok := raw.(string)
	if !ok {
		return "", types.NewErrorWithMsg(
			http.StatusBadRequest,
			types.ValidationError,
			fmt.Sprintf("event parameter %s is not a string", key),
		)
	}
	return value, nil
}

func paramStrs(params map[string]any, key string) ([]string, *types.Error) {
	raw, ok := params[key]
	if !ok {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest,
			types.ValidationError,
			fmt.Sprintf("missing event parameter: %s", key),
		)
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		values := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, types.NewErrorWithMsg(
					http.StatusBadRequest,
					types.ValidationError,
					fmt.Sprintf("event parameter %s has a non-string element", key),
				)
			}
			values = append(values, s)
		}
		return values, nil
	default:
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest,
			types.ValidationError,
			fmt.Sprintf("event parameter %s is not a string list", key),
		)
	}
}

func paramInt64(params map[string]any, key string) (int64, *types.Error) {
	s, err := paramStr(params, key)
	if err != nil {
		return 0, err
	}
	value, parseErr := strconv.ParseInt(s, 10, 64)
	if parseErr != nil {
		return 0, types.NewErrorWithMsg(
			http.StatusBadRequest,
			types.ValidationError,
			fmt.Sprintf("event parameter %s is not a valid integer: %s", key, s),
		)
	}
	return value, nil
}

func weightStrings(weights []uint64) []string {
	out := make([]string, len(weights))
	for i, w := range weights {
		out[i] = strconv.FormatUint(w, 10)
	}
	return out
}

func int64String(v int64) string {
	return strconv.FormatInt(v, 10)
}

func paramWeights(params map[string]any, key string) ([]uint64, *types.Error) {
	raw, err := paramStrs(params, key)
	if err != nil {
		return nil, err
	}
	weights := make([]uint64, 0, len(raw))
	for _, s := range raw {
		w, parseErr := strconv.ParseUint(s, 10, 64)
		if parseErr != nil {
			return nil, types.NewErrorWithMsg(
				http.StatusBadRequest,
				types.ValidationError,
				fmt.Sprintf("event parameter %s has an invalid weight: %s", key, s),
			)
		}
		weights = append(weights, w)
	}
	return weights, nil
}
