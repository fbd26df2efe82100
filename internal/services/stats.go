package services

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/LSUDOKO/DeleGator.AI/internal/chainlog"
	"github.com/LSUDOKO/DeleGator.AI/internal/types"
)

// statsDelta describes the counter changes one event applies to the chain's
// running totals. Gas is carried separately because it is an arbitrary
// precision amount, not a counter.
type statsDelta struct {
	totalStrategies      int64
	activeStrategies     int64
	totalDelegations     int64
	activeDelegations    int64
	totalRebalances      int64
	successfulRebalances int64
	failedRebalances     int64
	gasUsed              string
}

// applyStatsDelta folds a delta into the chain's stats row and refreshes the
// last-updated markers. Correctness of the read-modify-write relies on
// per-chain serialization of the event loop.
func (s *Service) applyStatsDelta(
	ctx context.Context, chainLog *chainlog.Log, delta statsDelta,
) *types.Error {
	stats, err := s.db.GetChainStats(ctx, chainLog.ChainID)
	if err != nil {
		return types.NewInternalServiceError(err)
	}

	stats.TotalStrategies = addDelta(stats.TotalStrategies, delta.totalStrategies)
	stats.ActiveStrategies = addDelta(stats.ActiveStrategies, delta.activeStrategies)
	stats.TotalDelegations = addDelta(stats.TotalDelegations, delta.totalDelegations)
	stats.ActiveDelegations = addDelta(stats.ActiveDelegations, delta.activeDelegations)
	stats.TotalRebalances = addDelta(stats.TotalRebalances, delta.totalRebalances)
	stats.SuccessfulRebalances = addDelta(stats.SuccessfulRebalances, delta.successfulRebalances)
	stats.FailedRebalances = addDelta(stats.FailedRebalances, delta.failedRebalances)

	if delta.gasUsed != "" {
		total, ok := sdkmath.NewIntFromString(stats.TotalGasUsed)
		if !ok {
			total = sdkmath.ZeroInt()
		}
		gas, ok := sdkmath.NewIntFromString(delta.gasUsed)
		if !ok {
			gas = sdkmath.ZeroInt()
		}
		stats.TotalGasUsed = total.Add(gas).String()
	}

	stats.LastUpdatedAt = chainLog.BlockTimestamp
	stats.LastUpdatedAtBlock = chainLog.BlockNumber.String()

	if err := s.db.UpsertChainStats(ctx, stats); err != nil {
		return types.NewInternalServiceError(err)
	}

	return nil
}

// addDelta applies a signed delta to an unsigned counter, clamping at zero
// so a replayed decrement cannot wrap around.
func addDelta(counter uint64, delta int64) uint64 {
	if delta >= 0 {
		return counter + uint64(delta)
	}
	dec := uint64(-delta)
	if dec > counter {
		return 0
	}
	return counter - dec
}
