//go:build integration

package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
)

func TestChainStats(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("get without row returns zeroed stats", func(t *testing.T) {
		stats, err := testDB.GetChainStats(ctx, 10143)
		require.NoError(t, err)
		assert.Equal(t, "10143", stats.ID)
		assert.Equal(t, uint64(10143), stats.ChainID)
		assert.Zero(t, stats.TotalStrategies)
		assert.Equal(t, "0", stats.TotalGasUsed)
	})

	t.Run("upsert then get round trip", func(t *testing.T) {
		stats := model.NewChainStats(8453)
		stats.TotalStrategies = 3
		stats.ActiveStrategies = 2
		stats.TotalRebalances = 5
		stats.SuccessfulRebalances = 4
		stats.FailedRebalances = 1
		stats.TotalGasUsed = "1234567890123456789012"
		stats.LastUpdatedAt = 1756000000
		stats.LastUpdatedAtBlock = "5000000"

		require.NoError(t, testDB.UpsertChainStats(ctx, stats))

		found, err := testDB.GetChainStats(ctx, 8453)
		require.NoError(t, err)
		assert.Equal(t, stats, found)

		// second upsert overwrites in place
		stats.TotalRebalances = 6
		stats.SuccessfulRebalances = 5
		require.NoError(t, testDB.UpsertChainStats(ctx, stats))

		found, err = testDB.GetChainStats(ctx, 8453)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), found.TotalRebalances)
	})

	t.Run("chains are isolated", func(t *testing.T) {
		stats := model.NewChainStats(1)
		stats.TotalDelegations = 7
		require.NoError(t, testDB.UpsertChainStats(ctx, stats))

		other, err := testDB.GetChainStats(ctx, 2)
		require.NoError(t, err)
		assert.Zero(t, other.TotalDelegations)
	})
}
