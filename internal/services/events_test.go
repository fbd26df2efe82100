package services

import (
	"context"
	"sync"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LSUDOKO/DeleGator.AI/internal/chainlog"
	"github.com/LSUDOKO/DeleGator.AI/internal/db"
	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
	"github.com/LSUDOKO/DeleGator.AI/internal/relay"
	"github.com/LSUDOKO/DeleGator.AI/internal/types"
)

const (
	testChainID uint64 = 10143

	eventuallyTimeout = 2 * time.Second
	eventuallyTick    = 10 * time.Millisecond
)

// fakeDb is an in-memory DbInterface for handler tests.
type fakeDb struct {
	mu          sync.Mutex
	strategies  map[string]*model.Strategy
	delegations map[string]*model.Delegation
	rebalances  map[string]*model.Rebalance
	priceFeeds  map[string]*model.PriceFeed
	swaps       map[string]*model.Swap
	stats       map[uint64]*model.ChainStats
}

func newFakeDb() *fakeDb {
	return &fakeDb{
		strategies:  make(map[string]*model.Strategy),
		delegations: make(map[string]*model.Delegation),
		rebalances:  make(map[string]*model.Rebalance),
		priceFeeds:  make(map[string]*model.PriceFeed),
		swaps:       make(map[string]*model.Swap),
		stats:       make(map[uint64]*model.ChainStats),
	}
}

func (f *fakeDb) Ping(ctx context.Context) error { return nil }

func (f *fakeDb) SaveNewStrategy(ctx context.Context, strategy *model.Strategy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.strategies[strategy.ID]; ok {
		return &db.DuplicateKeyError{Key: strategy.ID, Message: "strategy already exists"}
	}
	f.strategies[strategy.ID] = strategy
	return nil
}

func (f *fakeDb) GetStrategyByID(ctx context.Context, id string) (*model.Strategy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	strategy, ok := f.strategies[id]
	if !ok {
		return nil, &db.NotFoundError{Key: id, Message: "strategy not found by id"}
	}
	return strategy, nil
}

func (f *fakeDb) UpdateStrategyConfig(
	ctx context.Context,
	id string,
	weights []uint64,
	rebalanceInterval int64,
	updatedAt int64,
	updatedAtBlock string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	strategy, ok := f.strategies[id]
	if !ok {
		return &db.NotFoundError{Key: id, Message: "strategy not found by id"}
	}
	strategy.Weights = weights
	strategy.RebalanceInterval = rebalanceInterval
	strategy.UpdatedAt = updatedAt
	strategy.UpdatedAtBlock = updatedAtBlock
	return nil
}

func (f *fakeDb) DeactivateStrategy(
	ctx context.Context, id string, updatedAt int64, updatedAtBlock string,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	strategy, ok := f.strategies[id]
	if !ok {
		return false, &db.NotFoundError{Key: id, Message: "strategy not found by id"}
	}
	wasActive := strategy.IsActive
	strategy.IsActive = false
	strategy.UpdatedAt = updatedAt
	strategy.UpdatedAtBlock = updatedAtBlock
	return wasActive, nil
}

func (f *fakeDb) SaveNewDelegation(ctx context.Context, delegation *model.Delegation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.delegations[delegation.ID]; ok {
		return &db.DuplicateKeyError{Key: delegation.ID, Message: "delegation already exists"}
	}
	f.delegations[delegation.ID] = delegation
	return nil
}

func (f *fakeDb) GetDelegationByID(ctx context.Context, id string) (*model.Delegation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delegation, ok := f.delegations[id]
	if !ok {
		return nil, &db.NotFoundError{Key: id, Message: "delegation not found by id"}
	}
	return delegation, nil
}

func (f *fakeDb) RevokeDelegation(
	ctx context.Context, id string, revokedAt int64, revokedAtBlock string,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delegation, ok := f.delegations[id]
	if !ok {
		return false, &db.NotFoundError{Key: id, Message: "delegation not found by id"}
	}
	wasActive := delegation.IsActive
	delegation.IsActive = false
	delegation.RevokedAt = &revokedAt
	delegation.RevokedAtBlock = revokedAtBlock
	return wasActive, nil
}

func (f *fakeDb) SaveRebalance(ctx context.Context, rebalance *model.Rebalance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rebalances[rebalance.ID]; ok {
		return &db.DuplicateKeyError{Key: rebalance.ID, Message: "rebalance already exists"}
	}
	f.rebalances[rebalance.ID] = rebalance
	return nil
}

func (f *fakeDb) GetRebalanceByID(ctx context.Context, id string) (*model.Rebalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rebalance, ok := f.rebalances[id]
	if !ok {
		return nil, &db.NotFoundError{Key: id, Message: "rebalance not found by id"}
	}
	return rebalance, nil
}

func (f *fakeDb) UpsertPriceFeed(ctx context.Context, feed *model.PriceFeed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceFeeds[feed.ID] = feed
	return nil
}

func (f *fakeDb) GetPriceFeedByID(ctx context.Context, id string) (*model.PriceFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	feed, ok := f.priceFeeds[id]
	if !ok {
		return nil, &db.NotFoundError{Key: id, Message: "price feed not found by id"}
	}
	return feed, nil
}

func (f *fakeDb) SaveSwap(ctx context.Context, swap *model.Swap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.swaps[swap.ID]; ok {
		return &db.DuplicateKeyError{Key: swap.ID, Message: "swap already exists"}
	}
	f.swaps[swap.ID] = swap
	return nil
}

func (f *fakeDb) GetChainStats(ctx context.Context, chainID uint64) (*model.ChainStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stats, ok := f.stats[chainID]; ok {
		copied := *stats
		return &copied, nil
	}
	return model.NewChainStats(chainID), nil
}

func (f *fakeDb) UpsertChainStats(ctx context.Context, stats *model.ChainStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *stats
	f.stats[stats.ChainID] = &copied
	return nil
}

// fakeRelay records envelopes synchronously.
type fakeRelay struct {
	mu        sync.Mutex
	envelopes []*relay.Envelope
}

func (f *fakeRelay) Notify(ctx context.Context, envelope *relay.Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.envelopes = append(f.envelopes, envelope)
}

func (f *fakeRelay) wait(t *testing.T, n int) []*relay.Envelope {
	t.Helper()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.envelopes) >= n
	}, eventuallyTimeout, eventuallyTick)

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*relay.Envelope, len(f.envelopes))
	copy(out, f.envelopes)
	return out
}

func newTestService(t *testing.T) (*Service, *fakeDb, *fakeRelay) {
	t.Helper()
	database := newFakeDb()
	notifier := &fakeRelay{}
	return NewService(nil, database, notifier, nil), database, notifier
}

func testLog(eventType types.EventType, params map[string]any) *chainlog.Log {
	return &chainlog.Log{
		ChainID:        testChainID,
		Type:           eventType,
		Params:         params,
		BlockNumber:    sdkmath.NewInt(5_000_000),
		BlockTimestamp: 1_756_000_000,
		TxHash:         "0xabc",
		LogIndex:       1,
	}
}

func strategyCreatedLog() *chainlog.Log {
	return testLog(types.EventStrategyCreated, map[string]any{
		"strategyId":        "7",
		"user":              "0x00000000000000000000000000000000000000AA",
		"tokens":            []string{"0x00000000000000000000000000000000000000BB"},
		"weights":           []string{"10000"},
		"rebalanceInterval": "3600",
	})
}

func TestStrategyCreated(t *testing.T) {
	svc, database, notifier := newTestService(t)
	ctx := context.Background()

	require.Nil(t, svc.processLog(ctx, strategyCreatedLog()))

	strategy, err := database.GetStrategyByID(ctx, "10143-7")
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", strategy.User)
	assert.Equal(t, []string{"0x00000000000000000000000000000000000000bb"}, strategy.Tokens)
	assert.Equal(t, []uint64{10000}, strategy.Weights)
	assert.Equal(t, int64(3600), strategy.RebalanceInterval)
	assert.True(t, strategy.IsActive)
	assert.Equal(t, "5000000", strategy.CreatedAtBlock)

	stats, err := database.GetChainStats(ctx, testChainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.TotalStrategies)
	assert.Equal(t, uint64(1), stats.ActiveStrategies)
	assert.Equal(t, "5000000", stats.LastUpdatedAtBlock)

	envelopes := notifier.wait(t, 1)
	assert.Equal(t, "StrategyCreated", envelopes[0].EventName)
	assert.Equal(t, "5000000", envelopes[0].BlockNumber)
	assert.Equal(t, "7", envelopes[0].Data["strategyId"])
	assert.Equal(t, []string{"10000"}, envelopes[0].Data["weights"])
	assert.Equal(t, "3600", envelopes[0].Data["rebalanceInterval"])
}

func TestStrategyCreated_ReplayDoesNotDoubleCount(t *testing.T) {
	svc, database, notifier := newTestService(t)
	ctx := context.Background()

	require.Nil(t, svc.processLog(ctx, strategyCreatedLog()))
	require.Nil(t, svc.processLog(ctx, strategyCreatedLog()))

	stats, err := database.GetChainStats(ctx, testChainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.TotalStrategies)
	assert.Equal(t, uint64(1), stats.ActiveStrategies)

	// Both logs still relay.
	notifier.wait(t, 2)
}

func TestStrategyCreated_InvalidWeights(t *testing.T) {
	svc, _, _ := newTestService(t)

	chainLog := strategyCreatedLog()
	chainLog.Params["weights"] = []string{"not-a-number"}

	err := svc.processLog(context.Background(), chainLog)
	require.NotNil(t, err)
	assert.Equal(t, types.ValidationError, err.ErrorCode)
}

func TestStrategyUpdated_UnknownStrategyStillRelays(t *testing.T) {
	svc, database, notifier := newTestService(t)
	ctx := context.Background()

	chainLog := testLog(types.EventStrategyUpdated, map[string]any{
		"strategyId":        "99",
		"weights":           []string{"5000", "5000"},
		"rebalanceInterval": "7200",
	})

	require.Nil(t, svc.processLog(ctx, chainLog))

	_, err := database.GetStrategyByID(ctx, "10143-99")
	assert.True(t, db.IsNotFoundError(err))

	envelopes := notifier.wait(t, 1)
	assert.Equal(t, "StrategyUpdated", envelopes[0].EventName)
}

func TestStrategyDeactivated_DecrementsOnlyOnce(t *testing.T) {
	svc, database, _ := newTestService(t)
	ctx := context.Background()

	require.Nil(t, svc.processLog(ctx, strategyCreatedLog()))

	deactivate := func() *chainlog.Log {
		return testLog(types.EventStrategyDeactivated, map[string]any{
			"strategyId": "7",
		})
	}
	require.Nil(t, svc.processLog(ctx, deactivate()))
	require.Nil(t, svc.processLog(ctx, deactivate()))

	strategy, err := database.GetStrategyByID(ctx, "10143-7")
	require.NoError(t, err)
	assert.False(t, strategy.IsActive)

	stats, err := database.GetChainStats(ctx, testChainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.TotalStrategies)
	assert.Equal(t, uint64(0), stats.ActiveStrategies)
}

func TestDelegationLifecycle(t *testing.T) {
	svc, database, _ := newTestService(t)
	ctx := context.Background()

	created := testLog(types.EventDelegationCreated, map[string]any{
		"delegationHash": "0xhash1",
		"user":           "0x00000000000000000000000000000000000000AA",
		"delegate":       "0x00000000000000000000000000000000000000CC",
		"strategyId":     "7",
	})
	require.Nil(t, svc.processLog(ctx, created))

	delegation, err := database.GetDelegationByID(ctx, "10143-0xhash1")
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000cc", delegation.Delegate)
	assert.Equal(t, "10143-7", delegation.StrategyID)
	assert.True(t, delegation.IsActive)

	revoke := func() *chainlog.Log {
		return testLog(types.EventDelegationRevoked, map[string]any{
			"delegationHash": "0xhash1",
		})
	}
	require.Nil(t, svc.processLog(ctx, revoke()))
	require.Nil(t, svc.processLog(ctx, revoke()))

	delegation, err = database.GetDelegationByID(ctx, "10143-0xhash1")
	require.NoError(t, err)
	assert.False(t, delegation.IsActive)
	require.NotNil(t, delegation.RevokedAt)

	stats, err := database.GetChainStats(ctx, testChainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.TotalDelegations)
	assert.Equal(t, uint64(0), stats.ActiveDelegations)
}

func TestRebalanceExecuted_AccumulatesGas(t *testing.T) {
	svc, database, _ := newTestService(t)
	ctx := context.Background()

	executed := func(txHash, gas string) *chainlog.Log {
		chainLog := testLog(types.EventRebalanceExecuted, map[string]any{
			"strategyId": "7",
			"driftBps":   "125",
			"gasUsed":    gas,
		})
		chainLog.TxHash = txHash
		return chainLog
	}
	require.Nil(t, svc.processLog(ctx, executed("0xaaa", "210000")))
	require.Nil(t, svc.processLog(ctx, executed("0xbbb", "90000")))

	rebalance, err := database.GetRebalanceByID(ctx, "0xaaa-1")
	require.NoError(t, err)
	assert.Equal(t, types.RebalanceStatusSuccess, rebalance.Status)
	assert.Equal(t, int64(125), rebalance.DriftBps)
	assert.Equal(t, "210000", rebalance.GasUsed)

	stats, err := database.GetChainStats(ctx, testChainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.TotalRebalances)
	assert.Equal(t, uint64(2), stats.SuccessfulRebalances)
	assert.Equal(t, "300000", stats.TotalGasUsed)
}

func TestRebalanceFailed(t *testing.T) {
	svc, database, _ := newTestService(t)
	ctx := context.Background()

	chainLog := testLog(types.EventRebalanceFailed, map[string]any{
		"strategyId": "7",
		"reason":     "slippage exceeded",
	})
	chainLog.TxHash = "0xdead"
	chainLog.LogIndex = 2
	require.Nil(t, svc.processLog(ctx, chainLog))

	rebalance, err := database.GetRebalanceByID(ctx, "0xdead-2")
	require.NoError(t, err)
	assert.Equal(t, types.RebalanceStatusFailed, rebalance.Status)
	assert.Equal(t, "slippage exceeded", rebalance.ErrorReason)
	assert.Zero(t, rebalance.DriftBps)
	assert.Equal(t, "0", rebalance.GasUsed)

	stats, err := database.GetChainStats(ctx, testChainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.TotalRebalances)
	assert.Equal(t, uint64(1), stats.FailedRebalances)
	assert.Equal(t, "0", stats.TotalGasUsed)
	assert.Equal(t, stats.TotalRebalances, stats.SuccessfulRebalances+stats.FailedRebalances)
}

func TestPriceFeedUpdated_LatestWins(t *testing.T) {
	svc, database, _ := newTestService(t)
	ctx := context.Background()

	update := func(price string) *chainlog.Log {
		return testLog(types.EventPriceFeedUpdated, map[string]any{
			"token":       "0x00000000000000000000000000000000000000BB",
			"price":       price,
			"publishTime": "1756000000",
		})
	}
	require.Nil(t, svc.processLog(ctx, update("182000000000")))
	require.Nil(t, svc.processLog(ctx, update("185000000000")))

	feed, err := database.GetPriceFeedByID(ctx, "10143-0x00000000000000000000000000000000000000bb")
	require.NoError(t, err)
	assert.Equal(t, "185000000000", feed.Price)
}

func TestSwapExecuted(t *testing.T) {
	svc, database, notifier := newTestService(t)
	ctx := context.Background()

	chainLog := testLog(types.EventSwapExecuted, map[string]any{
		"tokenIn":   "0x00000000000000000000000000000000000000BB",
		"tokenOut":  "0x00000000000000000000000000000000000000CC",
		"amountIn":  "1000000000000000000",
		"amountOut": "181000000",
	})
	require.Nil(t, svc.processLog(ctx, chainLog))

	database.mu.Lock()
	swap, ok := database.swaps["0xabc-1"]
	database.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, "0x00000000000000000000000000000000000000bb", swap.TokenIn)
	assert.Equal(t, "1000000000000000000", swap.AmountIn)

	envelopes := notifier.wait(t, 1)
	assert.Equal(t, "181000000", envelopes[0].Data["amountOut"])
}
