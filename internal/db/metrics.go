package db

import (
	"context"
	"time"

	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
	"github.com/LSUDOKO/DeleGator.AI/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveNewStrategy(ctx context.Context, strategy *model.Strategy) error {
	return d.run("SaveNewStrategy", func() error {
		return d.db.SaveNewStrategy(ctx, strategy)
	})
}

func (d *DbWithMetrics) GetStrategyByID(ctx context.Context, id string) (result *model.Strategy, err error) {
	//nolint:errcheck
	d.run("GetStrategyByID", func() error {
		result, err = d.db.GetStrategyByID(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) UpdateStrategyConfig(
	ctx context.Context,
	id string,
	weights []uint64,
	rebalanceInterval int64,
	updatedAt int64,
	updatedAtBlock string,
) error {
	return d.run("UpdateStrategyConfig", func() error {
		return d.db.UpdateStrategyConfig(ctx, id, weights, rebalanceInterval, updatedAt, updatedAtBlock)
	})
}

func (d *DbWithMetrics) DeactivateStrategy(
	ctx context.Context,
	id string,
	updatedAt int64,
	updatedAtBlock string,
) (wasActive bool, err error) {
	//nolint:errcheck
	d.run("DeactivateStrategy", func() error {
		wasActive, err = d.db.DeactivateStrategy(ctx, id, updatedAt, updatedAtBlock)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveNewDelegation(ctx context.Context, delegation *model.Delegation) error {
	return d.run("SaveNewDelegation", func() error {
		return d.db.SaveNewDelegation(ctx, delegation)
	})
}

func (d *DbWithMetrics) GetDelegationByID(ctx context.Context, id string) (result *model.Delegation, err error) {
	//nolint:errcheck
	d.run("GetDelegationByID", func() error {
		result, err = d.db.GetDelegationByID(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) RevokeDelegation(
	ctx context.Context,
	id string,
	revokedAt int64,
	revokedAtBlock string,
) (wasActive bool, err error) {
	//nolint:errcheck
	d.run("RevokeDelegation", func() error {
		wasActive, err = d.db.RevokeDelegation(ctx, id, revokedAt, revokedAtBlock)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveRebalance(ctx context.Context, rebalance *model.Rebalance) error {
	return d.run("SaveRebalance", func() error {
		return d.db.SaveRebalance(ctx, rebalance)
	})
}

func (d *DbWithMetrics) GetRebalanceByID(ctx context.Context, id string) (result *model.Rebalance, err error) {
	//nolint:errcheck
	d.run("GetRebalanceByID", func() error {
		result, err = d.db.GetRebalanceByID(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertPriceFeed(ctx context.Context, feed *model.PriceFeed) error {
	return d.run("UpsertPriceFeed", func() error {
		return d.db.UpsertPriceFeed(ctx, feed)
	})
}

func (d *DbWithMetrics) GetPriceFeedByID(ctx context.Context, id string) (result *model.PriceFeed, err error) {
	//nolint:errcheck
	d.run("GetPriceFeedByID", func() error {
		result, err = d.db.GetPriceFeedByID(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveSwap(ctx context.Context, swap *model.Swap) error {
	return d.run("SaveSwap", func() error {
		return d.db.SaveSwap(ctx, swap)
	})
}

func (d *DbWithMetrics) GetChainStats(ctx context.Context, chainID uint64) (result *model.ChainStats, err error) {
	//nolint:errcheck
	d.run("GetChainStats", func() error {
		result, err = d.db.GetChainStats(ctx, chainID)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertChainStats(ctx context.Context, stats *model.ChainStats) error {
	return d.run("UpsertChainStats", func() error {
		return d.db.UpsertChainStats(ctx, stats)
	})
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
