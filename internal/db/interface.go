package db

import (
	"context"

	"github.com/LSUDOKO/DeleGator.AI/internal/db/model"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	SaveNewStrategy(ctx context.Context, strategy *model.Strategy) error
	GetStrategyByID(ctx context.Context, id string) (*model.Strategy, error)
	UpdateStrategyConfig(
		ctx context.Context,
		id string,
		weights []uint64,
		rebalanceInterval int64,
		updatedAt int64,
		updatedAtBlock string,
	) error
	DeactivateStrategy(
		ctx context.Context,
		id string,
		updatedAt int64,
		updatedAtBlock string,
	) (bool, error)

	SaveNewDelegation(ctx context.Context, delegation *model.Delegation) error
	GetDelegationByID(ctx context.Context, id string) (*model.Delegation, error)
	RevokeDelegation(
		ctx context.Context,
		id string,
		revokedAt int64,
		revokedAtBlock string,
	) (bool, error)

	SaveRebalance(ctx context.Context, rebalance *model.Rebalance) error
	GetRebalanceByID(ctx context.Context, id string) (*model.Rebalance, error)

	UpsertPriceFeed(ctx context.Context, feed *model.PriceFeed) error
	GetPriceFeedByID(ctx context.Context, id string) (*model.PriceFeed, error)

	SaveSwap(ctx context.Context, swap *model.Swap) error

	GetChainStats(ctx context.Context, chainID uint64) (*model.ChainStats, error)
	UpsertChainStats(ctx context.Context, stats *model.ChainStats) error
}
