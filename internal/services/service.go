package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/LSUDOKO/DeleGator.AI/internal/chainlog"
	"github.com/LSUDOKO/DeleGator.AI/internal/config"
	"github.com/LSUDOKO/DeleGator.AI/internal/db"
	"github.com/LSUDOKO/DeleGator.AI/internal/relay"
)

// RelayNotifier forwards processed events to the backend. Satisfied by
// *relay.Client.
type RelayNotifier interface {
	Notify(ctx context.Context, envelope *relay.Envelope)
}

type Service struct {
	cfg         *config.Config
	db          db.DbInterface
	relay       RelayNotifier
	subscribers []chainlog.Subscriber

	// relayWg tracks in-flight backend notifications so a drained run can
	// finish delivering before Start returns.
	relayWg sync.WaitGroup
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	relay RelayNotifier,
	subscribers []chainlog.Subscriber,
) *Service {
	return &Service{
		cfg:         cfg,
		db:          db,
		relay:       relay,
		subscribers: subscribers,
	}
}

// Start runs one consumer goroutine per subscribed chain and blocks until
// every log stream is drained or the context is cancelled, plus any backend
// notifications still in flight. Logs within a chain are processed strictly
// in order; chains proceed independently.
func (s *Service) Start(ctx context.Context) {
	var wg sync.WaitGroup

	for _, sub := range s.subscribers {
		wg.Add(1)
		go func(sub chainlog.Subscriber) {
			defer wg.Done()
			s.consumeChain(ctx, sub)
		}(sub)
	}

	wg.Wait()
	s.relayWg.Wait()
}

func (s *Service) consumeChain(ctx context.Context, sub chainlog.Subscriber) {
	logs, err := sub.Subscribe(ctx)
	if err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Uint64("chain_id", sub.ChainID()).
			Msg("Failed to subscribe to chain logs")
		return
	}

	log.Ctx(ctx).Info().
		Uint64("chain_id", sub.ChainID()).
		Msg("Started chain log consumer")

	for {
		select {
		case <-ctx.Done():
			return
		case chainLog, ok := <-logs:
			if !ok {
				log.Ctx(ctx).Info().
					Uint64("chain_id", sub.ChainID()).
					Msg("Chain log stream closed")
				return
			}
			if err := s.processLog(ctx, chainLog); err != nil {
				log.Ctx(ctx).Error().
					Err(err).
					Uint64("chain_id", chainLog.ChainID).
					Str("tx_hash", chainLog.TxHash).
					Str("event_type", chainLog.Type.String()).
					Msg("Failed to process chain log")
			}
		}
	}
}
