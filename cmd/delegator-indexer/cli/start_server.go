package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/LSUDOKO/DeleGator.AI/internal/config"
	"github.com/LSUDOKO/DeleGator.AI/internal/observability/metrics"
	"github.com/LSUDOKO/DeleGator.AI/internal/observability/tracing"
	"github.com/LSUDOKO/DeleGator.AI/internal/queue"
	"github.com/LSUDOKO/DeleGator.AI/internal/types"
	"github.com/LSUDOKO/DeleGator.AI/internal/utils/poller"
	"github.com/LSUDOKO/DeleGator.AI/internal/webhook"
)

const queueDepthPollInterval = 15 * time.Second

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the event ingestion server and job queue worker",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	qm, err := queue.NewQueueManager(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize queue manager")
	}
	defer func() {
		if err := qm.Shutdown(); err != nil {
			log.Error().Err(err).Msg("error while shutting down queue manager")
		}
	}()

	worker := queue.NewWorker(qm, executeJob)
	if err := worker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start queue worker")
	}

	depthPoller := poller.NewPoller(queueDepthPollInterval, func(ctx context.Context) *types.Error {
		if err := qm.RecordDepthMetrics(ctx); err != nil {
			return types.NewInternalServiceError(err)
		}
		return nil
	})
	go depthPoller.Start(ctx)
	defer depthPoller.Stop()

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	srv := webhook.New(&cfg.Webhook, qm)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("error while running webhook server")
	}
	return nil
}

// executeJob is the in-process stand-in for the trading bot: it acknowledges
// the dequeued event so downstream automation can pick it up. Replace via a
// custom Worker when embedding.
func executeJob(ctx context.Context, job *queue.Job) error {
	log.Ctx(ctx).Info().
		Str("event_name", job.EventName).
		Uint64("chain_id", job.ChainID).
		Str("block_number", job.BlockNumber.String()).
		Str("tx_hash", job.TransactionHash).
		Uint8("priority", job.Priority).
		Msg("Processing queued event job")
	return nil
}
