package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/LSUDOKO/DeleGator.AI/internal/chainlog"
	"github.com/LSUDOKO/DeleGator.AI/internal/config"
	"github.com/LSUDOKO/DeleGator.AI/internal/db"
	dbmodel "github.com/LSUDOKO/DeleGator.AI/internal/db/model"
	"github.com/LSUDOKO/DeleGator.AI/internal/observability/metrics"
	"github.com/LSUDOKO/DeleGator.AI/internal/observability/tracing"
	"github.com/LSUDOKO/DeleGator.AI/internal/relay"
	"github.com/LSUDOKO/DeleGator.AI/internal/services"
	"github.com/LSUDOKO/DeleGator.AI/internal/types"
)

// replayLog is the newline-delimited JSON form of one chain log in a replay
// file. Block numbers travel as decimal strings.
type replayLog struct {
	ChainID         uint64         `json:"chainId"`
	EventName       string         `json:"eventName"`
	Params          map[string]any `json:"params"`
	BlockNumber     string         `json:"blockNumber"`
	BlockTimestamp  int64          `json:"blockTimestamp"`
	TransactionHash string         `json:"transactionHash"`
	LogIndex        uint64         `json:"logIndex"`
}

func ReplayEventsCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "replay-events",
		Short: "Replays chain logs from a file through the event normalizer",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replayEvents(cmd, filePath)
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "newline-delimited JSON file of chain logs")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func replayEvents(cmd *cobra.Command, filePath string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
		log.Fatal().Err(err).Msg("error while setting up db model")
	}

	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	logs, err := readReplayFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while reading replay file: %s", filePath))
	}

	// One subscriber per chain seen in the file, fed in file order so the
	// per-chain ordering guarantee carries over.
	subscribers := make(map[uint64]*chainlog.ChannelSubscriber)
	for _, chainLog := range logs {
		if _, ok := subscribers[chainLog.ChainID]; !ok {
			subscribers[chainLog.ChainID] = chainlog.NewChannelSubscriber(chainLog.ChainID, len(logs))
		}
	}
	subs := make([]chainlog.Subscriber, 0, len(subscribers))
	for _, sub := range subscribers {
		subs = append(subs, sub)
	}

	relayClient := relay.NewClient(&cfg.Relay)
	service := services.NewService(cfg, dbClient, relayClient, subs)

	for _, chainLog := range logs {
		subscribers[chainLog.ChainID].Publish(chainLog)
	}
	for _, sub := range subscribers {
		sub.Close()
	}

	service.Start(ctx)

	log.Info().Int("count", len(logs)).Msg("Replay finished")
	return nil
}

func readReplayFile(filePath string) ([]*chainlog.Log, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var logs []*chainlog.Log
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var entry replayLog
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		blockNumber, ok := sdkmath.NewIntFromString(entry.BlockNumber)
		if !ok {
			return nil, fmt.Errorf("line %d: invalid block number: %q", line, entry.BlockNumber)
		}

		logs = append(logs, &chainlog.Log{
			ChainID:        entry.ChainID,
			Type:           types.EventType(entry.EventName),
			Params:         entry.Params,
			BlockNumber:    blockNumber,
			BlockTimestamp: entry.BlockTimestamp,
			TxHash:         entry.TransactionHash,
			LogIndex:       entry.LogIndex,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
