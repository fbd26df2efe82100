package chainlog

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/LSUDOKO/DeleGator.AI/internal/types"
)

// Log is a single decoded contract event as delivered by the upstream
// subscription transport. Numeric parameters arrive stringified in decimal
// form so that amounts and block numbers never pass through a float; list
// parameters arrive as string slices.
type Log struct {
	ChainID        uint64
	Type           types.EventType
	Params         map[string]any
	BlockNumber    sdkmath.Int
	BlockTimestamp int64
	TxHash         string
	LogIndex       uint64
}

// Subscriber delivers logs for a single chain in block order, each log
// exactly once. The transport behind it (websocket, poller, replay file) is
// outside this module.
type Subscriber interface {
	// ChainID identifies the chain this subscriber covers.
	ChainID() uint64
	// Subscribe returns the log stream. The channel is closed when the
	// context is cancelled or the upstream source terminates.
	Subscribe(ctx context.Context) (<-chan *Log, error)
}

// ChannelSubscriber is a Subscriber fed programmatically through a channel.
// It is the injection point used by embedders that bind their own transport,
// and by tests.
type ChannelSubscriber struct {
	chainID uint64
	logs    chan *Log
}

func NewChannelSubscriber(chainID uint64, buffer int) *ChannelSubscriber {
	return &ChannelSubscriber{
		chainID: chainID,
		logs:    make(chan *Log, buffer),
	}
}

func (s *ChannelSubscriber) ChainID() uint64 {
	return s.chainID
}

func (s *ChannelSubscriber) Subscribe(ctx context.Context) (<-chan *Log, error) {
	return s.logs, nil
}

// Publish hands a log to the subscriber, blocking when the buffer is full so
// per-chain ordering is preserved under backpressure.
func (s *ChannelSubscriber) Publish(chainLog *Log) {
	s.logs <- chainLog
}

// Close terminates the stream. Publish must not be called afterwards.
func (s *ChannelSubscriber) Close() {
	close(s.logs)
}
