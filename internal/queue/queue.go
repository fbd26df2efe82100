package queue

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// Job is the payload persisted in the queue: the relayed wire envelope with
// the block number restored to an arbitrary-precision integer, plus the
// assigned priority and retry policy. The downstream worker dequeues by
// priority, FIFO within a tier.
type Job struct {
	ChainID         uint64         `json:"chainId"`
	EventName       string         `json:"eventName"`
	BlockNumber     sdkmath.Int    `json:"blockNumber"`
	TransactionHash string         `json:"transactionHash"`
	LogIndex        uint64         `json:"logIndex"`
	Data            map[string]any `json:"data"`

	// Priority is served lowest-number-first.
	Priority uint8       `json:"priority"`
	Retry    RetryPolicy `json:"retry"`
}

type RetryPolicy struct {
	Attempts uint    `json:"attempts"`
	Backoff  Backoff `json:"backoff"`
}

type Backoff struct {
	Type string `json:"type"`
	// Delay is the initial backoff in milliseconds, doubled per attempt.
	Delay int64 `json:"delay"`
}

const BackoffTypeExponential = "exponential"

// DefaultRetryPolicy is the fixed policy every enqueued job carries:
// 3 attempts with exponential backoff starting at 2000 ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 3,
		Backoff: Backoff{
			Type:  BackoffTypeExponential,
			Delay: 2000,
		},
	}
}

// JobCounts is the queue-depth introspection exposed through the health
// endpoint.
type JobCounts struct {
	Waiting   int64 `json:"waiting"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Client is the job queue collaborator contract: accept a job with priority
// and retry policy, report depth. Retries happen inside the queue's own
// attempt machinery once a job is accepted, never at the enqueue call site.
type Client interface {
	Enqueue(ctx context.Context, job *Job) error
	JobCounts(ctx context.Context) (JobCounts, error)
	Shutdown() error
}
