package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/LSUDOKO/DeleGator.AI/internal/observability/metrics"
)

// JobHandler executes one dequeued job. The processing service behind it is
// a separate concern; the worker only owns the attempt/backoff machinery.
type JobHandler func(ctx context.Context, job *Job) error

type Worker struct {
	qm      *QueueManager
	handler JobHandler
}

func NewWorker(qm *QueueManager, handler JobHandler) *Worker {
	return &Worker{
		qm:      qm,
		handler: handler,
	}
}

// Start consumes jobs until the context is cancelled. Each job runs through
// its own retry policy; a job that exhausts its attempts is acked and only
// surfaces through the failed count.
func (w *Worker) Start(ctx context.Context) error {
	if w.qm.cfg.PrefetchCount > 0 {
		if err := w.qm.channel.Qos(w.qm.cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	deliveries, err := w.qm.channel.Consume(
		w.qm.cfg.QueueName,
		"", // consumer tag
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case delivery, ok := <-deliveries:
				if !ok {
					log.Info().Msg("Queue delivery channel closed")
					return
				}
				w.process(ctx, delivery)
			case <-ctx.Done():
				log.Info().Msg("Queue worker stopped due to context cancellation")
				return
			}
		}
	}()

	return nil
}

func (w *Worker) process(ctx context.Context, delivery amqp.Delivery) {
	var job Job
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		log.Error().Err(err).Msg("Failed to decode job payload, discarding")
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			log.Error().Err(nackErr).Msg("Failed to nack malformed job")
		}
		return
	}

	w.qm.active.Add(1)
	defer w.qm.active.Add(-1)

	err := RunWithRetry(ctx, w.handler, &job)
	if err != nil {
		w.qm.failed.Add(1)
		log.Error().
			Err(err).
			Str("event_name", job.EventName).
			Uint64("chain_id", job.ChainID).
			Uint("attempts", job.Retry.Attempts).
			Msg("Job terminally failed after exhausting retries")
	} else {
		w.qm.completed.Add(1)
	}
	metrics.RecordJobAttempt(err != nil)

	// terminal failures are not redelivered, they stay visible via the
	// failed count only
	if ackErr := delivery.Ack(false); ackErr != nil {
		log.Error().Err(ackErr).Msg("Failed to ack job")
	}
}

// RunWithRetry executes the handler under the job's retry policy:
// exponential backoff doubling from the initial delay, bounded attempts.
func RunWithRetry(ctx context.Context, handler JobHandler, job *Job) error {
	policy := job.Retry
	if policy.Attempts == 0 {
		policy = DefaultRetryPolicy()
	}

	return retry.Do(
		func() error {
			return handler(ctx, job)
		},
		retry.Context(ctx),
		retry.Attempts(policy.Attempts),
		retry.Delay(time.Duration(policy.Backoff.Delay)*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().
				Uint("attempt", n+1).
				Uint("max_attempts", policy.Attempts).
				Str("event_name", job.EventName).
				Err(err).
				Msg("Job attempt failed, retrying with exponential backoff")
		}),
	)
}
