package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/LSUDOKO/DeleGator.AI/internal/config"
	"github.com/LSUDOKO/DeleGator.AI/internal/observability/metrics"
)

// maxQueuePriority is the priority ceiling declared on the queue. AMQP serves
// higher numbers first, the event priority table counts the other way, so
// table priority p maps to AMQP priority maxQueuePriority - p.
const maxQueuePriority = 10

type QueueManager struct {
	cfg     *config.QueueConfig
	conn    *amqp.Connection
	channel *amqp.Channel

	// worker-side attempt counters; waiting comes from the broker
	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url)
	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-max-priority": int32(maxQueuePriority)},
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &QueueManager{
		cfg:     cfg,
		conn:    conn,
		channel: channel,
	}, nil
}

func (qm *QueueManager) Enqueue(ctx context.Context, job *Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = qm.channel.PublishWithContext(
		ctx,
		"", // default exchange
		qm.cfg.QueueName,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Priority:     amqpPriority(job.Priority),
			Body:         body,
		},
	)
	if err != nil {
		metrics.RecordQueueSendError()
		return fmt.Errorf("failed to publish job: %w", err)
	}

	return nil
}

func (qm *QueueManager) JobCounts(ctx context.Context) (JobCounts, error) {
	state, err := qm.channel.QueueDeclarePassive(
		qm.cfg.QueueName,
		true,
		false,
		false,
		false,
		amqp.Table{"x-max-priority": int32(maxQueuePriority)},
	)
	if err != nil {
		return JobCounts{}, fmt.Errorf("failed to inspect queue: %w", err)
	}

	return JobCounts{
		Waiting:   int64(state.Messages),
		Active:    qm.active.Load(),
		Completed: qm.completed.Load(),
		Failed:    qm.failed.Load(),
	}, nil
}

// RecordDepthMetrics pushes the current job counts into the prometheus
// gauges. Meant to run on a poller.
func (qm *QueueManager) RecordDepthMetrics(ctx context.Context) error {
	counts, err := qm.JobCounts(ctx)
	if err != nil {
		return err
	}

	metrics.SetQueueJobCount("waiting", counts.Waiting)
	metrics.SetQueueJobCount("active", counts.Active)
	metrics.SetQueueJobCount("completed", counts.Completed)
	metrics.SetQueueJobCount("failed", counts.Failed)
	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() error {
	log.Info().Msg("Shutting down queue manager")

	if err := qm.channel.Close(); err != nil {
		return err
	}
	return qm.conn.Close()
}

func amqpPriority(priority uint8) uint8 {
	if priority >= maxQueuePriority {
		return 0
	}
	return maxQueuePriority - priority
}
