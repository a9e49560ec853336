package queue

import (
	"context"
	"log"
	"sync"

	"captionsearch/shared/kafka"
	"captionsearch/types"
)

// KafkaConfig configures the broker-backed queue.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Kafka publishes tasks to a topic and, once started, consumes them as part of a
// consumer group. Tasks are keyed by job id so a job's tasks share a partition.
type Kafka struct {
	cfg      KafkaConfig
	producer *kafka.Producer

	mu       sync.Mutex
	consumer *kafka.Consumer
}

// NewKafka connects the producer side. The consumer joins the group on Start.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	producer, err := kafka.NewProducer(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, err
	}
	return &Kafka{cfg: cfg, producer: producer}, nil
}

func (q *Kafka) Enqueue(ctx context.Context, task types.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := task.JobID
	if key == "" {
		key = task.Owner
	}
	return q.producer.PublishJSON(key, task)
}

func (q *Kafka) Start(ctx context.Context, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.consumer != nil {
		return nil
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: q.cfg.Brokers,
		Topic:   q.cfg.Topic,
		GroupID: q.cfg.GroupID,
		Handler: TaskMessageHandler(handler),
	})
	if err != nil {
		return err
	}
	if err := consumer.Start(ctx); err != nil {
		_ = consumer.Close()
		return err
	}
	q.consumer = consumer
	return nil
}

// TaskMessageHandler adapts a Handler to the typed Kafka handler. Unknown or
// malformed tasks are marked and skipped.
func TaskMessageHandler(handler Handler) *kafka.TypedMessageHandler[types.Task] {
	safe := Safe(handler)
	return &kafka.TypedMessageHandler[types.Task]{
		Validate: func(msg *types.Task) bool {
			switch msg.Name {
			case types.TaskExtractCaptions, types.TaskArchiveFile:
				return true
			}
			log.Printf("⚠️  Skipping task with unknown name %q", msg.Name)
			return false
		},
		Process: func(ctx context.Context, msg *types.Task) error {
			return safe(ctx, *msg)
		},
		AlwaysMark: true,
	}
}

func (q *Kafka) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	var firstErr error
	if q.consumer != nil {
		firstErr = q.consumer.Close()
	}
	if err := q.producer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
