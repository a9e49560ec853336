package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/IBM/sarama"
)

// MessageHandler processes one consumed message.
// If shouldMark is false the offset is not committed and the message may be redelivered.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
}

// Consumer runs a consumer group loop with a pluggable handler
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	topic   string
	groupID string
	ready   chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newSaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	// Tasks enqueued before any worker joined must still run.
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 5
	return cfg
}

// NewConsumer joins the consumer group.
func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	if config.Handler == nil {
		return nil, errors.New("kafka consumer requires a handler")
	}
	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, newSaramaConfig())
	if err != nil {
		return nil, err
	}
	return &Consumer{
		group:   group,
		handler: config.Handler,
		topic:   config.Topic,
		groupID: config.GroupID,
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Start begins consuming and returns once the first session is set up.
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		defer close(c.done)
		for {
			handler := &groupHandler{consumer: c}
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("Error from Kafka consumer: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()

	select {
	case <-c.ready:
		log.Printf("✅ Kafka consumer started (group: %s, topic: %s)", c.groupID, c.topic)
		return nil
	case <-c.done:
		return errors.New("kafka consumer stopped before joining the group")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close leaves the group
func (c *Consumer) Close() error {
	log.Println("Closing Kafka consumer...")
	return c.group.Close()
}

type groupHandler struct {
	consumer *Consumer
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.consumer.once.Do(func() { close(h.consumer.ready) })
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim handles one partition sequentially; parallelism comes from partitions.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			log.Printf("📥 Received Kafka message: partition=%d, offset=%d, key=%s",
				message.Partition, message.Offset, string(message.Key))

			shouldMark, err := h.consumer.handler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				log.Printf("❌ Failed to handle message: %v", err)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// TypedMessageHandler decodes JSON messages into T before processing.
type TypedMessageHandler[T any] struct {
	// Validate checks if the message should be processed
	Validate func(msg *T) bool
	// Process handles the actual message processing
	Process func(ctx context.Context, msg *T) error
	// AlwaysMark marks undecodable or invalid messages so they are skipped
	AlwaysMark bool
}

// HandleMessage implements MessageHandler
func (h *TypedMessageHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("❌ Failed to unmarshal message: %v", err)
		return h.AlwaysMark, nil
	}
	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}
	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}
