package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
)

// Producer publishes JSON messages synchronously.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects a sync producer to brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	p, err := sarama.NewSyncProducer(brokers, newSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Producer{producer: p, topic: topic}, nil
}

// NewProducerFrom wraps an existing sarama producer (tests use sarama/mocks).
func NewProducerFrom(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

// PublishJSON marshals v and sends it keyed by key.
func (p *Producer) PublishJSON(key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *Producer) Close() error {
	return p.producer.Close()
}
