package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Hirdyansh9/Orderbook/internal/logging"
	"github.com/Hirdyansh9/Orderbook/internal/models"
)

type Config struct {
	Broker string
	Topic  string
}

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes every stored notification to a topic, keyed by the
// recipient so one user's events stay ordered within a partition.
type Producer struct {
	writer MessageWriter
	topic  string
	logger *logging.Logger
}

func NewProducer(cfg Config, logger *logging.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Broker),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	logger.Infof("Kafka producer initialized with topic: %s", cfg.Topic)
	return NewProducerWithWriter(w, cfg.Topic, logger)
}

func NewProducerWithWriter(w MessageWriter, topic string, logger *logging.Logger) *Producer {
	return &Producer{writer: w, topic: topic, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, n models.Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification %s: %w", n.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(n.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(n.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write notification %s to %s: %w", n.ID, p.topic, err)
	}
	return nil
}

func (p *Producer) Close() {
	if err := p.writer.Close(); err != nil {
		p.logger.Errorf("Kafka producer close failed: %v", err)
	}
}
