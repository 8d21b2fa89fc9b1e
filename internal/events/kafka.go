package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/artisanmarket/cart-backend/internal/cart"
	"github.com/artisanmarket/cart-backend/pkg/config"
)

const headerOperation = "operation"

// KafkaPublisher writes cart events to a single topic, keyed by cart session
// so one session's events stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(cfg config.EventsConfig) (*KafkaPublisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("kafka brokers are required")
	}
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Retry.Max = 3
	sc.Producer.Timeout = cfg.Timeout
	sc.Net.DialTimeout = cfg.Timeout

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisherFromProducer(producer, cfg.Topic)
}

// NewKafkaPublisherFromProducer wraps an existing producer; tests pass sarama mocks.
func NewKafkaPublisherFromProducer(producer sarama.SyncProducer, topic string) (*KafkaPublisher, error) {
	if producer == nil {
		return nil, errors.New("kafka producer is required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event cart.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal cart event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.SessionID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerOperation), Value: []byte(event.Operation.String())},
		},
		Timestamp: event.OccurredAt,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send cart event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
