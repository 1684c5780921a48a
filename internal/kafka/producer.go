package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-edarshan/internal/config"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
)

// Publisher is what the booking and temple services publish through.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, event models.BookingEvent) error
	PublishTempleVisit(ctx context.Context, update models.VisitorUpdate) error
	Close() error
}

type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
	logger *logger.Logger
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Topics: cfg.Topics, logger: log}
}

// Publish keys messages by aggregate id so events for one booking stay ordered.
func (p *Producer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	msgBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	p.logger.LogKafka("PUBLISH", topic, key)

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: msgBytes,
	})
}

func (p *Producer) PublishBookingEvent(ctx context.Context, event models.BookingEvent) error {
	topic := p.topicFor(event.Type)
	if topic == "" {
		return fmt.Errorf("no topic configured for %s", event.Type)
	}
	return p.Publish(ctx, topic, event.BookingID, event)
}

func (p *Producer) PublishTempleVisit(ctx context.Context, update models.VisitorUpdate) error {
	return p.Publish(ctx, p.Topics.TempleVisited, update.TempleID, update)
}

func (p *Producer) topicFor(eventType models.BookingEventType) string {
	switch eventType {
	case models.BookingCreated:
		return p.Topics.BookingCreated
	case models.BookingPaid:
		return p.Topics.BookingPaid
	case models.BookingExpired:
		return p.Topics.BookingExpired
	}
	return ""
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NoopPublisher is used when KAFKA_ENABLED is false.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingEvent(context.Context, models.BookingEvent) error { return nil }
func (NoopPublisher) PublishTempleVisit(context.Context, models.VisitorUpdate) error  { return nil }
func (NoopPublisher) Close() error                                                  { return nil }
