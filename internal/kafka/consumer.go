package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
)

// messageReader is the part of *kafka.Reader the consumer drives.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
	logger *logger.Logger
}

// NewConsumer creates a consumer group reader over the booking topics.
func NewConsumer(brokers []string, topics []string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupTopics: topics,
		GroupID:     groupID,
		MinBytes:    10e3, // 10KB
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: log}
}

// Run hands every booking event to handler until ctx is cancelled. A message
// is committed once handler returns nil. Malformed messages are logged and
// committed.
func (c *Consumer) Run(ctx context.Context, handler func(ctx context.Context, event models.BookingEvent) error) error {
	c.logger.LogKafka("CONSUME", "booking events", "consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		event, err := DecodeBookingEvent(msg.Value)
		if err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("Skipping malformed message on %s at offset %d: %v", msg.Topic, msg.Offset, err))
		} else if err := handler(ctx, event); err != nil {
			c.logger.Error("KAFKA", fmt.Sprintf("Handler failed for booking %s: %v", event.BookingID, err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

// DecodeBookingEvent parses one booking event payload.
func DecodeBookingEvent(value []byte) (models.BookingEvent, error) {
	var event models.BookingEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return event, err
	}
	if event.BookingID == "" || event.Type == "" {
		return event, errors.New("event is missing type or bookingId")
	}
	return event, nil
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
