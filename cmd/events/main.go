// Command events tails the booking event topics and logs each lifecycle
// change. Useful for checking what the API publishes when KAFKA_ENABLED=true.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"slices"
	"syscall"

	"github.com/joho/godotenv"

	"ms-edarshan/internal/config"
	"ms-edarshan/internal/kafka"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{Service: "edarshan-events"})
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	topics := []string{cfg.Kafka.Topics.BookingCreated, cfg.Kafka.Topics.BookingPaid, cfg.Kafka.Topics.BookingExpired}
	if existing, err := kafka.ListTopics(ctx, cfg.Kafka.Brokers); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Could not list topics: %v", err))
	} else {
		for _, topic := range topics {
			if !slices.Contains(existing, topic) {
				log.Warn("KAFKA", fmt.Sprintf("Topic %s does not exist yet; start the API with KAFKA_ENABLED=true to create it", topic))
			}
		}
	}
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topics, "edarshan-events-tail", log)
	defer consumer.Close()

	err := consumer.Run(ctx, func(_ context.Context, e models.BookingEvent) error {
		log.LogBooking(string(e.Type), e.BookingID, fmt.Sprintf("temple=%s status=%s mode=%s tickets=%d total=%.2f %s",
			e.TempleID, e.PaymentStatus, e.PaymentMode, e.Tickets.Total(), e.TotalPrice, e.Currency))
		return nil
	})
	if err != nil {
		log.Fatal("KAFKA", err.Error())
	}
}
