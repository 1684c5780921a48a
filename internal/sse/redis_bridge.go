package sse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
)

const VisitorChannel = "edarshan:visitors"

// Broadcaster delivers a visitor update to every connected dashboard.
type Broadcaster interface {
	Broadcast(ctx context.Context, update models.VisitorUpdate) error
}

// LocalBroadcaster serves a single instance.
type LocalBroadcaster struct {
	Emitter *VisitorEventEmitter
}

func (b LocalBroadcaster) Broadcast(_ context.Context, update models.VisitorUpdate) error {
	b.Emitter.Emit(update)
	return nil
}

// RedisBridge publishes updates on a Redis channel and relays every message
// it receives to the local emitter, so dashboards on all instances see the
// same counts.
type RedisBridge struct {
	Client  *redis.Client
	Emitter *VisitorEventEmitter
	Channel string
	Logger  *logger.Logger
}

func NewRedisBridge(client *redis.Client, emitter *VisitorEventEmitter, log *logger.Logger) *RedisBridge {
	return &RedisBridge{Client: client, Emitter: emitter, Channel: VisitorChannel, Logger: log}
}

func (b *RedisBridge) Broadcast(ctx context.Context, update models.VisitorUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	if err := b.Client.Publish(ctx, b.Channel, payload).Err(); err != nil {
		// Local dashboards still get the update.
		b.Emitter.Emit(update)
		return fmt.Errorf("publish visitor update: %w", err)
	}
	return nil
}

// Run confirms the subscription and then relays channel messages in the
// background until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.Client.Subscribe(ctx, b.Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", b.Channel, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var update models.VisitorUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					b.Logger.Warn("SSE", fmt.Sprintf("Ignoring malformed visitor update: %v", err))
					continue
				}
				b.Emitter.Emit(update)
			}
		}
	}()

	b.Logger.Info("SSE", fmt.Sprintf("Relaying visitor updates from redis channel %s", b.Channel))
	return nil
}
