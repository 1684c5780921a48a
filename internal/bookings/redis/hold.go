package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-edarshan/internal/logger"
)

const holdKeyPrefix = "booking_hold:"

// HoldStore tracks how long a pending booking may wait for payment.
type HoldStore interface {
	Hold(ctx context.Context, bookingID string, ttl time.Duration) error
	Release(ctx context.Context, bookingID string) error
}

type Redis struct {
	Client *redis.Client
	Logger *logger.Logger
}

func NewRedis(client *redis.Client, log *logger.Logger) *Redis {
	return &Redis{Client: client, Logger: log}
}

func HoldKey(bookingID string) string {
	return holdKeyPrefix + bookingID
}

// Hold starts (or restarts) the payment window for a booking. When the key
// expires Redis emits a keyevent that SubscribeExpirations turns into an
// expiry of the booking.
func (r *Redis) Hold(ctx context.Context, bookingID string, ttl time.Duration) error {
	if err := r.Client.Set(ctx, HoldKey(bookingID), time.Now().UTC().Add(ttl).Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("hold booking %s: %w", bookingID, err)
	}
	return nil
}

// Release drops the hold once the booking is settled.
func (r *Redis) Release(ctx context.Context, bookingID string) error {
	if err := r.Client.Del(ctx, HoldKey(bookingID)).Err(); err != nil {
		return fmt.Errorf("release booking %s: %w", bookingID, err)
	}
	return nil
}

// EnableExpiryEvents turns on keyevent notifications for expired keys.
// Managed Redis offerings often forbid CONFIG SET; the DB sweeper covers
// that case so the failure is only logged.
func (r *Redis) EnableExpiryEvents(ctx context.Context) {
	if err := r.Client.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		r.Logger.Warn("REDIS", fmt.Sprintf("Failed to enable keyspace notifications: %v", err))
		return
	}
	r.Logger.Info("REDIS", "Keyspace notifications enabled for expired events")
}

// SubscribeExpirations calls onExpired with the booking id of every hold key
// that expires, until ctx is cancelled.
func (r *Redis) SubscribeExpirations(ctx context.Context, onExpired func(ctx context.Context, bookingID string)) error {
	channel := fmt.Sprintf("__keyevent@%d__:expired", r.Client.Options().DB)
	pubsub := r.Client.PSubscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	r.Logger.Info("REDIS", fmt.Sprintf("Subscribed to Redis keyevent expired notifications (DB %d)", r.Client.Options().DB))

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
				bookingID, ok := BookingIDFromExpiredKey(msg.Payload)
				if !ok {
					continue
				}
				r.Logger.LogBooking("HOLD_EXPIRED", bookingID, "payment window closed")
				onExpired(ctx, bookingID)
			}
		}
	}()
	return nil
}

func BookingIDFromExpiredKey(key string) (string, bool) {
	if !strings.HasPrefix(key, holdKeyPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(key, holdKeyPrefix)
	return id, id != ""
}

// NoopHoldStore is used when Redis is not configured; the sweeper alone
// expires bookings then.
type NoopHoldStore struct{}

func (NoopHoldStore) Hold(context.Context, string, time.Duration) error { return nil }
func (NoopHoldStore) Release(context.Context, string) error             { return nil }
