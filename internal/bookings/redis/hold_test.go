package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-edarshan/internal/logger"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewRedis(client, logger.NewNop()), mr
}

func TestHoldAndRelease(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Hold(ctx, "b-1", 2*time.Hour))
	assert.True(t, mr.Exists("booking_hold:b-1"))
	assert.Equal(t, 2*time.Hour, mr.TTL("booking_hold:b-1"))

	require.NoError(t, r.Release(ctx, "b-1"))
	assert.False(t, mr.Exists("booking_hold:b-1"))
}

func TestHoldExpires(t *testing.T) {
	r, mr := setupTestRedis(t)
	require.NoError(t, r.Hold(context.Background(), "b-2", time.Minute))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("booking_hold:b-2"))
}

func TestBookingIDFromExpiredKey(t *testing.T) {
	id, ok := BookingIDFromExpiredKey("booking_hold:abc-123")
	assert.True(t, ok)
	assert.Equal(t, "abc-123", id)

	_, ok = BookingIDFromExpiredKey("seat_lock:abc")
	assert.False(t, ok)

	_, ok = BookingIDFromExpiredKey("booking_hold:")
	assert.False(t, ok)
}

func TestSubscribeExpirationsDispatchesHoldKeys(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expired := make(chan string, 4)
	require.NoError(t, r.SubscribeExpirations(ctx, func(_ context.Context, id string) {
		expired <- id
	}))

	// miniredis has no keyspace notifications; publish what Redis would send.
	mr.Publish("__keyevent@0__:expired", "seat_lock:ignored")
	mr.Publish("__keyevent@0__:expired", "booking_hold:b-3")

	select {
	case id := <-expired:
		assert.Equal(t, "b-3", id)
	case <-time.After(2 * time.Second):
		t.Fatal("expiry callback not invoked")
	}
}
