package db_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-edarshan/internal/bookings/db"
	"ms-edarshan/internal/database"
	"ms-edarshan/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB, models.Temple) {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, database.CreateSchema(context.Background(), bunDB))
	t.Cleanup(func() { bunDB.Close() })

	now := time.Now().UTC()
	temple := models.Temple{
		ID:           uuid.NewString(),
		Name:         "Somnath Temple",
		Location:     "Somnath, Gujarat",
		Capacity:     400,
		TicketPrices: models.PriceTable{Regular: 30, VIP: 150, Senior: 15},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = bunDB.NewInsert().Model(&temple).Exec(context.Background())
	require.NoError(t, err)

	return &db.DB{Bun: bunDB}, bunDB, temple
}

func newBooking(templeID string, status models.BookingStatus) *models.Booking {
	return &models.Booking{
		ID:            uuid.NewString(),
		TempleID:      templeID,
		DevoteeName:   "Asha Patel",
		Email:         "asha@example.com",
		Phone:         "9876543210",
		Age:           34,
		Tickets:       models.TicketCounts{Regular: 2, Senior: 1},
		UnitPrices:    models.PriceTable{Regular: 30, VIP: 150, Senior: 15},
		TotalPrice:    75,
		Currency:      "inr",
		PaymentStatus: status,
		PaymentMode:   models.PaymentModeCheckout,
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	store, _, temple := setupTestDB(t)
	ctx := context.Background()

	b := newBooking(temple.ID, models.StatusPending)
	b.AdditionalDevotees = []models.Devotee{{Name: "Ravi Patel", Age: 36}}
	require.NoError(t, store.CreateBooking(ctx, b))

	got, err := store.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.DevoteeName, got.DevoteeName)
	assert.Equal(t, 75.0, got.TotalPrice)
	assert.Equal(t, models.TicketCounts{Regular: 2, Senior: 1}, got.Tickets)
	assert.Equal(t, []models.Devotee{{Name: "Ravi Patel", Age: 36}}, got.AdditionalDevotees)
	require.NotNil(t, got.Temple)
	assert.Equal(t, "Somnath Temple", got.Temple.Name)

	_, err = store.GetBookingByID(ctx, "missing")
	assert.ErrorIs(t, err, db.ErrBookingNotFound)
}

func TestMarkPaidIsConditional(t *testing.T) {
	store, _, temple := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	b := newBooking(temple.ID, models.StatusPending)
	require.NoError(t, store.CreateBooking(ctx, b))

	won, err := store.MarkPaid(ctx, b.ID, `{"bookingId":"x"}`, "data:image/png;base64,AAA", now)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = store.MarkPaid(ctx, b.ID, "other", "other", now)
	require.NoError(t, err)
	assert.False(t, won, "second settlement must not win")

	got, err := store.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.PaymentStatus)
	assert.Equal(t, `{"bookingId":"x"}`, got.QRPayload)
	require.NotNil(t, got.PaidAt)
}

func TestConcurrentMarkPaidHasOneWinner(t *testing.T) {
	store, _, temple := setupTestDB(t)
	ctx := context.Background()

	b := newBooking(temple.ID, models.StatusPending)
	require.NoError(t, store.CreateBooking(ctx, b))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := store.MarkPaid(ctx, b.ID, "p", "q", time.Now().UTC())
			assert.NoError(t, err)
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestExpiredBookingCanStillBePaid(t *testing.T) {
	store, _, temple := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	b := newBooking(temple.ID, models.StatusPending)
	require.NoError(t, store.CreateBooking(ctx, b))

	expired, err := store.MarkExpired(ctx, b.ID, now)
	require.NoError(t, err)
	assert.True(t, expired)

	expired, err = store.MarkExpired(ctx, b.ID, now)
	require.NoError(t, err)
	assert.False(t, expired)

	won, err := store.MarkPaid(ctx, b.ID, "p", "q", now)
	require.NoError(t, err)
	assert.True(t, won)

	expired, err = store.MarkExpired(ctx, b.ID, now)
	require.NoError(t, err)
	assert.False(t, expired, "paid bookings never expire")
}

func TestListStalePending(t *testing.T) {
	store, _, temple := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	stale := newBooking(temple.ID, models.StatusPending)
	stale.ExpiresAt = &past
	fresh := newBooking(temple.ID, models.StatusPending)
	fresh.ExpiresAt = &future
	paid := newBooking(temple.ID, models.StatusPaid)
	paid.ExpiresAt = &past

	for _, b := range []*models.Booking{stale, fresh, paid} {
		require.NoError(t, store.CreateBooking(ctx, b))
	}

	ids, err := store.ListStalePending(ctx, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{stale.ID}, ids)
}

func TestListBookingsFilters(t *testing.T) {
	store, _, temple := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.CreateBooking(ctx, newBooking(temple.ID, models.StatusPending)))
	require.NoError(t, store.CreateBooking(ctx, newBooking(temple.ID, models.StatusPaid)))
	require.NoError(t, store.CreateBooking(ctx, newBooking(temple.ID, models.StatusPaid)))

	all, err := store.ListBookings(ctx, db.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	paid, err := store.ListBookings(ctx, db.ListFilter{Status: models.StatusPaid})
	require.NoError(t, err)
	assert.Len(t, paid, 2)

	page, err := store.ListBookings(ctx, db.ListFilter{TempleID: temple.ID, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSetCheckoutSessionAndDelete(t *testing.T) {
	store, _, temple := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	b := newBooking(temple.ID, models.StatusPending)
	require.NoError(t, store.CreateBooking(ctx, b))

	require.NoError(t, store.SetCheckoutSession(ctx, b.ID, "cs_test_123", now))
	got, err := store.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", got.CheckoutSessionID)
	assert.ErrorIs(t, store.SetCheckoutSession(ctx, "missing", "cs", now), db.ErrBookingNotFound)

	require.NoError(t, store.DeleteBooking(ctx, b.ID))
	assert.ErrorIs(t, store.DeleteBooking(ctx, b.ID), db.ErrBookingNotFound)
}
