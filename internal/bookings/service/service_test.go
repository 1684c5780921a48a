package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-edarshan/internal/apperr"
	bookingdb "ms-edarshan/internal/bookings/db"
	bookingredis "ms-edarshan/internal/bookings/redis"
	"ms-edarshan/internal/database"
	"ms-edarshan/internal/kafka"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/payment/storage"
	"ms-edarshan/internal/sse"
	templedb "ms-edarshan/internal/temples/db"
	templeservice "ms-edarshan/internal/temples/service"
	qr "ms-edarshan/internal/tickets/qr_generator"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Schedule(b models.Booking, t models.Temple) bool {
	return m.Called(b, t).Bool(0)
}

// fakeGateway stands in for Stripe. ParseWebhook returns whatever event was
// queued, or rejects the signature "bad".
type fakeGateway struct {
	mu         sync.Mutex
	configured bool
	createErr  error
	requests   []models.CheckoutSessionRequest
	event      *models.PaymentEvent
	state      *models.SessionState
}

func (g *fakeGateway) Configured() bool { return g.configured }

func (g *fakeGateway) Status() models.GatewayStatus {
	return models.GatewayStatus{Configured: g.configured, IsTestKey: g.configured}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req models.CheckoutSessionRequest) (*models.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &models.CheckoutSession{
		ID:        "cs_test_" + req.BookingID,
		URL:       "https://checkout.stripe.com/c/pay/cs_test_" + req.BookingID,
		ExpiresAt: req.ExpiresAt,
	}, nil
}

func (g *fakeGateway) RetrieveSession(_ context.Context, sessionID string) (*models.SessionState, error) {
	if g.state == nil {
		return nil, errors.New("no session")
	}
	return g.state, nil
}

func (g *fakeGateway) ParseWebhook(_ []byte, signature string) (*models.PaymentEvent, error) {
	if signature == "bad" {
		return nil, apperr.Authentication("Webhook signature verification failed", errors.New("signature mismatch"))
	}
	return g.event, nil
}

type fixture struct {
	svc      *BookingService
	store    *bookingdb.DB
	temples  *templeservice.TempleService
	gateway  *fakeGateway
	notifier *MockNotifier
	ledger   *storage.BunStore
	redis    *miniredis.Miniredis
	temple   models.Temple
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, database.CreateSchema(ctx, bunDB))
	t.Cleanup(func() { bunDB.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	temples := templeservice.NewTempleService(&templedb.DB{Bun: bunDB},
		sse.LocalBroadcaster{Emitter: sse.NewVisitorEventEmitter()}, kafka.NoopPublisher{}, logger.NewNop())
	temple, err := temples.CreateTemple(ctx, models.CreateTempleRequest{
		Name:         "Somnath Temple",
		Location:     "Somnath, Gujarat",
		Capacity:     400,
		TicketPrices: &models.PriceTable{Regular: 30, VIP: 150, Senior: 15},
	})
	require.NoError(t, err)

	f := &fixture{
		store:    &bookingdb.DB{Bun: bunDB},
		temples:  temples,
		gateway:  &fakeGateway{configured: true},
		notifier: new(MockNotifier),
		ledger:   storage.NewBunStore(bunDB),
		redis:    mr,
		temple:   *temple,
	}
	f.svc = NewBookingService(Deps{
		DB:       f.store,
		Temples:  temples,
		Gateway:  f.gateway,
		Payments: f.ledger,
		Holds:    bookingredis.NewRedis(client, logger.NewNop()),
		Notifier: f.notifier,
		QR:       qr.NewQRGenerator("test-secret"),
		Logger:   logger.NewNop(),
	}, Options{
		Currency:            "inr",
		FrontendURL:         "https://darshan.example.com",
		PendingTTL:          2 * time.Hour,
		DemoPaymentsEnabled: true,
	})
	return f
}

func input(templeID string) models.BookingInput {
	return models.BookingInput{
		TempleID: templeID,
		Devotee: models.PrimaryDevotee{
			Name:  "Asha Patel",
			Email: "asha@example.com",
			Phone: "9876543210",
			Age:   34,
		},
		AdditionalDevotees: []models.Devotee{{Name: "Ravi Patel", Age: 36}},
		Tickets:            models.TicketCounts{Regular: 2, VIP: 1},
	}
}

func completed(bookingID string) *models.PaymentEvent {
	return &models.PaymentEvent{
		ID:        "evt_" + bookingID,
		Type:      models.EventCheckoutCompleted,
		SessionID: "cs_test_" + bookingID,
		BookingID: bookingID,
		Paid:      true,
	}
}

// ---------------- DEMO PATH ----------------

func TestCreateDemoBooking(t *testing.T) {
	f := setup(t)
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(true).Once()

	booking, err := f.svc.CreateDemoBooking(context.Background(), input(f.temple.ID))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPaid, booking.PaymentStatus)
	assert.Equal(t, models.PaymentModeDemo, booking.PaymentMode)
	assert.Equal(t, 210.0, booking.TotalPrice)
	assert.NotEmpty(t, booking.QRCode)
	require.NotNil(t, booking.Temple)
	assert.Equal(t, "Somnath Temple", booking.Temple.Name)

	payload, err := f.svc.QR.Verify(booking.QRPayload)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, payload.BookingID)
	assert.Equal(t, models.StatusPaid, payload.Status)

	stored, err := f.store.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.QRPayload, stored.QRPayload)
	f.notifier.AssertExpectations(t)
}

func TestCreateDemoBookingDisabled(t *testing.T) {
	f := setup(t)
	f.svc.Options.DemoPaymentsEnabled = false

	_, err := f.svc.CreateDemoBooking(context.Background(), input(f.temple.ID))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	f.notifier.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
}

func TestCreateDemoBookingUnknownTemple(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateDemoBooking(context.Background(), input("no-such-temple"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	all, err := f.store.ListBookings(context.Background(), bookingdb.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateDemoBookingNeedsTickets(t *testing.T) {
	f := setup(t)
	in := input(f.temple.ID)
	in.Tickets = models.TicketCounts{}

	_, err := f.svc.CreateDemoBooking(context.Background(), in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPriceSnapshotSurvivesTempleEdit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(true)

	booking, err := f.svc.CreateDemoBooking(ctx, input(f.temple.ID))
	require.NoError(t, err)

	_, err = f.temples.UpdateTemple(ctx, f.temple.ID, models.UpdateTempleRequest{
		TicketPrices: &models.PriceTable{Regular: 500, VIP: 900},
	})
	require.NoError(t, err)

	stored, err := f.svc.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 210.0, stored.TotalPrice)
	assert.Equal(t, 30.0, stored.UnitPrices.Regular)
}

// ---------------- CHECKOUT PATH ----------------

func TestStartCheckout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)
	assert.Equal(t, "cs_test_"+result.BookingID, result.SessionID)
	assert.Contains(t, result.URL, "checkout.stripe.com")

	booking, err := f.svc.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.PaymentStatus)
	assert.Equal(t, result.SessionID, booking.CheckoutSessionID)
	require.NotNil(t, booking.ExpiresAt)
	assert.Empty(t, booking.QRPayload)

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, int64(21000), req.AmountMinor)
	assert.Equal(t, "Somnath Temple Darshan Ticket", req.ProductName)
	assert.Equal(t, "https://darshan.example.com/payment-success?ticket_id="+booking.ID+"&session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	assert.WithinDuration(t, *booking.ExpiresAt, req.ExpiresAt, time.Second)

	assert.True(t, f.redis.Exists(bookingredis.HoldKey(booking.ID)))

	session, err := f.ledger.GetSession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionOpen, session.Status)
}

func TestStartCheckoutDeletesBookingWhenSessionFails(t *testing.T) {
	f := setup(t)
	f.gateway.createErr = errors.New("stripe down")

	_, err := f.svc.StartCheckout(context.Background(), input(f.temple.ID))
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	all, err := f.store.ListBookings(context.Background(), bookingdb.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStartCheckoutGatewayNotConfigured(t *testing.T) {
	f := setup(t)
	f.gateway.configured = false

	_, err := f.svc.StartCheckout(context.Background(), input(f.temple.ID))
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestStartCheckoutRejectsFreeBooking(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	free, err := f.temples.CreateTemple(ctx, models.CreateTempleRequest{Name: "Pavagadh Temple"})
	require.NoError(t, err)

	_, err = f.svc.StartCheckout(ctx, input(free.ID))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, f.gateway.requests)
}

func TestOversizedTicketCountsAreRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, counts := range []models.TicketCounts{
		{Regular: 1 << 60},
		{VIP: models.MaxTicketsPerTier + 1},
		{Regular: int(^uint(0) >> 1), Senior: 1},
	} {
		in := input(f.temple.ID)
		in.Tickets = counts

		_, err := f.svc.CreateDemoBooking(ctx, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "demo %+v", counts)

		_, err = f.svc.StartCheckout(ctx, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "checkout %+v", counts)
		assert.NotContains(t, apperr.PublicMessage(err), "greater than zero")
	}

	all, err := f.store.ListBookings(ctx, bookingdb.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.gateway.requests)
	f.notifier.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
}

// ---------------- WEBHOOK ----------------

func TestWebhookSettlesOnceAndReplaysAreNoOps(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(true).Once()

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)
	f.gateway.event = completed(result.BookingID)

	outcome, err := f.svc.HandlePaymentWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "paid", outcome.Action)

	booking, err := f.svc.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, booking.PaymentStatus)
	assert.NotEmpty(t, booking.QRCode)
	require.NotNil(t, booking.PaidAt)
	assert.False(t, f.redis.Exists(bookingredis.HoldKey(booking.ID)))

	outcome, err = f.svc.HandlePaymentWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "already_paid", outcome.Action)

	replayed, err := f.svc.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, booking.QRPayload, replayed.QRPayload)

	session, err := f.ledger.GetSession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.Status)

	f.notifier.AssertNumberOfCalls(t, "Schedule", 1)
}

func TestWebhookSettlesWhenNotificationIsRefused(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(false).Once()

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)
	f.gateway.event = completed(result.BookingID)

	outcome, err := f.svc.HandlePaymentWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "paid", outcome.Action)

	booking, err := f.svc.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, booking.PaymentStatus)
	assert.NotEmpty(t, booking.QRPayload)
	f.notifier.AssertExpectations(t)
}

func TestConcurrentWebhooksNotifyOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(true)

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)
	f.gateway.event = completed(result.BookingID)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.HandlePaymentWebhook(ctx, []byte("{}"), "sig")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	f.notifier.AssertNumberOfCalls(t, "Schedule", 1)
}

func TestWebhookBadSignatureChangesNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)
	f.gateway.event = completed(result.BookingID)

	_, err = f.svc.HandlePaymentWebhook(ctx, []byte("{}"), "bad")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	booking, err := f.svc.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.PaymentStatus)
	f.notifier.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
}

func TestWebhookMissingTicketID(t *testing.T) {
	f := setup(t)
	f.gateway.event = completed("")

	_, err := f.svc.HandlePaymentWebhook(context.Background(), []byte("{}"), "sig")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Missing ticketId in session metadata", apperr.PublicMessage(err))
}

func TestWebhookUnknownBookingIsAcknowledged(t *testing.T) {
	f := setup(t)
	f.gateway.event = completed("does-not-exist")

	outcome, err := f.svc.HandlePaymentWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, outcome.Received)
	assert.Equal(t, "booking_not_found", outcome.Action)
}

func TestWebhookUnpaidCompletionWaits(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)
	event := completed(result.BookingID)
	event.Paid = false
	f.gateway.event = event

	outcome, err := f.svc.HandlePaymentWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "awaiting_payment", outcome.Action)

	booking, err := f.svc.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.PaymentStatus)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	f := setup(t)
	f.gateway.event = &models.PaymentEvent{ID: "evt_1", Type: "payment_intent.created"}

	outcome, err := f.svc.HandlePaymentWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "ignored", outcome.Action)
}

// ---------------- EXPIRY ----------------

func TestExpiredBookingIsPaidByLateCompletion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(true).Once()

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)

	f.gateway.event = &models.PaymentEvent{
		ID: "evt_exp", Type: models.EventCheckoutExpired, SessionID: result.SessionID, BookingID: result.BookingID,
	}
	outcome, err := f.svc.HandlePaymentWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "expired", outcome.Action)

	booking, err := f.svc.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, booking.PaymentStatus)

	f.gateway.event = completed(result.BookingID)
	outcome, err = f.svc.HandlePaymentWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "paid", outcome.Action)

	booking, err = f.svc.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, booking.PaymentStatus)
	f.notifier.AssertExpectations(t)
}

func TestExpireStale(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)

	n, err := f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.svc.Now = func() time.Time { return time.Now().UTC().Add(3 * time.Hour) }
	n, err = f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	booking, err := f.svc.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, booking.PaymentStatus)
}

func TestOnHoldExpiredLeavesPaidBookingAlone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(true)

	booking, err := f.svc.CreateDemoBooking(ctx, input(f.temple.ID))
	require.NoError(t, err)

	f.svc.OnHoldExpired(ctx, booking.ID)

	got, err := f.svc.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.PaymentStatus)
}

// ---------------- CONFIRM / ADMIN / QR ----------------

func TestConfirmPaymentReconcilesWithGateway(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(true).Once()

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)

	f.gateway.state = &models.SessionState{ID: result.SessionID, BookingID: result.BookingID, Paid: false}
	booking, err := f.svc.ConfirmPayment(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.PaymentStatus)

	f.gateway.state.Paid = true
	booking, err = f.svc.ConfirmPayment(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, booking.PaymentStatus)

	_, err = f.svc.ConfirmPayment(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.ConfirmPayment(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	f.notifier.AssertExpectations(t)
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(true)

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)

	booking, err := f.svc.UpdateStatus(ctx, result.BookingID, models.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, booking.PaymentStatus)
	assert.NotEmpty(t, booking.QRPayload)

	_, err = f.svc.UpdateStatus(ctx, result.BookingID, models.StatusPending)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.UpdateStatus(ctx, "missing", models.StatusPaid)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteBookingReleasesHold(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	result, err := f.svc.StartCheckout(ctx, input(f.temple.ID))
	require.NoError(t, err)
	require.True(t, f.redis.Exists(bookingredis.HoldKey(result.BookingID)))

	require.NoError(t, f.svc.DeleteBooking(ctx, result.BookingID))
	assert.False(t, f.redis.Exists(bookingredis.HoldKey(result.BookingID)))

	err = f.svc.DeleteBooking(ctx, result.BookingID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestVerifyQR(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.notifier.On("Schedule", mock.Anything, mock.Anything).Return(true)

	booking, err := f.svc.CreateDemoBooking(ctx, input(f.temple.ID))
	require.NoError(t, err)

	result, err := f.svc.VerifyQR(ctx, booking.QRPayload)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, booking.ID, result.Booking.ID)

	other := qr.NewQRGenerator("another-secret")
	forged, err := other.Generate(qr.PayloadFor(*booking, f.temple.Name, models.StatusPaid))
	require.NoError(t, err)
	result, err = f.svc.VerifyQR(ctx, forged.Payload)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Nil(t, result.Booking)
}

func TestListBookingsRejectsUnknownStatus(t *testing.T) {
	f := setup(t)
	_, err := f.svc.ListBookings(context.Background(), bookingdb.ListFilter{Status: "refunded"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSendTestEmailNeedsRecipient(t *testing.T) {
	f := setup(t)
	err := f.svc.SendTestEmail(context.Background(), "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
