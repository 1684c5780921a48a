package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ms-edarshan/internal/apperr"
	bookingdb "ms-edarshan/internal/bookings/db"
	bookingredis "ms-edarshan/internal/bookings/redis"
	"ms-edarshan/internal/kafka"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/payment/storage"
	"ms-edarshan/internal/pricing"
	qr "ms-edarshan/internal/tickets/qr_generator"
	"ms-edarshan/internal/utils"
)

// Stripe only accepts session expiries in this window.
const (
	minCheckoutWindow = 30 * time.Minute
	maxCheckoutWindow = 24 * time.Hour
	sweepBatchSize    = 100
)

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, f bookingdb.ListFilter) ([]models.Booking, error)
	SetCheckoutSession(ctx context.Context, id, sessionID string, at time.Time) error
	MarkPaid(ctx context.Context, id, qrPayload, qrCode string, at time.Time) (bool, error)
	MarkExpired(ctx context.Context, id string, at time.Time) (bool, error)
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	DeleteBooking(ctx context.Context, id string) error
}

type TempleLookup interface {
	GetTemple(ctx context.Context, id string) (*models.Temple, error)
}

type PaymentGateway interface {
	Configured() bool
	Status() models.GatewayStatus
	CreateCheckoutSession(ctx context.Context, req models.CheckoutSessionRequest) (*models.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*models.SessionState, error)
	ParseWebhook(payload []byte, signature string) (*models.PaymentEvent, error)
}

// Notifier schedules a confirmation without waiting for delivery.
type Notifier interface {
	Schedule(b models.Booking, t models.Temple) bool
}

type TestMailer interface {
	SendTestEmail(ctx context.Context, to string) error
}

type Options struct {
	Currency            string
	FrontendURL         string
	PendingTTL          time.Duration
	DemoPaymentsEnabled bool
	TestRecipient       string
}

type BookingService struct {
	DB       BookingStore
	Temples  TempleLookup
	Gateway  PaymentGateway
	Payments storage.Store
	Holds    bookingredis.HoldStore
	Notifier Notifier
	Mailer   TestMailer
	Events   kafka.Publisher
	QR       *qr.QRGenerator
	Logger   *logger.Logger
	Options  Options
	Now      func() time.Time

	tracer trace.Tracer
}

// Deps groups the collaborators; nil optional ones are replaced with no-ops.
type Deps struct {
	DB       BookingStore
	Temples  TempleLookup
	Gateway  PaymentGateway
	Payments storage.Store
	Holds    bookingredis.HoldStore
	Notifier Notifier
	Mailer   TestMailer
	Events   kafka.Publisher
	QR       *qr.QRGenerator
	Logger   *logger.Logger
}

func NewBookingService(deps Deps, opts Options) *BookingService {
	if deps.Payments == nil {
		deps.Payments = storage.NoopStore{}
	}
	if deps.Holds == nil {
		deps.Holds = bookingredis.NoopHoldStore{}
	}
	if deps.Events == nil {
		deps.Events = kafka.NoopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if opts.Currency == "" {
		opts.Currency = "inr"
	}
	return &BookingService{
		DB:       deps.DB,
		Temples:  deps.Temples,
		Gateway:  deps.Gateway,
		Payments: deps.Payments,
		Holds:    deps.Holds,
		Notifier: deps.Notifier,
		Mailer:   deps.Mailer,
		Events:   deps.Events,
		QR:       deps.QR,
		Logger:   deps.Logger,
		Options:  opts,
		Now:      func() time.Time { return time.Now().UTC() },
		tracer:   otel.Tracer("ms-edarshan/bookings"),
	}
}

// ---------------- CREATION ----------------

// CreateDemoBooking issues a paid booking without taking money. The id is
// generated up front so the QR can be computed before the single insert.
func (s *BookingService) CreateDemoBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "bookings.CreateDemoBooking")
	defer span.End()

	if !s.Options.DemoPaymentsEnabled {
		return nil, apperr.Forbidden("Demo payments are disabled")
	}

	temple, err := s.Temples.GetTemple(ctx, in.TempleID)
	if err != nil {
		return nil, fail(span, err)
	}

	booking, err := s.newBooking(in, temple, models.PaymentModeDemo, models.StatusPaid)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.String("booking.id", booking.ID))

	code, err := s.QR.Generate(qr.PayloadFor(*booking, temple.Name, models.StatusPaid))
	if err != nil {
		return nil, fail(span, apperr.Internal("Failed to generate QR code", err))
	}
	paidAt := booking.CreatedAt
	booking.QRPayload = code.Payload
	booking.QRCode = code.DataURL
	booking.PaidAt = &paidAt

	if err := s.DB.CreateBooking(ctx, booking); err != nil {
		return nil, fail(span, apperr.Internal("Failed to create booking", err))
	}
	booking.Temple = temple

	s.Logger.Warn("BOOKING", fmt.Sprintf("Demo payment path used for booking %s; no money was taken", booking.ID))
	s.Logger.LogBooking("CREATED", booking.ID, fmt.Sprintf("demo booking at %s, total %.2f %s", temple.Name, booking.TotalPrice, booking.Currency))

	s.publish(ctx, models.BookingCreated, *booking)
	s.publish(ctx, models.BookingPaid, *booking)
	s.notify(*booking, *temple)
	return booking, nil
}

// StartCheckout persists a pending booking and opens a hosted checkout
// session for it. A booking whose session could not be created is removed.
func (s *BookingService) StartCheckout(ctx context.Context, in models.BookingInput) (*models.CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "bookings.StartCheckout")
	defer span.End()

	if s.Gateway == nil || !s.Gateway.Configured() {
		return nil, apperr.Unavailable("Payment gateway is not configured", nil)
	}

	temple, err := s.Temples.GetTemple(ctx, in.TempleID)
	if err != nil {
		return nil, fail(span, err)
	}

	booking, err := s.newBooking(in, temple, models.PaymentModeCheckout, models.StatusPending)
	if err != nil {
		return nil, fail(span, err)
	}
	amount := pricing.ToMinorUnits(booking.TotalPrice)
	if amount <= 0 {
		return nil, apperr.Validation("Total amount must be greater than zero")
	}
	span.SetAttributes(attribute.String("booking.id", booking.ID), attribute.Int64("booking.amount_minor", amount))

	window := utils.ClampDuration(s.Options.PendingTTL, minCheckoutWindow, maxCheckoutWindow)
	expiresAt := booking.CreatedAt.Add(window)
	booking.ExpiresAt = &expiresAt

	if err := s.DB.CreateBooking(ctx, booking); err != nil {
		return nil, fail(span, apperr.Internal("Failed to create booking", err))
	}

	session, err := s.Gateway.CreateCheckoutSession(ctx, models.CheckoutSessionRequest{
		BookingID:     booking.ID,
		ProductName:   temple.Name + " Darshan Ticket",
		AmountMinor:   amount,
		Currency:      booking.Currency,
		CustomerEmail: booking.Email,
		SuccessURL:    fmt.Sprintf("%s/payment-success?ticket_id=%s&session_id={CHECKOUT_SESSION_ID}", s.Options.FrontendURL, booking.ID),
		CancelURL:     s.Options.FrontendURL + "/e-darshan-ticket-booking",
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		if delErr := s.DB.DeleteBooking(ctx, booking.ID); delErr != nil {
			s.Logger.Error("BOOKING", fmt.Sprintf("Failed to remove booking %s after checkout failure: %v", booking.ID, delErr))
		}
		return nil, fail(span, apperr.Internal("Checkout session failed", err))
	}

	now := s.Now()
	if err := s.DB.SetCheckoutSession(ctx, booking.ID, session.ID, now); err != nil {
		// The webhook still finds the booking through session metadata.
		s.Logger.Warn("BOOKING", fmt.Sprintf("Failed to store session %s on booking %s: %v", session.ID, booking.ID, err))
	}
	booking.CheckoutSessionID = session.ID

	if err := s.Payments.SaveSession(ctx, &models.PaymentSession{
		SessionID:   session.ID,
		BookingID:   booking.ID,
		AmountMinor: amount,
		Currency:    booking.Currency,
		Status:      models.SessionOpen,
		URL:         session.URL,
	}); err != nil {
		s.Logger.Warn("PAYMENT", fmt.Sprintf("Failed to record session %s: %v", session.ID, err))
	}

	if err := s.Holds.Hold(ctx, booking.ID, expiresAt.Sub(now)); err != nil {
		s.Logger.Warn("BOOKING", fmt.Sprintf("Failed to place hold on booking %s, sweeper will expire it: %v", booking.ID, err))
	}

	s.Logger.LogBooking("PENDING", booking.ID, fmt.Sprintf("checkout session %s for %.2f %s at %s", session.ID, booking.TotalPrice, booking.Currency, temple.Name))
	s.publish(ctx, models.BookingCreated, *booking)

	return &models.CheckoutResult{URL: session.URL, BookingID: booking.ID, SessionID: session.ID}, nil
}

func (s *BookingService) newBooking(in models.BookingInput, temple *models.Temple, mode models.PaymentMode, status models.BookingStatus) (*models.Booking, error) {
	total, err := pricing.Calculate(in.Tickets, temple.TicketPrices)
	if err != nil {
		return nil, err
	}
	if in.Tickets.Total() < 1 {
		return nil, apperr.Validation("At least one ticket is required")
	}

	now := s.Now()
	additional := in.AdditionalDevotees
	if additional == nil {
		additional = []models.Devotee{}
	}
	return &models.Booking{
		ID:                 uuid.NewString(),
		TempleID:           temple.ID,
		DevoteeName:        in.Devotee.Name,
		Email:              in.Devotee.Email,
		Phone:              in.Devotee.Phone,
		Age:                in.Devotee.Age,
		Address:            in.Devotee.Address,
		AdditionalDevotees: additional,
		Tickets:            in.Tickets,
		UnitPrices:         temple.TicketPrices,
		TotalPrice:         total,
		Currency:           s.Options.Currency,
		PaymentStatus:      status,
		PaymentMode:        mode,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// ---------------- SETTLEMENT ----------------

// HandlePaymentWebhook applies a signed gateway callback. Deliveries for
// unknown bookings and repeated deliveries are acknowledged without effect.
func (s *BookingService) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) (*models.WebhookOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "bookings.HandlePaymentWebhook")
	defer span.End()

	if s.Gateway == nil {
		return nil, apperr.Unavailable("Webhook processing error", nil)
	}
	event, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.String("payment.event_type", string(event.Type)), attribute.String("payment.event_id", event.ID))

	outcome := &models.WebhookOutcome{Received: true, EventType: string(event.Type), BookingID: event.BookingID}

	switch event.Type {
	case models.EventCheckoutCompleted, models.EventAsyncPaymentSucceeded:
		if event.BookingID == "" {
			return nil, apperr.Validation("Missing ticketId in session metadata")
		}
		if !event.Paid {
			// Delayed payment methods complete the session before the money
			// arrives; async_payment_succeeded follows.
			outcome.Action = "awaiting_payment"
			break
		}
		action, err := s.settle(ctx, event.BookingID)
		if err != nil {
			return nil, fail(span, err)
		}
		outcome.Action = action
		s.recordSessionEvent(ctx, event, models.SessionCompleted)

	case models.EventCheckoutExpired, models.EventAsyncPaymentFailed:
		if event.BookingID == "" {
			return nil, apperr.Validation("Missing ticketId in session metadata")
		}
		expired, err := s.ExpireBooking(ctx, event.BookingID)
		if err != nil {
			return nil, fail(span, err)
		}
		outcome.Action = "unchanged"
		if expired {
			outcome.Action = "expired"
		}
		s.recordSessionEvent(ctx, event, models.SessionExpired)

	default:
		outcome.Action = "ignored"
	}

	s.Logger.LogPayment("WEBHOOK", event.ID, fmt.Sprintf("%s booking=%s action=%s", event.Type, event.BookingID, outcome.Action))
	return outcome, nil
}

// settle performs pending|expired -> paid. Only the caller whose conditional
// update wins releases the hold and schedules the confirmation.
func (s *BookingService) settle(ctx context.Context, bookingID string) (string, error) {
	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if errors.Is(err, bookingdb.ErrBookingNotFound) {
		s.Logger.Warn("PAYMENT", fmt.Sprintf("Payment completed for unknown booking %s", bookingID))
		return "booking_not_found", nil
	}
	if err != nil {
		return "", apperr.Internal("Failed to load booking", err)
	}
	if booking.PaymentStatus == models.StatusPaid {
		return "already_paid", nil
	}

	temple := booking.Temple
	if temple == nil {
		temple, err = s.Temples.GetTemple(ctx, booking.TempleID)
		if err != nil {
			return "", apperr.Internal("Failed to load temple for booking", err)
		}
	}

	code, err := s.QR.Generate(qr.PayloadFor(*booking, temple.Name, models.StatusPaid))
	if err != nil {
		return "", apperr.Internal("Failed to generate QR code", err)
	}

	now := s.Now()
	won, err := s.DB.MarkPaid(ctx, booking.ID, code.Payload, code.DataURL, now)
	if err != nil {
		return "", apperr.Internal("Failed to mark booking paid", err)
	}
	if !won {
		return "already_paid", nil
	}

	if booking.PaymentStatus == models.StatusExpired {
		s.Logger.Warn("PAYMENT", fmt.Sprintf("Late payment settled expired booking %s", booking.ID))
	}
	booking.PaymentStatus = models.StatusPaid
	booking.QRPayload = code.Payload
	booking.QRCode = code.DataURL
	booking.PaidAt = &now
	booking.UpdatedAt = now
	booking.Temple = temple

	if err := s.Holds.Release(ctx, booking.ID); err != nil {
		s.Logger.Warn("BOOKING", fmt.Sprintf("Failed to release hold for %s: %v", booking.ID, err))
	}
	s.Logger.LogBooking("PAID", booking.ID, fmt.Sprintf("%.2f %s at %s", booking.TotalPrice, booking.Currency, temple.Name))
	s.publish(ctx, models.BookingPaid, *booking)
	s.notify(*booking, *temple)
	return "paid", nil
}

func (s *BookingService) recordSessionEvent(ctx context.Context, event *models.PaymentEvent, status models.PaymentSessionStatus) {
	if event.SessionID == "" {
		return
	}
	applied, err := s.Payments.RecordEvent(ctx, event.SessionID, event.ID, status, s.Now())
	if err != nil {
		s.Logger.Warn("PAYMENT", fmt.Sprintf("Failed to record event %s on session %s: %v", event.ID, event.SessionID, err))
		return
	}
	if !applied {
		s.Logger.Debug("PAYMENT", fmt.Sprintf("Event %s already recorded for session %s", event.ID, event.SessionID))
	}
}

// ConfirmPayment backs the success redirect. When the webhook has not landed
// yet it asks the gateway directly so the devotee sees the final status.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID string) (*models.Booking, error) {
	if bookingID == "" {
		return nil, apperr.Validation("ticket_id required")
	}
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.StatusPaid || booking.CheckoutSessionID == "" ||
		s.Gateway == nil || !s.Gateway.Configured() {
		return booking, nil
	}

	state, err := s.Gateway.RetrieveSession(ctx, booking.CheckoutSessionID)
	if err != nil {
		s.Logger.Warn("PAYMENT", fmt.Sprintf("Could not reconcile booking %s with session %s: %v", booking.ID, booking.CheckoutSessionID, err))
		return booking, nil
	}
	if state.BookingID != "" && state.BookingID != booking.ID {
		s.Logger.LogSecurity("SESSION_MISMATCH", fmt.Sprintf("session %s belongs to %s, not %s", state.ID, state.BookingID, booking.ID))
		return booking, nil
	}
	if !state.Paid {
		return booking, nil
	}
	if _, err := s.settle(ctx, booking.ID); err != nil {
		return nil, err
	}
	return s.GetBooking(ctx, booking.ID)
}

// ---------------- EXPIRY ----------------

// ExpireBooking closes the payment window of a pending booking. It reports
// whether this call made the change.
func (s *BookingService) ExpireBooking(ctx context.Context, bookingID string) (bool, error) {
	expired, err := s.DB.MarkExpired(ctx, bookingID, s.Now())
	if err != nil {
		return false, apperr.Internal("Failed to expire booking", err)
	}
	if !expired {
		return false, nil
	}

	if err := s.Holds.Release(ctx, bookingID); err != nil {
		s.Logger.Warn("BOOKING", fmt.Sprintf("Failed to release hold for %s: %v", bookingID, err))
	}
	s.Logger.LogBooking("EXPIRED", bookingID, "payment window closed without payment")

	if booking, err := s.DB.GetBookingByID(ctx, bookingID); err == nil {
		s.publish(ctx, models.BookingExpired, *booking)
	}
	return true, nil
}

// OnHoldExpired is the callback for Redis hold expiry notifications.
func (s *BookingService) OnHoldExpired(ctx context.Context, bookingID string) {
	if _, err := s.ExpireBooking(ctx, bookingID); err != nil {
		s.Logger.Error("BOOKING", fmt.Sprintf("Failed to expire booking %s on hold expiry: %v", bookingID, err))
	}
}

// ExpireStale expires every pending booking whose deadline has passed.
func (s *BookingService) ExpireStale(ctx context.Context) (int, error) {
	count := 0
	for {
		ids, err := s.DB.ListStalePending(ctx, s.Now(), sweepBatchSize)
		if err != nil {
			return count, apperr.Internal("Failed to list stale bookings", err)
		}
		changed := 0
		for _, id := range ids {
			expired, err := s.ExpireBooking(ctx, id)
			if err != nil {
				return count, err
			}
			if expired {
				changed++
			}
		}
		count += changed
		if len(ids) < sweepBatchSize || changed == 0 {
			return count, nil
		}
	}
}

// RunExpirySweeper calls ExpireStale every interval until ctx is done.
func (s *BookingService) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Logger.LogProcess("EXPIRY_SWEEPER", fmt.Sprintf("started, interval %s", interval))
	for {
		select {
		case <-ctx.Done():
			s.Logger.LogProcess("EXPIRY_SWEEPER", "stopped")
			return
		case <-ticker.C:
			n, err := s.ExpireStale(ctx)
			if err != nil {
				s.Logger.Error("BOOKING", fmt.Sprintf("Expiry sweep failed: %v", err))
				continue
			}
			if n > 0 {
				s.Logger.Info("BOOKING", fmt.Sprintf("Expiry sweep expired %d bookings", n))
			}
		}
	}
}

// ---------------- QUERIES & ADMIN ----------------

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.DB.GetBookingByID(ctx, id)
	if errors.Is(err, bookingdb.ErrBookingNotFound) {
		return nil, apperr.NotFound("Booking not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch booking", err)
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, f bookingdb.ListFilter) ([]models.Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("unknown payment status %q", f.Status)
	}
	bookings, err := s.DB.ListBookings(ctx, f)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch bookings", err)
	}
	return bookings, nil
}

// UpdateStatus is the admin override. It follows the same lifecycle rules
// as the payment flow: paid never regresses and pending cannot be restored.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.PaymentStatus.CanTransitionTo(status) {
		return nil, apperr.Validation("Cannot change payment status from %s to %s", booking.PaymentStatus, status)
	}
	if booking.PaymentStatus == status {
		return booking, nil
	}

	switch status {
	case models.StatusPaid:
		if _, err := s.settle(ctx, id); err != nil {
			return nil, err
		}
	case models.StatusExpired:
		if _, err := s.ExpireBooking(ctx, id); err != nil {
			return nil, err
		}
	}
	s.Logger.LogBooking("ADMIN_UPDATE", id, fmt.Sprintf("%s -> %s", booking.PaymentStatus, status))
	return s.GetBooking(ctx, id)
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	err := s.DB.DeleteBooking(ctx, id)
	if errors.Is(err, bookingdb.ErrBookingNotFound) {
		return apperr.NotFound("Booking not found")
	}
	if err != nil {
		return apperr.Internal("Failed to delete booking", err)
	}
	if err := s.Holds.Release(ctx, id); err != nil {
		s.Logger.Warn("BOOKING", fmt.Sprintf("Failed to release hold for deleted booking %s: %v", id, err))
	}
	s.Logger.LogBooking("DELETED", id, "booking removed by admin")
	return nil
}

// VerifyQR checks a scanned payload against the signature and the stored booking.
func (s *BookingService) VerifyQR(ctx context.Context, raw string) (*models.QRVerification, error) {
	payload, err := s.QR.Verify(raw)
	if err != nil {
		s.Logger.LogSecurity("QR_REJECTED", err.Error())
		return &models.QRVerification{Valid: false, Reason: "QR code was not issued by this service"}, nil
	}

	booking, err := s.DB.GetBookingByID(ctx, payload.BookingID)
	if errors.Is(err, bookingdb.ErrBookingNotFound) {
		return &models.QRVerification{Valid: false, Reason: "Booking not found"}, nil
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch booking", err)
	}

	result := &models.QRVerification{Booking: booking}
	switch {
	case booking.PaymentStatus != models.StatusPaid:
		result.Reason = fmt.Sprintf("Booking is %s", booking.PaymentStatus)
	case booking.QRPayload != raw:
		result.Reason = "QR code does not match the booking"
	default:
		result.Valid = true
	}
	return result, nil
}

func (s *BookingService) GatewayStatus() models.GatewayStatus {
	if s.Gateway == nil {
		return models.GatewayStatus{}
	}
	return s.Gateway.Status()
}

func (s *BookingService) SendTestEmail(ctx context.Context, to string) error {
	if to == "" {
		to = s.Options.TestRecipient
	}
	if to == "" {
		return apperr.Validation("email is required")
	}
	if s.Mailer == nil {
		return apperr.Unavailable("Email is not configured", nil)
	}
	if err := s.Mailer.SendTestEmail(ctx, to); err != nil {
		s.Logger.Error("NOTIFY", fmt.Sprintf("Test email to %s failed: %v", to, err))
		return err
	}
	s.Logger.LogNotification("TEST_EMAIL", "-", fmt.Sprintf("sent to %s", to))
	return nil
}

// ---------------- HELPERS ----------------

func (s *BookingService) notify(b models.Booking, t models.Temple) {
	if s.Notifier == nil {
		return
	}
	if !s.Notifier.Schedule(b, t) {
		s.Logger.Warn("NOTIFY", fmt.Sprintf("Confirmation for booking %s was not queued", b.ID))
	}
}

func (s *BookingService) publish(ctx context.Context, eventType models.BookingEventType, b models.Booking) {
	if err := s.Events.PublishBookingEvent(ctx, models.NewBookingEvent(eventType, b, s.Now())); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", eventType, b.ID, err))
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.PublicMessage(err))
	return err
}
