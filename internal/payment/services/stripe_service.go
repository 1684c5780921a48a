package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/config"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/utils"
)

// BookingMetadataKey is the session metadata entry that links a checkout
// session back to its booking.
const BookingMetadataKey = "ticketId"

var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

// StripeService talks to Stripe Checkout.
type StripeService struct {
	client        *client.API
	secretKey     string
	webhookSecret string
	log           *logger.Logger
}

// NewStripeService builds the adapter. backends is nil in production; tests
// point it at a local server.
func NewStripeService(cfg config.StripeConfig, log *logger.Logger, backends *stripe.Backends) *StripeService {
	s := &StripeService{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		log:           log,
	}
	if cfg.SecretKey == "" {
		log.Warn("STRIPE", "STRIPE_SECRET_KEY not set, checkout is disabled")
		return s
	}

	s.client = client.New(cfg.SecretKey, backends)
	if s.IsTestMode() {
		log.Info("STRIPE", "Stripe client initialized in test mode")
	} else {
		log.Info("STRIPE", "Stripe client initialized successfully")
	}
	if cfg.WebhookSecret == "" {
		log.Warn("STRIPE", "STRIPE_WEBHOOK_SECRET not set, webhooks will be rejected")
	}
	return s
}

func (s *StripeService) Configured() bool {
	return s.client != nil
}

func (s *StripeService) IsTestMode() bool {
	return strings.HasPrefix(s.secretKey, "sk_test_")
}

func (s *StripeService) Status() models.GatewayStatus {
	return models.GatewayStatus{Configured: s.Configured(), IsTestKey: s.IsTestMode()}
}

// CreateCheckoutSession opens a hosted payment page for one booking. The
// idempotency key is derived from the booking id so a retried request can
// never open a second session for the same booking.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, req models.CheckoutSessionRequest) (*models.CheckoutSession, error) {
	if !s.Configured() {
		return nil, apperr.Unavailable("Payment gateway is not configured", ErrGatewayNotConfigured)
	}
	if req.AmountMinor <= 0 {
		return nil, apperr.Validation("checkout amount must be positive")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(req.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.BookingID),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(req.ExpiresAt.Unix())
	}
	params.AddMetadata(BookingMetadataKey, req.BookingID)
	params.SetIdempotencyKey("checkout-" + req.BookingID)
	params.Context = ctx

	sess, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create checkout session for booking %s: %v", req.BookingID, err))
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.log.LogPayment("SESSION_CREATED", sess.ID, fmt.Sprintf("booking %s, %d %s", req.BookingID, req.AmountMinor, req.Currency))
	return &models.CheckoutSession{
		ID:        sess.ID,
		URL:       sess.URL,
		ExpiresAt: utils.UnixTimeToTime(sess.ExpiresAt),
	}, nil
}

// RetrieveSession asks Stripe for the current state of a session.
func (s *StripeService) RetrieveSession(ctx context.Context, sessionID string) (*models.SessionState, error) {
	if !s.Configured() {
		return nil, apperr.Unavailable("Payment gateway is not configured", ErrGatewayNotConfigured)
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := s.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, err)
	}
	return &models.SessionState{
		ID:        sess.ID,
		BookingID: sess.Metadata[BookingMetadataKey],
		Paid:      sessionPaid(sess),
		Expired:   sess.Status == stripe.CheckoutSessionStatusExpired,
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and reduces the event to
// a PaymentEvent. Event types that bookings do not react to come back with
// an empty BookingID and no error.
func (s *StripeService) ParseWebhook(payload []byte, signature string) (*models.PaymentEvent, error) {
	if s.webhookSecret == "" {
		s.log.Error("WEBHOOK", "Stripe webhook secret is not configured")
		return nil, apperr.Unavailable("Webhook processing error", ErrGatewayNotConfigured)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.log.LogSecurity("WEBHOOK_SIGNATURE", fmt.Sprintf("rejected webhook: %v", err))
		return nil, apperr.Authentication("Webhook signature verification failed", err)
	}

	out := &models.PaymentEvent{
		ID:   event.ID,
		Type: models.PaymentEventType(event.Type),
	}

	switch out.Type {
	case models.EventCheckoutCompleted,
		models.EventAsyncPaymentSucceeded,
		models.EventAsyncPaymentFailed,
		models.EventCheckoutExpired:
	default:
		s.log.Debug("WEBHOOK", fmt.Sprintf("Ignoring Stripe event type %s", event.Type))
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, apperr.Validation("Invalid checkout session payload")
	}
	out.SessionID = sess.ID
	out.BookingID = sess.Metadata[BookingMetadataKey]
	out.Paid = sessionPaid(&sess)
	return out, nil
}

func sessionPaid(sess *stripe.CheckoutSession) bool {
	return sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired
}
