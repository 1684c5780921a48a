package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentSessionStatus string

const (
	SessionOpen      PaymentSessionStatus = "open"
	SessionCompleted PaymentSessionStatus = "completed"
	SessionExpired   PaymentSessionStatus = "expired"
)

// PaymentSession is the local ledger entry for one hosted checkout session.
type PaymentSession struct {
	bun.BaseModel `bun:"table:payment_sessions"`

	SessionID   string               `bun:"session_id,pk" json:"sessionId"`
	BookingID   string               `bun:"booking_id,notnull" json:"bookingId"`
	AmountMinor int64                `bun:"amount_minor,notnull" json:"amountMinor"`
	Currency    string               `bun:"currency,notnull" json:"currency"`
	Status      PaymentSessionStatus `bun:"status,notnull" json:"status"`
	URL         string               `bun:"url" json:"url,omitempty"`
	LastEventID string               `bun:"last_event_id,nullzero" json:"lastEventId,omitempty"`
	CreatedAt   time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// CheckoutSessionRequest is what the booking flow asks the gateway for.
type CheckoutSessionRequest struct {
	BookingID     string
	ProductName   string
	AmountMinor   int64
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	ExpiresAt     time.Time
}

type CheckoutSession struct {
	ID        string
	URL       string
	ExpiresAt time.Time
}

type PaymentEventType string

const (
	EventCheckoutCompleted     PaymentEventType = "checkout.session.completed"
	EventAsyncPaymentSucceeded PaymentEventType = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    PaymentEventType = "checkout.session.async_payment_failed"
	EventCheckoutExpired       PaymentEventType = "checkout.session.expired"
)

// PaymentEvent is a verified gateway callback reduced to what bookings need.
type PaymentEvent struct {
	ID        string
	Type      PaymentEventType
	SessionID string
	BookingID string
	Paid      bool
}

type GatewayStatus struct {
	Configured bool `json:"configured"`
	IsTestKey  bool `json:"isTestKey"`
}

// WebhookOutcome tells the caller what a callback did, for logging and the ack body.
type WebhookOutcome struct {
	Received  bool   `json:"received"`
	EventType string `json:"eventType,omitempty"`
	BookingID string `json:"bookingId,omitempty"`
	Action    string `json:"action,omitempty"`
}

// SessionState is a checkout session as the gateway currently reports it.
type SessionState struct {
	ID        string
	BookingID string
	Paid      bool
	Expired   bool
}
