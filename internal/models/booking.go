package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	StatusPending BookingStatus = "pending"
	StatusPaid    BookingStatus = "paid"
	StatusExpired BookingStatus = "expired"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusExpired:
		return true
	}
	return false
}

// CanTransitionTo encodes the booking lifecycle. A paid booking never goes
// back; an expired one may still become paid when the money was captured.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusExpired
	case StatusExpired:
		return next == StatusPaid
	}
	return false
}

type PaymentMode string

const (
	PaymentModeDemo     PaymentMode = "demo"
	PaymentModeCheckout PaymentMode = "checkout"
)

// MaxTicketsPerTier caps each tier of a single booking. The validate tags
// below repeat it.
const MaxTicketsPerTier = 50

type TicketCounts struct {
	Regular int `bun:"regular" json:"regular" validate:"gte=0,lte=50"`
	VIP     int `bun:"vip" json:"vip" validate:"gte=0,lte=50"`
	Senior  int `bun:"senior" json:"senior" validate:"gte=0,lte=50"`
}

func (c TicketCounts) Total() int {
	return c.Regular + c.VIP + c.Senior
}

type Devotee struct {
	Name string `json:"name" validate:"required,max=120"`
	Age  int    `json:"age" validate:"gte=0,lte=150"`
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID                 string        `bun:"id,pk" json:"id"`
	TempleID           string        `bun:"temple_id,notnull" json:"templeId"`
	Temple             *Temple       `bun:"rel:belongs-to,join:temple_id=id" json:"temple,omitempty"`
	DevoteeName        string        `bun:"devotee_name,notnull" json:"devoteeName"`
	Email              string        `bun:"email" json:"email"`
	Phone              string        `bun:"phone" json:"phone"`
	Age                int           `bun:"age" json:"age,omitempty"`
	Address            string        `bun:"address" json:"address,omitempty"`
	AdditionalDevotees []Devotee     `bun:"additional_devotees" json:"additionalDevotees"`
	Tickets            TicketCounts  `bun:"embed:tickets_" json:"tickets"`
	UnitPrices         PriceTable    `bun:"embed:unit_price_" json:"unitPrices"`
	TotalPrice         float64       `bun:"total_price,notnull" json:"totalPrice"`
	Currency           string        `bun:"currency,notnull" json:"currency"`
	PaymentStatus      BookingStatus `bun:"payment_status,notnull" json:"paymentStatus"`
	PaymentMode        PaymentMode   `bun:"payment_mode,notnull" json:"paymentMode"`
	CheckoutSessionID  string        `bun:"checkout_session_id,nullzero" json:"checkoutSessionId,omitempty"`
	QRPayload          string        `bun:"qr_payload,nullzero" json:"qrPayload,omitempty"`
	QRCode             string        `bun:"qr_code,nullzero" json:"qrCode,omitempty"`
	ExpiresAt          *time.Time    `bun:"expires_at" json:"expiresAt,omitempty"`
	PaidAt             *time.Time    `bun:"paid_at" json:"paidAt,omitempty"`
	CreatedAt          time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt          time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Roster lists the primary devotee first, followed by everyone travelling with them.
func (b Booking) Roster() []Devotee {
	roster := make([]Devotee, 0, len(b.AdditionalDevotees)+1)
	roster = append(roster, Devotee{Name: b.DevoteeName, Age: b.Age})
	return append(roster, b.AdditionalDevotees...)
}

type PrimaryDevotee struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=7,max=20"`
	Age     int    `json:"age" validate:"gte=0,lte=150"`
	Address string `json:"address" validate:"max=300"`
}

type DevoteeForm struct {
	PrimaryDevotee     PrimaryDevotee `json:"primaryDevotee" validate:"required"`
	AdditionalDevotees []Devotee      `json:"additionalDevotees" validate:"max=20,dive"`
}

// DemoBookingRequest is the body of POST /bookings.
type DemoBookingRequest struct {
	TempleID string        `json:"templeId" validate:"required"`
	FormData DevoteeForm   `json:"formData" validate:"required"`
	Tickets  *TicketCounts `json:"tickets" validate:"required"`
}

// CheckoutRequest is the body of POST /payments/checkout.
type CheckoutRequest struct {
	TempleID           string        `json:"templeId" validate:"required"`
	Tickets            *TicketCounts `json:"tickets" validate:"required"`
	DevoteeName        string        `json:"devoteeName" validate:"required,max=120"`
	Email              string        `json:"email" validate:"required,email"`
	Phone              string        `json:"phone" validate:"required,min=7,max=20"`
	Age                int           `json:"age" validate:"gte=0,lte=150"`
	Address            string        `json:"address" validate:"max=300"`
	AdditionalDevotees []Devotee     `json:"additionalDevotees" validate:"max=20,dive"`
}

// BookingInput is the path-independent shape both entry points reduce to.
type BookingInput struct {
	TempleID           string
	Devotee            PrimaryDevotee
	AdditionalDevotees []Devotee
	Tickets            TicketCounts
}

func (r DemoBookingRequest) Input() BookingInput {
	in := BookingInput{
		TempleID:           r.TempleID,
		Devotee:            r.FormData.PrimaryDevotee,
		AdditionalDevotees: r.FormData.AdditionalDevotees,
	}
	if r.Tickets != nil {
		in.Tickets = *r.Tickets
	}
	return in
}

func (r CheckoutRequest) Input() BookingInput {
	in := BookingInput{
		TempleID: r.TempleID,
		Devotee: PrimaryDevotee{
			Name:    r.DevoteeName,
			Email:   r.Email,
			Phone:   r.Phone,
			Age:     r.Age,
			Address: r.Address,
		},
		AdditionalDevotees: r.AdditionalDevotees,
	}
	if r.Tickets != nil {
		in.Tickets = *r.Tickets
	}
	return in
}

type UpdateBookingRequest struct {
	PaymentStatus BookingStatus `json:"paymentStatus" validate:"required,oneof=pending paid expired"`
}

type VerifyQRRequest struct {
	Payload string `json:"payload" validate:"required,max=4096"`
}

type TestEmailRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

type CheckoutResult struct {
	URL       string `json:"url"`
	BookingID string `json:"bookingId"`
	SessionID string `json:"sessionId"`
}

// QRVerification is the answer given to entry staff for a scanned code.
type QRVerification struct {
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	Booking *Booking `json:"booking,omitempty"`
}
