package models

import "time"

type BookingEventType string

const (
	BookingCreated BookingEventType = "booking.created"
	BookingPaid    BookingEventType = "booking.paid"
	BookingExpired BookingEventType = "booking.expired"
)

// BookingEvent is the message published to the event stream for each
// lifecycle change of a booking.
type BookingEvent struct {
	Type          BookingEventType `json:"type"`
	BookingID     string           `json:"bookingId"`
	TempleID      string           `json:"templeId"`
	PaymentStatus BookingStatus    `json:"paymentStatus"`
	PaymentMode   PaymentMode      `json:"paymentMode"`
	Tickets       TicketCounts     `json:"tickets"`
	TotalPrice    float64          `json:"totalPrice"`
	Currency      string           `json:"currency"`
	OccurredAt    time.Time        `json:"occurredAt"`
}

func NewBookingEvent(eventType BookingEventType, b Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		TempleID:      b.TempleID,
		PaymentStatus: b.PaymentStatus,
		PaymentMode:   b.PaymentMode,
		Tickets:       b.Tickets,
		TotalPrice:    b.TotalPrice,
		Currency:      b.Currency,
		OccurredAt:    at,
	}
}
