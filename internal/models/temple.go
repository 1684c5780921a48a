package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PriceTable holds the per-tier ticket price. A tier left unset costs 0.
type PriceTable struct {
	Regular float64 `bun:"regular" json:"regular" validate:"gte=0"`
	VIP     float64 `bun:"vip" json:"vip" validate:"gte=0"`
	Senior  float64 `bun:"senior" json:"senior" validate:"gte=0"`
}

type Temple struct {
	bun.BaseModel `bun:"table:temples"`

	ID              string     `bun:"id,pk" json:"id"`
	Name            string     `bun:"name,notnull" json:"name"`
	Location        string     `bun:"location" json:"location"`
	Image           string     `bun:"image" json:"image,omitempty"`
	Contact         string     `bun:"contact" json:"contact,omitempty"`
	Capacity        int        `bun:"capacity,notnull,default:0" json:"capacity"`
	OpenTime        string     `bun:"open_time" json:"openTime,omitempty"`
	CloseTime       string     `bun:"close_time" json:"closeTime,omitempty"`
	TicketPrices    PriceTable `bun:"embed:price_" json:"ticketPrices"`
	CurrentVisitors int        `bun:"current_visitors,notnull,default:0" json:"currentVisitors"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type CreateTempleRequest struct {
	Name         string      `json:"name" validate:"required,max=200"`
	Location     string      `json:"location" validate:"max=300"`
	Image        string      `json:"image" validate:"omitempty,url"`
	Contact      string      `json:"contact" validate:"max=100"`
	Capacity     int         `json:"capacity" validate:"gte=0"`
	OpenTime     string      `json:"openTime" validate:"omitempty,datetime=15:04"`
	CloseTime    string      `json:"closeTime" validate:"omitempty,datetime=15:04"`
	TicketPrices *PriceTable `json:"ticketPrices" validate:"omitempty"`
}

// UpdateTempleRequest only touches the fields that are present.
type UpdateTempleRequest struct {
	Name         *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Location     *string     `json:"location" validate:"omitempty,max=300"`
	Image        *string     `json:"image" validate:"omitempty,url"`
	Contact      *string     `json:"contact" validate:"omitempty,max=100"`
	Capacity     *int        `json:"capacity" validate:"omitempty,gte=0"`
	OpenTime     *string     `json:"openTime" validate:"omitempty,datetime=15:04"`
	CloseTime    *string     `json:"closeTime" validate:"omitempty,datetime=15:04"`
	TicketPrices *PriceTable `json:"ticketPrices" validate:"omitempty"`
}

// VisitorUpdate is pushed to dashboard subscribers whenever a count changes.
type VisitorUpdate struct {
	TempleID        string    `json:"templeId"`
	TempleName      string    `json:"templeName"`
	CurrentVisitors int       `json:"currentVisitors"`
	Capacity        int       `json:"capacity"`
	Timestamp       time.Time `json:"timestamp"`
}

func (t Temple) VisitorUpdate(at time.Time) VisitorUpdate {
	return VisitorUpdate{
		TempleID:        t.ID,
		TempleName:      t.Name,
		CurrentVisitors: t.CurrentVisitors,
		Capacity:        t.Capacity,
		Timestamp:       at,
	}
}
