// Package pricing turns tier counts and a temple price table into an amount.
package pricing

import (
	"math"

	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/models"
)

// MaxAmount is the largest booking total accepted, in major units. It stays
// below Stripe's 8-digit minor-unit limit and the NUMERIC(12,2) columns.
const MaxAmount = 999999.99

// Calculate returns Σ counts[tier] × prices[tier]. Unset prices count as 0.
func Calculate(counts models.TicketCounts, prices models.PriceTable) (float64, error) {
	if counts.Regular < 0 || counts.VIP < 0 || counts.Senior < 0 {
		return 0, apperr.Validation("ticket counts must not be negative")
	}
	if counts.Regular > models.MaxTicketsPerTier || counts.VIP > models.MaxTicketsPerTier || counts.Senior > models.MaxTicketsPerTier {
		return 0, apperr.Validation("at most %d tickets per tier can be booked at once", models.MaxTicketsPerTier)
	}

	total := float64(counts.Regular)*prices.Regular +
		float64(counts.VIP)*prices.VIP +
		float64(counts.Senior)*prices.Senior

	if math.IsNaN(total) || total > MaxAmount {
		return 0, apperr.Validation("total amount exceeds the maximum of %.2f", MaxAmount)
	}
	return roundCents(total), nil
}

// ToMinorUnits converts an amount to the smallest currency unit (paise for INR).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Line is one row of a tier breakdown shown on tickets and e-mails.
type Line struct {
	Tier      string
	Count     int
	UnitPrice float64
	Subtotal  float64
}

// Breakdown lists tiers with a non-zero count, in display order.
func Breakdown(counts models.TicketCounts, prices models.PriceTable) []Line {
	var lines []Line
	add := func(tier string, count int, price float64) {
		if count > 0 {
			lines = append(lines, Line{Tier: tier, Count: count, UnitPrice: price, Subtotal: roundCents(float64(count) * price)})
		}
	}
	add("Regular", counts.Regular, prices.Regular)
	add("VIP", counts.VIP, prices.VIP)
	add("Senior", counts.Senior, prices.Senior)
	return lines
}
