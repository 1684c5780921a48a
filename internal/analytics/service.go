package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/models"
)

const dailyWindow = 30 * 24 * time.Hour

// Service handles analytics operations
type Service struct {
	db  *DB
	Now func() time.Time
}

// NewService creates a new analytics service
func NewService(db *DB) *Service {
	return &Service{db: db, Now: func() time.Time { return time.Now().UTC() }}
}

// TierSalesMetrics contains paid sales for one ticket tier
type TierSalesMetrics struct {
	Tier        string  `json:"tier"`
	TicketsSold int     `json:"ticketsSold"`
	Revenue     float64 `json:"revenue"`
}

// DailySalesMetrics contains metrics for a single day
type DailySalesMetrics struct {
	Date        string  `json:"date"`
	Revenue     float64 `json:"revenue"`
	TicketsSold int     `json:"ticketsSold"`
}

// TempleAnalytics represents aggregated booking data for one temple
type TempleAnalytics struct {
	TempleID         string              `json:"templeId"`
	TempleName       string              `json:"templeName"`
	CurrentVisitors  int                 `json:"currentVisitors"`
	Capacity         int                 `json:"capacity"`
	Occupancy        float64             `json:"occupancy"`
	TotalBookings    int                 `json:"totalBookings"`
	BookingsByStatus map[string]int      `json:"bookingsByStatus"`
	TicketsSold      int                 `json:"ticketsSold"`
	PaidRevenue      float64             `json:"paidRevenue"`
	SalesByTier      []TierSalesMetrics  `json:"salesByTier"`
	DailySales       []DailySalesMetrics `json:"dailySales"`
}

// TempleSummary is one row of the summary leaderboard
type TempleSummary struct {
	TempleID        string  `json:"templeId"`
	TempleName      string  `json:"templeName"`
	PaidBookings    int     `json:"paidBookings"`
	TicketsSold     int     `json:"ticketsSold"`
	PaidRevenue     float64 `json:"paidRevenue"`
	CurrentVisitors int     `json:"currentVisitors"`
}

// Summary aggregates every temple
type Summary struct {
	Temples          int                `json:"temples"`
	TotalBookings    int                `json:"totalBookings"`
	BookingsByStatus map[string]int     `json:"bookingsByStatus"`
	TicketsSold      int                `json:"ticketsSold"`
	PaidRevenue      float64            `json:"paidRevenue"`
	CurrentVisitors  int                `json:"currentVisitors"`
	SalesByTier      []TierSalesMetrics `json:"salesByTier"`
	ByTemple         []TempleSummary    `json:"byTemple"`
	GeneratedAt      time.Time          `json:"generatedAt"`
}

// BatchTempleAnalytics combines the figures of several temples
type BatchTempleAnalytics struct {
	TempleIDs        []string            `json:"templeIds"`
	TotalBookings    int                 `json:"totalBookings"`
	BookingsByStatus map[string]int      `json:"bookingsByStatus"`
	TicketsSold      int                 `json:"ticketsSold"`
	PaidRevenue      float64             `json:"paidRevenue"`
	SalesByTier      []TierSalesMetrics  `json:"salesByTier"`
	DailySales       []DailySalesMetrics `json:"dailySales"`
}

// GetTempleAnalytics returns booking analytics for a specific temple
func (s *Service) GetTempleAnalytics(ctx context.Context, templeID string) (*TempleAnalytics, error) {
	temples, err := s.db.Temples(ctx, []string{templeID})
	if err != nil {
		return nil, apperr.Internal("Failed to load analytics", err)
	}
	if len(temples) == 0 {
		return nil, apperr.NotFound("Temple not found")
	}
	temple := temples[0]

	agg, err := s.aggregate(ctx, []string{templeID}, true)
	if err != nil {
		return nil, err
	}

	result := &TempleAnalytics{
		TempleID:         temple.ID,
		TempleName:       temple.Name,
		CurrentVisitors:  temple.CurrentVisitors,
		Capacity:         temple.Capacity,
		TotalBookings:    agg.TotalBookings,
		BookingsByStatus: agg.BookingsByStatus,
		TicketsSold:      agg.TicketsSold,
		PaidRevenue:      agg.PaidRevenue,
		SalesByTier:      agg.SalesByTier,
		DailySales:       agg.DailySales,
	}
	if temple.Capacity > 0 {
		result.Occupancy = round2(float64(temple.CurrentVisitors) / float64(temple.Capacity) * 100)
	}
	return result, nil
}

// GetBatchTempleAnalytics returns aggregated analytics data for multiple temples
func (s *Service) GetBatchTempleAnalytics(ctx context.Context, templeIDs []string) (*BatchTempleAnalytics, error) {
	if len(templeIDs) == 0 {
		return nil, apperr.Validation("templeIds is required")
	}
	agg, err := s.aggregate(ctx, templeIDs, true)
	if err != nil {
		return nil, err
	}
	agg.TempleIDs = templeIDs
	return agg, nil
}

// GetSummary aggregates every temple and ranks them by paid revenue.
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	temples, err := s.db.Temples(ctx, nil)
	if err != nil {
		return nil, apperr.Internal("Failed to load analytics", err)
	}
	statuses, err := s.db.StatusCounts(ctx, nil)
	if err != nil {
		return nil, apperr.Internal("Failed to load analytics", err)
	}
	tiers, err := s.db.PaidTiers(ctx, nil)
	if err != nil {
		return nil, apperr.Internal("Failed to load analytics", err)
	}

	rows := make(map[string]*TempleSummary, len(temples))
	summary := &Summary{
		Temples:          len(temples),
		BookingsByStatus: emptyStatusMap(),
		ByTemple:         make([]TempleSummary, 0, len(temples)),
		GeneratedAt:      s.Now(),
	}
	for _, t := range temples {
		rows[t.ID] = &TempleSummary{TempleID: t.ID, TempleName: t.Name, CurrentVisitors: t.CurrentVisitors}
		summary.CurrentVisitors += t.CurrentVisitors
	}

	for _, st := range statuses {
		summary.TotalBookings += st.Bookings
		summary.BookingsByStatus[st.Status] += st.Bookings
		if row, ok := rows[st.TempleID]; ok && st.Status == string(models.StatusPaid) {
			row.PaidBookings = st.Bookings
		}
	}

	var total tierRow
	for _, tr := range tiers {
		addTier(&total, tr)
		if row, ok := rows[tr.TempleID]; ok {
			row.TicketsSold = tr.Regular + tr.VIP + tr.Senior
			row.PaidRevenue = round2(tr.Revenue)
		}
	}
	summary.TicketsSold = total.Regular + total.VIP + total.Senior
	summary.PaidRevenue = round2(total.Revenue)
	summary.SalesByTier = tierMetrics(total)

	for _, t := range temples {
		summary.ByTemple = append(summary.ByTemple, *rows[t.ID])
	}
	sort.SliceStable(summary.ByTemple, func(i, j int) bool {
		return summary.ByTemple[i].PaidRevenue > summary.ByTemple[j].PaidRevenue
	})
	return summary, nil
}

func (s *Service) aggregate(ctx context.Context, templeIDs []string, withDaily bool) (*BatchTempleAnalytics, error) {
	statuses, err := s.db.StatusCounts(ctx, templeIDs)
	if err != nil {
		return nil, apperr.Internal("Failed to load analytics", err)
	}
	tiers, err := s.db.PaidTiers(ctx, templeIDs)
	if err != nil {
		return nil, apperr.Internal("Failed to load analytics", err)
	}

	result := &BatchTempleAnalytics{
		BookingsByStatus: emptyStatusMap(),
		DailySales:       []DailySalesMetrics{},
	}
	for _, st := range statuses {
		result.TotalBookings += st.Bookings
		result.BookingsByStatus[st.Status] += st.Bookings
	}

	var total tierRow
	for _, tr := range tiers {
		addTier(&total, tr)
	}
	result.TicketsSold = total.Regular + total.VIP + total.Senior
	result.PaidRevenue = round2(total.Revenue)
	result.SalesByTier = tierMetrics(total)

	if withDaily {
		daily, err := s.db.DailyPaidSales(ctx, templeIDs, s.Now().Add(-dailyWindow))
		if err != nil {
			return nil, apperr.Internal("Failed to load analytics", err)
		}
		for _, d := range daily {
			result.DailySales = append(result.DailySales, DailySalesMetrics{
				Date:        d.SalesDate,
				Revenue:     round2(d.Revenue),
				TicketsSold: d.Tickets,
			})
		}
	}
	return result, nil
}

func emptyStatusMap() map[string]int {
	return map[string]int{
		string(models.StatusPending): 0,
		string(models.StatusPaid):    0,
		string(models.StatusExpired): 0,
	}
}

func addTier(total *tierRow, tr tierRow) {
	total.Regular += tr.Regular
	total.VIP += tr.VIP
	total.Senior += tr.Senior
	total.RegularRevenue += tr.RegularRevenue
	total.VIPRevenue += tr.VIPRevenue
	total.SeniorRevenue += tr.SeniorRevenue
	total.Revenue += tr.Revenue
}

func tierMetrics(t tierRow) []TierSalesMetrics {
	return []TierSalesMetrics{
		{Tier: "regular", TicketsSold: t.Regular, Revenue: round2(t.RegularRevenue)},
		{Tier: "vip", TicketsSold: t.VIP, Revenue: round2(t.VIPRevenue)},
		{Tier: "senior", TicketsSold: t.Senior, Revenue: round2(t.SeniorRevenue)},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
