package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-edarshan/internal/models"
)

// DB handles analytics database operations
type DB struct {
	bun bun.IDB
}

// NewDB creates a new analytics DB handler
func NewDB(db bun.IDB) *DB {
	return &DB{bun: db}
}

// statusRow is one payment_status bucket for a set of temples.
type statusRow struct {
	TempleID string `bun:"temple_id"`
	Status   string `bun:"payment_status"`
	Bookings int    `bun:"bookings"`
	Tickets  int    `bun:"tickets"`
}

// tierRow sums paid tickets and revenue per tier, using the unit prices
// captured on each booking.
type tierRow struct {
	TempleID       string  `bun:"temple_id"`
	Regular        int     `bun:"regular"`
	VIP            int     `bun:"vip"`
	Senior         int     `bun:"senior"`
	RegularRevenue float64 `bun:"regular_revenue"`
	VIPRevenue     float64 `bun:"vip_revenue"`
	SeniorRevenue  float64 `bun:"senior_revenue"`
	Revenue        float64 `bun:"revenue"`
}

type dailyRow struct {
	SalesDate string  `bun:"sales_date"`
	Revenue   float64 `bun:"revenue"`
	Tickets   int     `bun:"tickets"`
}

// templeScope returns the WHERE fragment for an optional temple filter.
func templeScope(templeIDs []string) (string, []interface{}) {
	if len(templeIDs) == 0 {
		return "1 = 1", nil
	}
	return "temple_id IN (?)", []interface{}{bun.In(templeIDs)}
}

func (db *DB) StatusCounts(ctx context.Context, templeIDs []string) ([]statusRow, error) {
	where, args := templeScope(templeIDs)
	var rows []statusRow
	err := db.bun.NewRaw(fmt.Sprintf(`
		SELECT
			temple_id,
			payment_status,
			COUNT(*) AS bookings,
			COALESCE(SUM(tickets_regular + tickets_vip + tickets_senior), 0) AS tickets
		FROM bookings
		WHERE %s
		GROUP BY temple_id, payment_status`, where), args...).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("count bookings by status: %w", err)
	}
	return rows, nil
}

func (db *DB) PaidTiers(ctx context.Context, templeIDs []string) ([]tierRow, error) {
	where, args := templeScope(templeIDs)
	args = append(args, models.StatusPaid)
	var rows []tierRow
	err := db.bun.NewRaw(fmt.Sprintf(`
		SELECT
			temple_id,
			COALESCE(SUM(tickets_regular), 0) AS regular,
			COALESCE(SUM(tickets_vip), 0) AS vip,
			COALESCE(SUM(tickets_senior), 0) AS senior,
			COALESCE(SUM(tickets_regular * unit_price_regular), 0) AS regular_revenue,
			COALESCE(SUM(tickets_vip * unit_price_vip), 0) AS vip_revenue,
			COALESCE(SUM(tickets_senior * unit_price_senior), 0) AS senior_revenue,
			COALESCE(SUM(total_price), 0) AS revenue
		FROM bookings
		WHERE %s AND payment_status = ?
		GROUP BY temple_id`, where), args...).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("sum paid tickets by tier: %w", err)
	}
	return rows, nil
}

// DailyPaidSales groups paid bookings by the day they were paid. Days come
// back as YYYY-MM-DD text on both Postgres and SQLite.
func (db *DB) DailyPaidSales(ctx context.Context, templeIDs []string, since time.Time) ([]dailyRow, error) {
	where, args := templeScope(templeIDs)
	args = append(args, models.StatusPaid, since)
	var rows []dailyRow
	err := db.bun.NewRaw(fmt.Sprintf(`
		SELECT
			CAST(DATE(paid_at) AS TEXT) AS sales_date,
			COALESCE(SUM(total_price), 0) AS revenue,
			COALESCE(SUM(tickets_regular + tickets_vip + tickets_senior), 0) AS tickets
		FROM bookings
		WHERE %s AND payment_status = ? AND paid_at >= ?
		GROUP BY DATE(paid_at)
		ORDER BY sales_date`, where), args...).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("daily paid sales: %w", err)
	}
	return rows, nil
}

func (db *DB) Temples(ctx context.Context, templeIDs []string) ([]models.Temple, error) {
	temples := make([]models.Temple, 0)
	q := db.bun.NewSelect().Model(&temples).Order("name ASC")
	if len(templeIDs) > 0 {
		q = q.Where("id IN (?)", bun.In(templeIDs))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("load temples: %w", err)
	}
	return temples, nil
}
