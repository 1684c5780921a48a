package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-edarshan/internal/models"
)

var ErrBookingNotFound = errors.New("booking not found")

type DB struct {
	Bun bun.IDB
}

// ListFilter narrows ListBookings. Zero values mean "any".
type ListFilter struct {
	TempleID string
	Status   models.BookingStatus
	Limit    int
	Offset   int
}

// ---------------- BOOKINGS ----------------

// CreateBooking inserts a fully built booking in one statement.
func (d *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = booking.CreatedAt
	}
	if booking.AdditionalDevotees == nil {
		booking.AdditionalDevotees = []models.Devotee{}
	}
	if _, err := d.Bun.NewInsert().Model(booking).Exec(ctx); err != nil {
		return fmt.Errorf("insert booking %s: %w", booking.ID, err)
	}
	return nil
}

// GetBookingByID fetches one booking together with its temple.
func (d *DB) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Relation("Temple").
		Where("b.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return &booking, nil
}

// ListBookings returns newest first.
func (d *DB) ListBookings(ctx context.Context, f ListFilter) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	q := d.Bun.NewSelect().
		Model(&bookings).
		Relation("Temple").
		Order("b.created_at DESC")
	if f.TempleID != "" {
		q = q.Where("b.temple_id = ?", f.TempleID)
	}
	if f.Status != "" {
		q = q.Where("b.payment_status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// SetCheckoutSession records the hosted session that will settle a pending booking.
func (d *DB) SetCheckoutSession(ctx context.Context, id, sessionID string, at time.Time) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("checkout_session_id = ?", sessionID).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set checkout session for %s: %w", id, err)
	}
	return requireRow(res, ErrBookingNotFound)
}

// ---------------- STATE TRANSITIONS ----------------

// MarkPaid moves a pending or expired booking to paid and stores its QR.
// It reports false when another writer already settled the booking, which
// makes repeated deliveries of the same completion harmless.
func (d *DB) MarkPaid(ctx context.Context, id, qrPayload, qrCode string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("payment_status = ?", models.StatusPaid).
		Set("qr_payload = ?", qrPayload).
		Set("qr_code = ?", qrCode).
		Set("paid_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("payment_status IN (?)", bun.In([]models.BookingStatus{models.StatusPending, models.StatusExpired})).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("mark booking %s paid: %w", id, err)
	}
	return affected(res)
}

// MarkExpired only touches bookings that are still pending.
func (d *DB) MarkExpired(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("payment_status = ?", models.StatusExpired).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("payment_status = ?", models.StatusPending).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("mark booking %s expired: %w", id, err)
	}
	return affected(res)
}

// ListStalePending returns ids of pending bookings whose hold ran out at or
// before cutoff.
func (d *DB) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	var ids []string
	q := d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Column("id").
		Where("payment_status = ?", models.StatusPending).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", cutoff).
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("list stale pending bookings: %w", err)
	}
	return ids, nil
}

func (d *DB) DeleteBooking(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	return requireRow(res, ErrBookingNotFound)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func requireRow(res sql.Result, notFound error) error {
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}
