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

var ErrTempleNotFound = errors.New("temple not found")

type DB struct {
	Bun bun.IDB
}

func (d *DB) GetTempleByID(ctx context.Context, id string) (*models.Temple, error) {
	var temple models.Temple
	err := d.Bun.NewSelect().
		Model(&temple).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTempleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get temple %s: %w", id, err)
	}
	return &temple, nil
}

func (d *DB) ListTemples(ctx context.Context) ([]models.Temple, error) {
	temples := make([]models.Temple, 0)
	err := d.Bun.NewSelect().
		Model(&temples).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list temples: %w", err)
	}
	return temples, nil
}

func (d *DB) CountTemples(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*models.Temple)(nil)).Count(ctx)
}

func (d *DB) CreateTemple(ctx context.Context, temple *models.Temple) error {
	stampTemple(temple, time.Now().UTC())
	_, err := d.Bun.NewInsert().Model(temple).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert temple: %w", err)
	}
	return nil
}

// InsertTemples writes the whole batch or nothing.
func (d *DB) InsertTemples(ctx context.Context, temples []models.Temple) error {
	if len(temples) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range temples {
		stampTemple(&temples[i], now)
	}
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&temples).Exec(ctx); err != nil {
			return fmt.Errorf("insert temples: %w", err)
		}
		return nil
	})
}

func (d *DB) UpdateTemple(ctx context.Context, temple *models.Temple) error {
	res, err := d.Bun.NewUpdate().
		Model(temple).
		Column("name", "location", "image", "contact", "capacity", "open_time", "close_time",
			"price_regular", "price_vip", "price_senior", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update temple %s: %w", temple.ID, err)
	}
	return requireRow(res, ErrTempleNotFound)
}

// IncrementVisitors bumps the counter in a single statement so concurrent
// visits are never lost.
func (d *DB) IncrementVisitors(ctx context.Context, id string, at time.Time) (*models.Temple, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Temple)(nil)).
		Set("current_visitors = current_visitors + 1").
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("increment visitors for %s: %w", id, err)
	}
	if err := requireRow(res, ErrTempleNotFound); err != nil {
		return nil, err
	}
	return d.GetTempleByID(ctx, id)
}

func (d *DB) ResetVisitors(ctx context.Context, id string, at time.Time) (*models.Temple, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Temple)(nil)).
		Set("current_visitors = 0").
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset visitors for %s: %w", id, err)
	}
	if err := requireRow(res, ErrTempleNotFound); err != nil {
		return nil, err
	}
	return d.GetTempleByID(ctx, id)
}

func stampTemple(t *models.Temple, now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
