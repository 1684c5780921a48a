package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-edarshan/internal/models"
)

var ErrSessionNotFound = errors.New("payment session not found")

// Store is the local ledger of hosted checkout sessions.
type Store interface {
	SaveSession(ctx context.Context, session *models.PaymentSession) error
	GetSession(ctx context.Context, sessionID string) (*models.PaymentSession, error)
	// RecordEvent applies a gateway event to a session. It reports false when
	// the same event id was already recorded.
	RecordEvent(ctx context.Context, sessionID, eventID string, status models.PaymentSessionStatus, at time.Time) (bool, error)
}

type BunStore struct {
	Bun bun.IDB
}

func NewBunStore(db bun.IDB) *BunStore {
	return &BunStore{Bun: db}
}

func (s *BunStore) SaveSession(ctx context.Context, session *models.PaymentSession) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	_, err := s.Bun.NewInsert().
		Model(session).
		On("CONFLICT (session_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("url = EXCLUDED.url").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save payment session %s: %w", session.SessionID, err)
	}
	return nil
}

func (s *BunStore) GetSession(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	var session models.PaymentSession
	err := s.Bun.NewSelect().
		Model(&session).
		Where("session_id = ?", sessionID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (s *BunStore) RecordEvent(ctx context.Context, sessionID, eventID string, status models.PaymentSessionStatus, at time.Time) (bool, error) {
	q := s.Bun.NewUpdate().
		Model((*models.PaymentSession)(nil)).
		Set("status = ?", status).
		Set("last_event_id = ?", eventID).
		Set("updated_at = ?", at).
		Where("session_id = ?", sessionID)
	if eventID != "" {
		q = q.Where("(last_event_id IS NULL OR last_event_id <> ?)", eventID)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("record event on session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NoopStore is used when no ledger is wanted.
type NoopStore struct{}

func (NoopStore) SaveSession(context.Context, *models.PaymentSession) error { return nil }
func (NoopStore) GetSession(context.Context, string) (*models.PaymentSession, error) {
	return nil, ErrSessionNotFound
}
func (NoopStore) RecordEvent(context.Context, string, string, models.PaymentSessionStatus, time.Time) (bool, error) {
	return true, nil
}
