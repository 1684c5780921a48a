package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/kafka"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/sse"
	templedb "ms-edarshan/internal/temples/db"
)

type TempleStore interface {
	GetTempleByID(ctx context.Context, id string) (*models.Temple, error)
	ListTemples(ctx context.Context) ([]models.Temple, error)
	CountTemples(ctx context.Context) (int, error)
	CreateTemple(ctx context.Context, temple *models.Temple) error
	InsertTemples(ctx context.Context, temples []models.Temple) error
	UpdateTemple(ctx context.Context, temple *models.Temple) error
	IncrementVisitors(ctx context.Context, id string, at time.Time) (*models.Temple, error)
	ResetVisitors(ctx context.Context, id string, at time.Time) (*models.Temple, error)
}

type TempleService struct {
	DB          TempleStore
	Broadcaster sse.Broadcaster
	Events      kafka.Publisher
	Logger      *logger.Logger
	Now         func() time.Time
}

func NewTempleService(store TempleStore, broadcaster sse.Broadcaster, events kafka.Publisher, log *logger.Logger) *TempleService {
	if events == nil {
		events = kafka.NoopPublisher{}
	}
	return &TempleService{
		DB:          store,
		Broadcaster: broadcaster,
		Events:      events,
		Logger:      log,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *TempleService) ListTemples(ctx context.Context) ([]models.Temple, error) {
	temples, err := s.DB.ListTemples(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch temples", err)
	}
	return temples, nil
}

// GetTemple satisfies the booking service's temple lookup.
func (s *TempleService) GetTemple(ctx context.Context, id string) (*models.Temple, error) {
	temple, err := s.DB.GetTempleByID(ctx, id)
	if errors.Is(err, templedb.ErrTempleNotFound) {
		return nil, apperr.NotFound("Temple not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch temple", err)
	}
	return temple, nil
}

func (s *TempleService) CreateTemple(ctx context.Context, req models.CreateTempleRequest) (*models.Temple, error) {
	now := s.Now()
	temple := models.Temple{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Location:  req.Location,
		Image:     req.Image,
		Contact:   req.Contact,
		Capacity:  req.Capacity,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.TicketPrices != nil {
		temple.TicketPrices = *req.TicketPrices
	}
	if err := validatePrices(temple.TicketPrices); err != nil {
		return nil, err
	}

	if err := s.DB.CreateTemple(ctx, &temple); err != nil {
		return nil, apperr.Internal("Failed to create temple", err)
	}

	s.Logger.LogDatabase("INSERT", "temples", fmt.Sprintf("created temple %s (%s)", temple.ID, temple.Name))
	return &temple, nil
}

// UpdateTemple changes the directory entry only. Bookings keep the prices
// they were created with.
func (s *TempleService) UpdateTemple(ctx context.Context, id string, req models.UpdateTempleRequest) (*models.Temple, error) {
	temple, err := s.GetTemple(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		temple.Name = *req.Name
	}
	if req.Location != nil {
		temple.Location = *req.Location
	}
	if req.Image != nil {
		temple.Image = *req.Image
	}
	if req.Contact != nil {
		temple.Contact = *req.Contact
	}
	if req.Capacity != nil {
		temple.Capacity = *req.Capacity
	}
	if req.OpenTime != nil {
		temple.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		temple.CloseTime = *req.CloseTime
	}
	if req.TicketPrices != nil {
		temple.TicketPrices = *req.TicketPrices
	}
	if err := validatePrices(temple.TicketPrices); err != nil {
		return nil, err
	}
	temple.UpdatedAt = s.Now()

	if err := s.DB.UpdateTemple(ctx, temple); err != nil {
		if errors.Is(err, templedb.ErrTempleNotFound) {
			return nil, apperr.NotFound("Temple not found")
		}
		return nil, apperr.Internal("Failed to update temple", err)
	}
	return temple, nil
}

// RecordVisit increments the visitor counter and pushes the new count to
// dashboards. Broadcast and event failures are logged only.
func (s *TempleService) RecordVisit(ctx context.Context, id string) (*models.Temple, error) {
	temple, err := s.DB.IncrementVisitors(ctx, id, s.Now())
	if errors.Is(err, templedb.ErrTempleNotFound) {
		return nil, apperr.NotFound("Temple not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to record visit", err)
	}

	s.announce(ctx, *temple)
	return temple, nil
}

func (s *TempleService) ResetVisitors(ctx context.Context, id string) (*models.Temple, error) {
	temple, err := s.DB.ResetVisitors(ctx, id, s.Now())
	if errors.Is(err, templedb.ErrTempleNotFound) {
		return nil, apperr.NotFound("Temple not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to reset visitors", err)
	}

	s.announce(ctx, *temple)
	return temple, nil
}

func (s *TempleService) announce(ctx context.Context, temple models.Temple) {
	update := temple.VisitorUpdate(s.Now())

	if s.Broadcaster != nil {
		if err := s.Broadcaster.Broadcast(ctx, update); err != nil {
			s.Logger.Warn("SSE", fmt.Sprintf("Failed to broadcast visitor update for %s: %v", temple.ID, err))
		}
	}
	if err := s.Events.PublishTempleVisit(ctx, update); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish visit event for %s: %v", temple.ID, err))
	}
}

// VisitorSnapshot is sent to dashboard clients when they connect.
func (s *TempleService) VisitorSnapshot(ctx context.Context) ([]models.VisitorUpdate, error) {
	temples, err := s.ListTemples(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	snapshot := make([]models.VisitorUpdate, 0, len(temples))
	for _, t := range temples {
		snapshot = append(snapshot, t.VisitorUpdate(now))
	}
	return snapshot, nil
}

// Seed inserts the given temples when the directory is empty.
func (s *TempleService) Seed(ctx context.Context, temples []models.Temple) ([]models.Temple, error) {
	n, err := s.DB.CountTemples(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to count temples", err)
	}
	if n > 0 {
		return nil, apperr.Validation("Temples already exist")
	}

	now := s.Now()
	seeded := make([]models.Temple, len(temples))
	for i, t := range temples {
		t.ID = uuid.NewString()
		t.CurrentVisitors = 0
		t.CreatedAt = now
		t.UpdatedAt = now
		seeded[i] = t
	}

	if err := s.DB.InsertTemples(ctx, seeded); err != nil {
		return nil, apperr.Internal("Failed to seed temples", err)
	}

	s.Logger.LogDatabase("SEED", "temples", fmt.Sprintf("inserted %d temples", len(seeded)))
	return seeded, nil
}

func validatePrices(p models.PriceTable) error {
	if p.Regular < 0 || p.VIP < 0 || p.Senior < 0 {
		return apperr.Validation("ticket prices must not be negative")
	}
	return nil
}
