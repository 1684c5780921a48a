package temple_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/sse"
	"ms-edarshan/internal/utils"
)

type TempleService interface {
	ListTemples(ctx context.Context) ([]models.Temple, error)
	GetTemple(ctx context.Context, id string) (*models.Temple, error)
	CreateTemple(ctx context.Context, req models.CreateTempleRequest) (*models.Temple, error)
	UpdateTemple(ctx context.Context, id string, req models.UpdateTempleRequest) (*models.Temple, error)
	RecordVisit(ctx context.Context, id string) (*models.Temple, error)
	ResetVisitors(ctx context.Context, id string) (*models.Temple, error)
	VisitorSnapshot(ctx context.Context) ([]models.VisitorUpdate, error)
	Seed(ctx context.Context, temples []models.Temple) ([]models.Temple, error)
}

type Handler struct {
	TempleService TempleService
	Emitter       *sse.VisitorEventEmitter
	Logger        *logger.Logger
	SeedTemples   func() []models.Temple
	// Heartbeat keeps idle SSE connections open through proxies.
	Heartbeat time.Duration
}

func NewHandler(svc TempleService, emitter *sse.VisitorEventEmitter, seed func() []models.Temple, log *logger.Logger) *Handler {
	return &Handler{
		TempleService: svc,
		Emitter:       emitter,
		Logger:        log,
		SeedTemples:   seed,
		Heartbeat:     25 * time.Second,
	}
}

// Routes mounts the public temple endpoints. Admin endpoints are mounted
// separately so the caller can wrap them in the auth guard.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/temples", h.ListTemples)
	r.Get("/temples/events", h.StreamVisitors)
	r.Get("/temples/{templeID}", h.GetTemple)
	r.Post("/temples/{templeID}/visit", h.RecordVisit)
}

func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/temples", h.CreateTemple)
	r.Put("/temples/{templeID}", h.UpdateTemple)
	r.Post("/temples/{templeID}/visitors/reset", h.ResetVisitors)
	r.Post("/seed-temples", h.SeedTemplesHandler)
}

func (h *Handler) ListTemples(w http.ResponseWriter, r *http.Request) {
	temples, err := h.TempleService.ListTemples(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTemples: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, temples)
}

func (h *Handler) GetTemple(w http.ResponseWriter, r *http.Request) {
	temple, err := h.TempleService.GetTemple(r.Context(), chi.URLParam(r, "templeID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, temple)
}

func (h *Handler) CreateTemple(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTempleRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	temple, err := h.TempleService.CreateTemple(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTemple: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, temple)
}

func (h *Handler) UpdateTemple(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTempleRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	temple, err := h.TempleService.UpdateTemple(r.Context(), chi.URLParam(r, "templeID"), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, temple)
}

func (h *Handler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	templeID := chi.URLParam(r, "templeID")
	temple, err := h.TempleService.RecordVisit(r.Context(), templeID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.Logger.Debug("API", fmt.Sprintf("RecordVisit: temple %s now has %d visitors", templeID, temple.CurrentVisitors))
	utils.WriteJSON(w, http.StatusOK, temple)
}

func (h *Handler) ResetVisitors(w http.ResponseWriter, r *http.Request) {
	temple, err := h.TempleService.ResetVisitors(r.Context(), chi.URLParam(r, "templeID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, temple)
}

func (h *Handler) SeedTemplesHandler(w http.ResponseWriter, r *http.Request) {
	temples, err := h.TempleService.Seed(r.Context(), h.SeedTemples())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Temples seeded successfully", temples))
}

// StreamVisitors pushes visitor count changes over SSE. An optional
// ?templeId= narrows the stream to one temple.
func (h *Handler) StreamVisitors(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	templeID := r.URL.Query().Get("templeId")

	snapshot, err := h.TempleService.VisitorSnapshot(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	setupSSEHeaders(w)
	updates := h.Emitter.Subscribe(ctx, templeID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"templeId\":%q}\n\n", templeID)
	if templeID != "" {
		filtered := snapshot[:0]
		for _, u := range snapshot {
			if u.TempleID == templeID {
				filtered = append(filtered, u)
			}
		}
		snapshot = filtered
	}
	if data, err := json.Marshal(snapshot); err == nil {
		fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
	}
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Dashboard client connected (temple=%q, clients=%d)", templeID, h.Emitter.ClientCount(templeID)))

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(update)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize visitor update: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: visitors\ndata: %s\n\n", data)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Dashboard client disconnected (temple=%q)", templeID))
			return
		}
	}
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
