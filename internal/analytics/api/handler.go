package analytics_api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-edarshan/internal/analytics"
	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/utils"
)

type AnalyticsService interface {
	GetSummary(ctx context.Context) (*analytics.Summary, error)
	GetTempleAnalytics(ctx context.Context, templeID string) (*analytics.TempleAnalytics, error)
	GetBatchTempleAnalytics(ctx context.Context, templeIDs []string) (*analytics.BatchTempleAnalytics, error)
}

// Handler handles analytics HTTP endpoints
type Handler struct {
	Service AnalyticsService
	Logger  *logger.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service AnalyticsService, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

type batchRequest struct {
	TempleIDs []string `json:"templeIds" validate:"required,min=1,max=50,dive,required"`
}

// RegisterRoutes registers the analytics routes. Every route is admin only;
// the caller mounts them behind the auth guard.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/summary", h.GetSummary)
		r.Get("/temples/{templeID}", h.GetTempleAnalytics)
		r.Post("/temples/batch", h.GetBatchTempleAnalytics)
	})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.GetSummary(r.Context())
	if err != nil {
		h.fail(w, "GetSummary", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetTempleAnalytics(w http.ResponseWriter, r *http.Request) {
	templeID := chi.URLParam(r, "templeID")
	h.Logger.Debug("ANALYTICS", fmt.Sprintf("Fetching analytics for temple %s", templeID))

	result, err := h.Service.GetTempleAnalytics(r.Context(), templeID)
	if err != nil {
		h.fail(w, "GetTempleAnalytics", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetBatchTempleAnalytics(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	result, err := h.Service.GetBatchTempleAnalytics(r.Context(), req.TempleIDs)
	if err != nil {
		h.fail(w, "GetBatchTempleAnalytics", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if apperr.StatusCode(err) >= http.StatusInternalServerError {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("%s: %v", op, err))
	}
	utils.WriteError(w, err)
}
