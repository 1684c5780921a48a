package booking_api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-edarshan/internal/apperr"
	bookingdb "ms-edarshan/internal/bookings/db"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/utils"
)

const maxPageSize = 200

type BookingService interface {
	CreateDemoBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error)
	StartCheckout(ctx context.Context, in models.BookingInput) (*models.CheckoutResult, error)
	HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) (*models.WebhookOutcome, error)
	ConfirmPayment(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, f bookingdb.ListFilter) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	VerifyQR(ctx context.Context, raw string) (*models.QRVerification, error)
	GatewayStatus() models.GatewayStatus
	SendTestEmail(ctx context.Context, to string) error
}

type Handler struct {
	BookingService BookingService
	Logger         *logger.Logger
}

func NewHandler(svc BookingService, log *logger.Logger) *Handler {
	return &Handler{BookingService: svc, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/bookings/health", h.Health)
	r.Post("/bookings", h.CreateBooking)
	r.Post("/bookings/verify-qr", h.VerifyQR)
	r.Get("/bookings/{bookingID}", h.GetBooking)
}

func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/bookings", h.ListBookings)
	r.Put("/bookings/{bookingID}", h.UpdateBooking)
	r.Delete("/bookings/{bookingID}", h.DeleteBooking)
	r.Post("/bookings/test-email", h.SendTestEmail)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "Booking routes working",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateBooking is the demo path: the booking is issued paid immediately.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.DemoBookingRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	booking, err := h.BookingService.CreateDemoBooking(r.Context(), req.Input())
	if err != nil {
		h.logFailure("CreateBooking", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, booking)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.BookingService.GetBooking(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, booking)
}

// ListBookings accepts ?templeId=, ?status=, ?limit= and ?offset=.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := bookingdb.ListFilter{
		TempleID: q.Get("templeId"),
		Status:   models.BookingStatus(q.Get("status")),
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		utils.WriteError(w, err)
		return
	}
	if filter.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		utils.WriteError(w, err)
		return
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	bookings, err := h.BookingService.ListBookings(r.Context(), filter)
	if err != nil {
		h.logFailure("ListBookings", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, bookings)
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateBookingRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	booking, err := h.BookingService.UpdateStatus(r.Context(), chi.URLParam(r, "bookingID"), req.PaymentStatus)
	if err != nil {
		h.logFailure("UpdateBooking", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, booking)
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")
	if err := h.BookingService.DeleteBooking(r.Context(), id); err != nil {
		h.logFailure("DeleteBooking", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Booking deleted", map[string]string{"id": id}))
}

func (h *Handler) VerifyQR(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyQRRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	result, err := h.BookingService.VerifyQR(r.Context(), req.Payload)
	if err != nil {
		h.logFailure("VerifyQR", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var req models.TestEmailRequest
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.WriteError(w, err)
			return
		}
	}

	if err := h.BookingService.SendTestEmail(r.Context(), req.Email); err != nil {
		h.logFailure("SendTestEmail", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Test email sent", nil))
}

// logFailure only records server-side faults; client errors are answered quietly.
func (h *Handler) logFailure(op string, err error) {
	if apperr.StatusCode(err) >= http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	}
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("%s must be a non-negative integer", name)
	}
	return n, nil
}
