package booking_api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/utils"
)

// Stripe caps event payloads well below this.
const maxWebhookBody = 65536

func (h *Handler) PaymentRoutes(r chi.Router) {
	r.Post("/payments/checkout", h.CreateCheckout)
	r.Post("/payments/webhook", h.HandleWebhook)
	r.Get("/payments/confirm", h.ConfirmPayment)
	r.Get("/payments/status", h.PaymentStatus)
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	result, err := h.BookingService.StartCheckout(r.Context(), req.Input())
	if err != nil {
		h.logFailure("CreateCheckout", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// HandleWebhook needs the body byte for byte; the signature covers the raw payload.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
	if err != nil {
		utils.WriteError(w, apperr.Validation("Failed to read request body"))
		return
	}
	if len(payload) > maxWebhookBody {
		utils.WriteError(w, apperr.Validation("Webhook payload too large"))
		return
	}

	outcome, err := h.BookingService.HandlePaymentWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logFailure("HandleWebhook", err)
		utils.WriteError(w, err)
		return
	}
	h.Logger.Debug("API", fmt.Sprintf("Webhook %s handled: %s", outcome.EventType, outcome.Action))
	utils.WriteJSON(w, http.StatusOK, outcome)
}

// ConfirmPayment backs the payment-success page: ?ticket_id=<booking id>.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	booking, err := h.BookingService.ConfirmPayment(r.Context(), r.URL.Query().Get("ticket_id"))
	if err != nil {
		h.logFailure("ConfirmPayment", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, booking)
}

func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.BookingService.GatewayStatus())
}
