package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/payment"
	"clubhub-backend/internal/service"
)

const codeAcknowledged = "ACKNOWLEDGED"

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req subscriptionRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	link, err := h.svc.CreatePaymentLink(r.Context(), actor, req.SubscriptionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Payment link created", link)
}

// Webhook answers 200 for every outcome the gateway cannot fix by redelivering
// (bad signature, unknown order, reported failure). Only internal errors get a 5xx.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload payment.WebhookPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, r, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "malformed webhook payload"))
		return
	}

	outcome, err := h.svc.HandleWebhook(r.Context(), payload)
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) && appErr.Code != domain.ErrCodeInternal {
			logger.WarnContext(r.Context(), "Webhook rejected", "orderCode", payload.Data.OrderCode, "code", appErr.Code)
			writeJSON(w, http.StatusOK, envelope{Code: codeAcknowledged, Message: "Webhook received"})
			return
		}
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Webhook processed", map[string]any{
		"orderCode": outcome.OrderCode,
		"result":    outcome.Result,
	})
}
