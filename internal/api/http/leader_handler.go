package http

import (
	"net/http"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/service"
)

// LeaderHandler serves the /leader endpoints used by club presidents and vice-presidents.
type LeaderHandler struct {
	svc service.RegistrationService
}

func NewLeaderHandler(svc service.RegistrationService) *LeaderHandler {
	return &LeaderHandler{svc: svc}
}

func (h *LeaderHandler) ListClubRegistrations(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	clubID, err := pathID(r, "clubId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	regs, err := h.svc.ListForClub(r.Context(), actor, clubID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Registrations retrieved", MapRegistrations(regs))
}

func (h *LeaderHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req approveRegistrationRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	reg, err := h.svc.LeaderApprove(r.Context(), actor, req.SubscriptionID, domain.RegistrationStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Registration reviewed", MapRegistration(reg))
}

func (h *LeaderHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
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

	reg, err := h.svc.ConfirmPayment(r.Context(), actor, req.SubscriptionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Payment confirmed", MapRegistration(reg))
}
