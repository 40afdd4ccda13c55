package http

import (
	"net/http"

	"clubhub-backend/internal/service"
)

// RegistrationHandler serves the member-facing /registers endpoints.
type RegistrationHandler struct {
	svc service.RegistrationService
}

func NewRegistrationHandler(svc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createRegistrationRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	reg, err := h.svc.Create(r.Context(), actor, req.PackageID, req.JoinReason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Registration submitted", MapRegistration(reg))
}

func (h *RegistrationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	regs, err := h.svc.ListMine(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Registrations retrieved", MapRegistrations(regs))
}

func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	reg, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Registration retrieved", MapRegistration(reg))
}

func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Cancel(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Registration cancelled", nil)
}

func (h *RegistrationHandler) Renew(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req renewRegistrationRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}

	reg, err := h.svc.Renew(r.Context(), actor, id, req.PackageID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Registration renewed", MapRegistration(reg))
}

func (h *RegistrationHandler) Leave(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	reg, err := h.svc.Leave(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "You have left the club", MapRegistration(reg))
}
