package http

import (
	"net/http"

	"clubhub-backend/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 20)
	notes, total, err := h.svc.GetNotifications(r.Context(), actor.UserID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Notifications retrieved", notificationPage{
		Items: MapNotifications(notes),
		Total: total,
		Page:  page,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.MarkAsRead(r.Context(), actor.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Notification marked as read", nil)
}
