package apiserver

import (
	"net/http"

	"edu-network/internal/services"
)

// NotificationHandler lists and acknowledges in-app notifications.
type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

// ListNotificationsHandler handles GET /api/v1/notifications?unread=true
func (h *NotificationHandler) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	list, err := h.notificationService.List(r.Context(), userID, unreadOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, list)
}

// MarkReadHandler handles POST /api/v1/notifications/{notificationID}/read
func (h *NotificationHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUint(w, r, "notificationID")
	if !ok {
		return
	}
	n, err := h.notificationService.MarkRead(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, n)
}
