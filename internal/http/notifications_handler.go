package http

import (
	"net/http"

	"github.com/fjod/artverse/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notifications NotificationService
	log           *zap.Logger
}

func NewNotificationHandler(notifications NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

type NotificationsResponse struct {
	Items  []domain.Notification `json:"items"`
	Unread int64                 `json:"unread"`
}

type MarkedResponse struct {
	Marked int64 `json:"marked"`
}

// List returns the caller's inbox; ?unread=true hides read notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	list, unread, err := h.notifications.List(r.Context(), principalFrom(r.Context()), boolQuery(r, "unread"), pageFromQuery(r))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if list == nil {
		list = []domain.Notification{}
	}
	respondData(w, h.log, http.StatusOK, NotificationsResponse{Items: list, Unread: unread})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, h.log, http.StatusOK, "notification marked as read")
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkAllRead(r.Context(), principalFrom(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, MarkedResponse{Marked: n})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Delete(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, h.log, http.StatusOK, "notification deleted")
}
