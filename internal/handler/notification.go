package handler

import (
	"log/slog"
	"net/http"

	"github.com/pawlurking/greencop/internal/model"
	"github.com/pawlurking/greencop/internal/store"
)

type NotificationHandler struct {
	notificationStore *store.NotificationStore
	logger            *slog.Logger
}

func NewNotificationHandler(ns *store.NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notificationStore: ns, logger: logger}
}

// ListUnread returns a user's unread notifications, newest first.
func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	notifications, err := h.notificationStore.ListUnread(id)
	if err != nil {
		h.logger.Error("list unread notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead flips a notification's read flag.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.notificationStore.GetByID(id)
	if err != nil {
		h.logger.Error("get notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get notification")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}

	if err := h.notificationStore.MarkRead(id); err != nil {
		h.logger.Error("mark notification read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
