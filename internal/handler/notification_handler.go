package handler

import (
	"net/http"

	"shopkart/internal/model"
	"shopkart/internal/service"

	"github.com/rs/zerolog"
)

// NotificationHandler handles notification-related HTTP requests.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("handler", "notification").Logger(),
	}
}

type notificationsResponse struct {
	Success       bool                 `json:"success"`
	Notifications []model.Notification `json:"notifications"`
}

// MyNotifications handles GET /notifications/me requests.
func (h *NotificationHandler) MyNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	principal, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	notifications, err := h.service.ListByUser(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve notifications", h.logger)
		return
	}

	if notifications == nil {
		notifications = []model.Notification{}
	}

	writeJSON(w, http.StatusOK, notificationsResponse{Success: true, Notifications: notifications})
}
