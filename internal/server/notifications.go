package server

import (
	"net/http"
	"strings"

	"mealbridge/pkg/types"
)

func (s *Service) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := s.identityFromContext(ctx)
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	notifications, err := s.notifications.NotificationsByRecipient(ctx, caller.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, notifications)
}

func (s *Service) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := s.identityFromContext(ctx)
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	notificationID := strings.TrimSpace(pathParam(r, "id"))
	if notificationID == "" {
		s.respondError(w, r, types.ErrNotificationNotFound)
		return
	}

	// The recipient guard lives in the store, so one user can never flip
	// another user's read flags.
	if err := s.notifications.MarkNotificationRead(ctx, notificationID, caller.Email); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (s *Service) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := s.identityFromContext(ctx)
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	notificationID := strings.TrimSpace(pathParam(r, "id"))
	if notificationID == "" {
		s.respondError(w, r, types.ErrNotificationNotFound)
		return
	}

	if err := s.notifications.DeleteNotification(ctx, notificationID, caller.Email); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted successfully"})
}
