package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taskForestAPI/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	list, err := h.notificationService.GetNotifications(ctx, userID, unreadOnly)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	count, err := h.notificationService.GetUnreadCount(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to count notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	notificationID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'userId' is required")
		return
	}

	if err := h.notificationService.MarkAsRead(ctx, notificationID, userID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondWithError(w, http.StatusNotFound, "Notification not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to mark notification as read")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.notificationService.MarkAllAsRead(ctx, userID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}
