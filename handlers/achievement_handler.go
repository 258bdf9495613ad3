package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taskForestAPI/services"
)

type AchievementHandler struct {
	achievementService *services.AchievementService
}

func NewAchievementHandler(achievementService *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{
		achievementService: achievementService,
	}
}

func (h *AchievementHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	achievements, err := h.achievementService.ListCatalog(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch achievements")
		return
	}

	respondWithJSON(w, http.StatusOK, achievements)
}

func (h *AchievementHandler) GetUserAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	links, err := h.achievementService.ListUserAchievements(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch user achievements")
		return
	}

	respondWithJSON(w, http.StatusOK, links)
}

func (h *AchievementHandler) GetUserAchievementsWithStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	achievements, err := h.achievementService.ListWithStatus(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch achievements")
		return
	}

	respondWithJSON(w, http.StatusOK, achievements)
}
