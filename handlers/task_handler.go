package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taskForestAPI/internal/task"
	"taskForestAPI/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func (h *TaskHandler) GetUserTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	tasks, err := h.taskService.ListTasksForUser(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}

	respondWithJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req task.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := h.taskService.CreateTask(ctx, userID, &req)
	if err != nil {
		log.Printf("CreateTask Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, "invalid priority"):
			respondWithError(w, http.StatusBadRequest, errMsg)
		case strings.Contains(errMsg, "violates foreign key"):
			respondWithError(w, http.StatusNotFound, "User not found")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create task")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var req task.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(ctx, id, &req)
	if err != nil {
		log.Printf("UpdateTask Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, "not found"):
			respondWithError(w, http.StatusNotFound, "Task not found")
		case strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "complete endpoint"):
			respondWithError(w, http.StatusBadRequest, errMsg)
		case strings.Contains(errMsg, "cannot change status"):
			respondWithError(w, http.StatusConflict, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update task")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	if err := h.taskService.DeleteTask(ctx, id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondWithError(w, http.StatusNotFound, "Task not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	taskID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var req task.CompleteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}

	result, err := h.taskService.CompleteTask(ctx, taskID, userID)
	if err != nil {
		log.Printf("CompleteTask Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case errMsg == "task not found" || errMsg == "user not found":
			respondWithError(w, http.StatusNotFound, errMsg)
		case errMsg == "task already completed":
			respondWithError(w, http.StatusConflict, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to complete task")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
