package task

import "time"

// CreateTaskRequest intentionally carries no experienceReward field.
// The reward is derived server-side from priority at creation time.
type CreateTaskRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Priority      string     `json:"priority"`
	DueDate       *time.Time `json:"dueDate"`
	EstimatedTime string     `json:"estimatedTime"`
}

type UpdateTaskRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"dueDate"`
	EstimatedTime string     `json:"estimatedTime"`
}

type CompleteTaskRequest struct {
	UserID string `json:"userId"`
}
