package task

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

type Task struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"userId"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Category         string     `json:"category"`
	Priority         Priority   `json:"priority"`
	Status           Status     `json:"status"`
	ExperienceReward int        `json:"experienceReward"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	EstimatedTime    string     `json:"estimatedTime,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
