package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email,omitempty"`
	Level      int       `json:"level"`
	Experience int       `json:"experience"`
	HitPoints  int       `json:"hitPoints"`
	// Streak counts completions, not distinct active days.
	Streak    int       `json:"streak"`
	TreeStage int       `json:"treeStage"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
