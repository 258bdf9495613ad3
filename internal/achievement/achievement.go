package achievement

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeTaskMaster   Type = "task_master"
	TypeGreenThumb   Type = "green_thumb"
	TypeConsistent   Type = "consistent"
	TypeSpeedDemon   Type = "speed_demon"
	TypePrecious     Type = "precious"
	TypeStreakKeeper Type = "streak_keeper"
)

type Achievement struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Type        Type      `json:"type" db:"type"`
	Icon        string    `json:"icon" db:"icon"`
	Color       string    `json:"color" db:"color"`
	Requirement int       `json:"requirement" db:"requirement"`
}

type UserAchievement struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	AchievementID uuid.UUID `json:"achievement_id" db:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
}

type AchievementWithStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
