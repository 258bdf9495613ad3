package leaderboard

import "github.com/google/uuid"

type LeaderboardEntry struct {
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	Level      int       `json:"level"`
	Experience int       `json:"experience"`
	TreeStage  int       `json:"tree_stage"`
	Streak     int       `json:"streak"`
	Rank       int       `json:"rank"`
}

type Leaderboard struct {
	Entries      []*LeaderboardEntry `json:"entries"`
	UserPosition *LeaderboardEntry   `json:"user_position"`
	TotalUsers   int                 `json:"total_users"`
}
