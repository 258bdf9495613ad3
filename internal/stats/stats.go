package stats

import "taskForestAPI/internal/game"

type UserStats struct {
	Level             int            `json:"level"`
	Experience        int            `json:"experience"`
	ExperienceToNext  int            `json:"experienceToNext"`
	Progress          game.Progress  `json:"progress"`
	TreeStage         int            `json:"treeStage"`
	TreeStageInfo     game.StageInfo `json:"treeStageInfo"`
	HitPoints         int            `json:"hitPoints"`
	Streak            int            `json:"streak"`
	CompletedTasks    int            `json:"completedTasks"`
	CompletedToday    int            `json:"completedToday"`
	PendingTasks      int            `json:"pendingTasks"`
	AchievementsCount int            `json:"achievementsCount"`
}
