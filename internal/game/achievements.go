package game

import (
	"time"

	"taskForestAPI/internal/achievement"
	"taskForestAPI/internal/task"
	"taskForestAPI/internal/user"
)

// QualifiedAchievements evaluates every achievement rule against a user
// snapshot and their full task list, and returns the types the user
// currently qualifies for. The rules are independent of each other and
// of what has already been unlocked; callers decide what to persist.
//
// "One day" means the calendar date of now in its own location, not a
// rolling 24h window.
func QualifiedAchievements(u *user.User, tasks []*task.Task, now time.Time) []achievement.Type {
	completed := 0
	completedToday := 0
	today := now.Format("2006-01-02")

	for _, t := range tasks {
		if t.Status != task.StatusCompleted {
			continue
		}
		completed++
		if t.CompletedAt != nil && t.CompletedAt.In(now.Location()).Format("2006-01-02") == today {
			completedToday++
		}
	}

	var qualified []achievement.Type

	// Task Master - complete 10 tasks
	if completed >= 10 {
		qualified = append(qualified, achievement.TypeTaskMaster)
	}

	// Green Thumb - reach level 5
	if u.Level >= 5 {
		qualified = append(qualified, achievement.TypeGreenThumb)
	}

	// Consistent - 7-day streak
	if u.Streak >= 7 {
		qualified = append(qualified, achievement.TypeConsistent)
	}

	// Speed Demon - 5 tasks completed in one day
	if completedToday >= 5 {
		qualified = append(qualified, achievement.TypeSpeedDemon)
	}

	// Precious - complete 50 tasks total
	if completed >= 50 {
		qualified = append(qualified, achievement.TypePrecious)
	}

	// Streak Keeper - 30-day streak
	if u.Streak >= 30 {
		qualified = append(qualified, achievement.TypeStreakKeeper)
	}

	return qualified
}
