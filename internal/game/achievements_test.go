package game

import (
	"testing"
	"time"

	"taskForestAPI/internal/achievement"
	"taskForestAPI/internal/task"
	"taskForestAPI/internal/user"
)

func completedTasks(n int, completedAt time.Time) []*task.Task {
	tasks := make([]*task.Task, 0, n)
	for i := 0; i < n; i++ {
		at := completedAt
		tasks = append(tasks, &task.Task{
			Status:      task.StatusCompleted,
			CompletedAt: &at,
		})
	}
	return tasks
}

func hasType(types []achievement.Type, want achievement.Type) bool {
	for _, tp := range types {
		if tp == want {
			return true
		}
	}
	return false
}

func TestQualifiedAchievementsEmpty(t *testing.T) {
	u := &user.User{Level: 1}
	got := QualifiedAchievements(u, nil, time.Now())
	if len(got) != 0 {
		t.Fatalf("expected no achievements for a fresh user, got %v", got)
	}
}

func TestTaskMasterAtTenCompleted(t *testing.T) {
	// Completed long ago so speed_demon cannot trigger.
	old := time.Now().AddDate(0, -1, 0)
	u := &user.User{Level: 1}

	got := QualifiedAchievements(u, completedTasks(9, old), time.Now())
	if hasType(got, achievement.TypeTaskMaster) {
		t.Fatalf("task_master granted at 9 completions: %v", got)
	}

	got = QualifiedAchievements(u, completedTasks(10, old), time.Now())
	if !hasType(got, achievement.TypeTaskMaster) {
		t.Fatalf("task_master missing at 10 completions: %v", got)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly {task_master}, got %v", got)
	}
}

func TestPendingTasksDoNotCount(t *testing.T) {
	var tasks []*task.Task
	for i := 0; i < 20; i++ {
		tasks = append(tasks, &task.Task{Status: task.StatusPending})
	}
	got := QualifiedAchievements(&user.User{Level: 1}, tasks, time.Now())
	if len(got) != 0 {
		t.Fatalf("pending tasks qualified achievements: %v", got)
	}
}

func TestSpeedDemonUsesCalendarDay(t *testing.T) {
	now := time.Now()
	u := &user.User{Level: 1}

	// Five completions today.
	got := QualifiedAchievements(u, completedTasks(5, now), now)
	if !hasType(got, achievement.TypeSpeedDemon) {
		t.Fatalf("speed_demon missing for 5 completions today: %v", got)
	}

	// Five completions yesterday do not qualify today.
	got = QualifiedAchievements(u, completedTasks(5, now.AddDate(0, 0, -1)), now)
	if hasType(got, achievement.TypeSpeedDemon) {
		t.Fatalf("speed_demon granted for yesterday's completions: %v", got)
	}
}

func TestStreakThresholdsRunIndependently(t *testing.T) {
	old := time.Now().AddDate(0, -1, 0)

	// Level 5, streak 30, 60 completed: the long-streak rule does not
	// swallow the 7-day rule, both must be present.
	u := &user.User{Level: 5, Streak: 30}
	got := QualifiedAchievements(u, completedTasks(60, old), time.Now())

	for _, want := range []achievement.Type{
		achievement.TypeGreenThumb,
		achievement.TypeConsistent,
		achievement.TypeStreakKeeper,
		achievement.TypeTaskMaster,
		achievement.TypePrecious,
	} {
		if !hasType(got, want) {
			t.Errorf("expected %s in %v", want, got)
		}
	}
	if hasType(got, achievement.TypeSpeedDemon) {
		t.Errorf("speed_demon should not qualify: %v", got)
	}
}

func TestConsistentAtSevenStreak(t *testing.T) {
	got := QualifiedAchievements(&user.User{Level: 1, Streak: 7}, nil, time.Now())
	if !hasType(got, achievement.TypeConsistent) {
		t.Fatalf("consistent missing at streak 7: %v", got)
	}
	if hasType(got, achievement.TypeStreakKeeper) {
		t.Fatalf("streak_keeper granted at streak 7: %v", got)
	}
}
