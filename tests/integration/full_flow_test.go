package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskForestAPI/internal/achievement"
	"taskForestAPI/internal/notification"
	"taskForestAPI/internal/task"
	"taskForestAPI/internal/user"
	"taskForestAPI/services"
	"taskForestAPI/tests/helpers"
)

// TestCompleteTaskFlow walks the core loop end to end: create a user,
// give them a high priority task, complete it, and check every stat the
// completion is supposed to move.
func TestCompleteTaskFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	userService := services.NewUserService(pool)
	taskService := services.NewTaskService(pool)
	achievementService := services.NewAchievementService(pool)

	require.NoError(t, achievementService.SeedCatalog(ctx))

	u, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		Username: helpers.TestUsername("flow"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, 0, u.Experience)
	assert.Equal(t, 100, u.HitPoints)
	assert.Equal(t, 0, u.Streak)
	assert.Equal(t, 1, u.TreeStage)

	created, err := taskService.CreateTask(ctx, u.ID, &task.CreateTaskRequest{
		Title:    "Water the garden",
		Priority: "high",
	})
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, created.Status)
	assert.Equal(t, 50, created.ExperienceReward, "high priority pays 50")
	assert.Equal(t, "Personal", created.Category, "category defaults when omitted")
	assert.Nil(t, created.CompletedAt)

	result, err := taskService.CompleteTask(ctx, created.ID, u.ID)
	require.NoError(t, err)

	assert.Equal(t, task.StatusCompleted, result.Task.Status)
	require.NotNil(t, result.Task.CompletedAt)
	assert.WithinDuration(t, time.Now(), *result.Task.CompletedAt, time.Minute)

	assert.Equal(t, 50, result.User.Experience)
	assert.Equal(t, 1, result.User.Level, "50 xp is still level 1")
	assert.Equal(t, 1, result.User.TreeStage)
	assert.Equal(t, 100, result.User.HitPoints, "restore does not exceed the cap")
	assert.Equal(t, 1, result.User.Streak)
	assert.Empty(t, result.UnlockedAchievements, "one completion unlocks nothing")
}

func TestCompleteTaskLevelUpAndUnlock(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	taskService := services.NewTaskService(pool)
	achievementService := services.NewAchievementService(pool)
	notificationService := services.NewNotificationService(pool)

	require.NoError(t, achievementService.SeedCatalog(ctx))

	// 75 xp and a critical task (100 xp) crosses the level boundary.
	userID := helpers.InsertTestUser(t, pool, helpers.TestUsername("levelup"), 75, 1, 0)

	created, err := taskService.CreateTask(ctx, userID, &task.CreateTaskRequest{
		Title:    "Ship the release",
		Priority: "critical",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, created.ExperienceReward)

	result, err := taskService.CompleteTask(ctx, created.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, 175, result.User.Experience)
	assert.Equal(t, 2, result.User.Level)
	assert.Equal(t, 2, result.User.TreeStage)

	list, err := notificationService.GetNotifications(ctx, userID, false)
	require.NoError(t, err)

	var sawLevelUp bool
	for _, n := range list.Notifications {
		if n.Type == notification.NotificationLevelUp {
			sawLevelUp = true
		}
	}
	assert.True(t, sawLevelUp, "level crossing writes a level_up notification")
}

func TestCompleteTaskUnlocksSpeedDemon(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	taskService := services.NewTaskService(pool)
	achievementService := services.NewAchievementService(pool)

	require.NoError(t, achievementService.SeedCatalog(ctx))

	userID := helpers.InsertTestUser(t, pool, helpers.TestUsername("speed"), 0, 1, 0)

	// Four already completed today, the fifth trips the threshold.
	for i := 0; i < 4; i++ {
		helpers.InsertCompletedTask(t, pool, userID, time.Now())
	}

	created, err := taskService.CreateTask(ctx, userID, &task.CreateTaskRequest{Title: "Fifth today"})
	require.NoError(t, err)

	result, err := taskService.CompleteTask(ctx, created.ID, userID)
	require.NoError(t, err)

	var types []achievement.Type
	for _, a := range result.UnlockedAchievements {
		types = append(types, a.Type)
	}
	assert.Contains(t, types, achievement.TypeSpeedDemon)

	// A sixth completion today must not hand it out again.
	again, err := taskService.CreateTask(ctx, userID, &task.CreateTaskRequest{Title: "Sixth today"})
	require.NoError(t, err)

	result, err = taskService.CompleteTask(ctx, again.ID, userID)
	require.NoError(t, err)

	for _, a := range result.UnlockedAchievements {
		assert.NotEqual(t, achievement.TypeSpeedDemon, a.Type, "already unlocked achievements stay unlocked once")
	}
}

func TestCompleteTaskMissingTask(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	userService := services.NewUserService(pool)
	taskService := services.NewTaskService(pool)

	u, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		Username: helpers.TestUsername("missing"),
	})
	require.NoError(t, err)

	_, err = taskService.CompleteTask(ctx, uuid.New(), u.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task not found")

	// The failed completion must not have touched the user.
	unchanged, err := userService.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unchanged.Experience)
	assert.Equal(t, 0, unchanged.Streak)
}

func TestCompleteTaskMissingUser(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	userService := services.NewUserService(pool)
	taskService := services.NewTaskService(pool)

	u, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		Username: helpers.TestUsername("nouser"),
	})
	require.NoError(t, err)

	created, err := taskService.CreateTask(ctx, u.ID, &task.CreateTaskRequest{Title: "Orphan completion"})
	require.NoError(t, err)

	_, err = taskService.CompleteTask(ctx, created.ID, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")

	// The whole transaction rolled back: the task update did not stick.
	stored, err := taskService.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, stored.Status)
	assert.Nil(t, stored.CompletedAt)
}

func TestCompleteTaskTwice(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	userService := services.NewUserService(pool)
	taskService := services.NewTaskService(pool)

	u, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		Username: helpers.TestUsername("twice"),
	})
	require.NoError(t, err)

	created, err := taskService.CreateTask(ctx, u.ID, &task.CreateTaskRequest{Title: "Once only"})
	require.NoError(t, err)

	first, err := taskService.CompleteTask(ctx, created.ID, u.ID)
	require.NoError(t, err)
	firstCompletedAt := *first.Task.CompletedAt

	_, err = taskService.CompleteTask(ctx, created.ID, u.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task already completed")

	// Reward applied exactly once, timestamp untouched.
	unchanged, err := userService.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.User.Experience, unchanged.Experience)
	assert.Equal(t, 1, unchanged.Streak)

	stored, err := taskService.GetTask(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(firstCompletedAt))
}

func TestUpdateTaskKeepsReward(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	userService := services.NewUserService(pool)
	taskService := services.NewTaskService(pool)

	u, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		Username: helpers.TestUsername("reward"),
	})
	require.NoError(t, err)

	created, err := taskService.CreateTask(ctx, u.ID, &task.CreateTaskRequest{
		Title:    "Cheap at first",
		Priority: "low",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, created.ExperienceReward)

	updated, err := taskService.UpdateTask(ctx, created.ID, &task.UpdateTaskRequest{Priority: "critical"})
	require.NoError(t, err)
	assert.Equal(t, task.PriorityCritical, updated.Priority)
	assert.Equal(t, 10, updated.ExperienceReward, "reward is fixed at creation")

	_, err = taskService.UpdateTask(ctx, created.ID, &task.UpdateTaskRequest{Status: "completed"})
	require.Error(t, err, "completion only goes through the complete endpoint")
}

func TestCompletedTaskStatusFrozen(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	userService := services.NewUserService(pool)
	taskService := services.NewTaskService(pool)

	u, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		Username: helpers.TestUsername("frozen"),
	})
	require.NoError(t, err)

	created, err := taskService.CreateTask(ctx, u.ID, &task.CreateTaskRequest{Title: "Done means done"})
	require.NoError(t, err)

	first, err := taskService.CompleteTask(ctx, created.ID, u.ID)
	require.NoError(t, err)

	// Reverting to pending would let the task pay out a second time.
	_, err = taskService.UpdateTask(ctx, created.ID, &task.UpdateTaskRequest{Status: "pending"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot change status")

	stored, err := taskService.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(*first.Task.CompletedAt))

	// Fields other than status stay editable.
	updated, err := taskService.UpdateTask(ctx, created.ID, &task.UpdateTaskRequest{Title: "Done and renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Done and renamed", updated.Title)
	assert.Equal(t, task.StatusCompleted, updated.Status)
}
