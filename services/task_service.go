package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskForestAPI/internal/achievement"
	"taskForestAPI/internal/game"
	"taskForestAPI/internal/notification"
	"taskForestAPI/internal/task"
	"taskForestAPI/internal/user"
)

type TaskService struct {
	db *pgxpool.Pool
}

func NewTaskService(db *pgxpool.Pool) *TaskService {
	return &TaskService{db: db}
}

// CompletionResult is the response of the completion transaction: both
// updated records plus whatever the unlock step freshly persisted.
type CompletionResult struct {
	User                 *user.User                 `json:"user"`
	Task                 *task.Task                 `json:"task"`
	UnlockedAchievements []*achievement.Achievement `json:"unlockedAchievements"`
}

const taskColumns = `id, user_id, title, description, category, priority, status, experience_reward, due_date, estimated_time, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Category,
		&t.Priority,
		&t.Status,
		&t.ExperienceReward,
		&t.DueDate,
		&t.EstimatedTime,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, req *task.CreateTaskRequest) (*task.Task, error) {
	category := req.Category
	if category == "" {
		category = "Personal"
	}

	priority := task.Priority(req.Priority)
	if req.Priority == "" {
		priority = task.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", req.Priority)
	}

	// The reward is fixed here, once, from priority. Whatever the client
	// guessed for its own preview never reaches the row.
	reward := game.RewardForPriority(priority)

	query := `
	INSERT INTO tasks (id, user_id, title, description, category, priority, status, experience_reward, due_date, estimated_time, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8, $9, NOW(), NOW())
	RETURNING ` + taskColumns

	t, err := scanTask(s.db.QueryRow(
		ctx,
		query,
		uuid.New(),
		userID,
		req.Title,
		req.Description,
		category,
		priority,
		reward,
		req.DueDate,
		req.EstimatedTime,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task not found")
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

// ListTasksForUser returns the user's tasks, newest created first.
func (s *TaskService) ListTasksForUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	defer rows.Close()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func collectTasks(rows pgx.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, req *task.UpdateTaskRequest) (*task.Task, error) {
	if req.Priority != "" && !task.Priority(req.Priority).Valid() {
		return nil, fmt.Errorf("invalid priority %q", req.Priority)
	}
	if req.Status != "" && !task.Status(req.Status).Valid() {
		return nil, fmt.Errorf("invalid status %q", req.Status)
	}
	if task.Status(req.Status) == task.StatusCompleted {
		// Rewards only flow through the completion transaction.
		return nil, fmt.Errorf("use the complete endpoint to complete a task")
	}
	if req.Status != "" {
		// A completed task keeps its status. Allowing a revert to
		// pending would let the same task pay its reward again.
		var current task.Status
		err := s.db.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task not found")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get task: %w", err)
		}
		if current == task.StatusCompleted {
			return nil, fmt.Errorf("completed tasks cannot change status")
		}
	}

	query := `
	UPDATE tasks
	SET
		title = COALESCE(NULLIF($2, ''), title),
		description = COALESCE(NULLIF($3, ''), description),
		category = COALESCE(NULLIF($4, ''), category),
		priority = COALESCE(NULLIF($5, '')::task_priority, priority),
		status = COALESCE(NULLIF($6, '')::task_status, status),
		due_date = COALESCE($7, due_date),
		estimated_time = COALESCE(NULLIF($8, ''), estimated_time),
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + taskColumns

	t, err := scanTask(s.db.QueryRow(
		ctx,
		query,
		id,
		req.Title,
		req.Description,
		req.Category,
		req.Priority,
		req.Status,
		req.DueDate,
		req.EstimatedTime,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task not found")
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("task not found")
	}

	return nil
}

// CompleteTask marks the task completed and applies the progression
// rewards to its user in one transaction. The user row is advanced by a
// single UPDATE computed in SQL, so two racing completions both land
// instead of one overwriting the other. Newly qualified achievements
// are unlocked in the same transaction, guarded by the unique
// (user_id, achievement_id) constraint.
func (s *TaskService) CompleteTask(ctx context.Context, taskID uuid.UUID, userID uuid.UUID) (*CompletionResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task not found")
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if current.Status == task.StatusCompleted {
		return nil, fmt.Errorf("task already completed")
	}

	reward := current.ExperienceReward
	if reward <= 0 {
		reward = game.DefaultReward
	}

	completedTask, err := scanTask(tx.QueryRow(ctx, `
	UPDATE tasks
	SET status = 'completed', completed_at = NOW(), updated_at = NOW()
	WHERE id = $1
	RETURNING `+taskColumns, taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	// Experience, level, tree stage, hit points and streak advance in
	// one statement against the stored row, not a value read earlier.
	updatedUser, err := scanUser(tx.QueryRow(ctx, `
	UPDATE users
	SET
		experience = experience + $2,
		level = (experience + $2) / 100 + 1,
		tree_stage = LEAST((experience + $2) / 100 + 1, 10),
		hit_points = LEAST(hit_points + $3, $4),
		streak = streak + 1,
		updated_at = NOW()
	WHERE id = $1
	RETURNING `+userColumns, userID, reward, game.HitPointsPerCompletion, game.MaxHitPoints))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update user stats: %w", err)
	}

	unlocked, err := s.unlockQualified(ctx, tx, updatedUser)
	if err != nil {
		return nil, err
	}

	leveledUp := updatedUser.Level > game.LevelForExperience(updatedUser.Experience-reward)
	if err := s.writeCompletionNotifications(ctx, tx, updatedUser, unlocked, leveledUp); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	log.Printf("CompleteTask: user %s completed task %s (+%d xp, %d unlocked)", userID, taskID, reward, len(unlocked))

	return &CompletionResult{
		User:                 updatedUser,
		Task:                 completedTask,
		UnlockedAchievements: unlocked,
	}, nil
}

// unlockQualified runs the evaluator over the user's full task list and
// persists any links that do not exist yet.
func (s *TaskService) unlockQualified(ctx context.Context, tx pgx.Tx, u *user.User) ([]*achievement.Achievement, error) {
	rows, err := tx.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}

	qualified := game.QualifiedAchievements(u, tasks, time.Now())
	if len(qualified) == 0 {
		return []*achievement.Achievement{}, nil
	}

	types := make([]string, 0, len(qualified))
	for _, tp := range qualified {
		types = append(types, string(tp))
	}

	insertQuery := `
	INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at)
	SELECT gen_random_uuid(), $1, a.id, NOW()
	FROM achievements a
	WHERE a.type = ANY($2)
	ON CONFLICT (user_id, achievement_id) DO NOTHING
	RETURNING achievement_id
	`

	achievementRows, err := tx.Query(ctx, insertQuery, u.ID, types)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock achievements: %w", err)
	}
	var newIDs []uuid.UUID
	for achievementRows.Next() {
		var id uuid.UUID
		if err := achievementRows.Scan(&id); err != nil {
			achievementRows.Close()
			return nil, fmt.Errorf("failed to scan unlocked achievement: %w", err)
		}
		newIDs = append(newIDs, id)
	}
	achievementRows.Close()
	if err := achievementRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unlocked achievements: %w", err)
	}

	if len(newIDs) == 0 {
		return []*achievement.Achievement{}, nil
	}

	detailRows, err := tx.Query(ctx, `
	SELECT id, name, description, type, icon, color, requirement
	FROM achievements
	WHERE id = ANY($1)
	ORDER BY requirement ASC`, newIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unlocked achievements: %w", err)
	}
	defer detailRows.Close()

	var unlocked []*achievement.Achievement
	for detailRows.Next() {
		a := &achievement.Achievement{}
		err := detailRows.Scan(&a.ID, &a.Name, &a.Description, &a.Type, &a.Icon, &a.Color, &a.Requirement)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		unlocked = append(unlocked, a)
	}
	if err := detailRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	return unlocked, nil
}

func (s *TaskService) writeCompletionNotifications(ctx context.Context, tx pgx.Tx, u *user.User, unlocked []*achievement.Achievement, leveledUp bool) error {
	insert := `
	INSERT INTO notifications (id, user_id, type, title, message, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	`

	for _, a := range unlocked {
		_, err := tx.Exec(ctx, insert,
			uuid.New(),
			u.ID,
			notification.NotificationAchievement,
			"Achievement unlocked",
			fmt.Sprintf("%s: %s", a.Name, a.Description),
		)
		if err != nil {
			return fmt.Errorf("failed to write achievement notification: %w", err)
		}
	}

	if leveledUp {
		_, err := tx.Exec(ctx, insert,
			uuid.New(),
			u.ID,
			notification.NotificationLevelUp,
			"Level up",
			fmt.Sprintf("You reached level %d, your tree is at stage %d", u.Level, u.TreeStage),
		)
		if err != nil {
			return fmt.Errorf("failed to write level-up notification: %w", err)
		}
	}

	return nil
}
