package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskForestAPI/internal/game"
	"taskForestAPI/internal/leaderboard"
	"taskForestAPI/internal/stats"
	"taskForestAPI/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, username, email, level, experience, hit_points, streak, tree_stage, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Level,
		&u.Experience,
		&u.HitPoints,
		&u.Streak,
		&u.TreeStage,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	query := `
	INSERT INTO users (id, username, email, created_at, updated_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, uuid.New(), req.Username, req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetOrCreateByUsername backs the session flow: the first request for an
// unknown username provisions the account.
func (s *UserService) GetOrCreateByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	u, err := scanUser(s.db.QueryRow(ctx, query, username))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	log.Printf("GetOrCreateByUsername: provisioning user %q", username)
	return s.CreateUser(ctx, &user.CreateUserRequest{Username: username})
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET
		username = COALESCE(NULLIF($2, ''), username),
		email = COALESCE(NULLIF($3, ''), email),
		hit_points = LEAST(GREATEST(COALESCE($4, hit_points), 0), 100),
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, id, req.Username, req.Email, req.HitPoints))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserStats(ctx context.Context, id uuid.UUID) (*stats.UserStats, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		COALESCE(COUNT(*) FILTER (WHERE t.status = 'completed'), 0) as completed_tasks,
		COALESCE(COUNT(*) FILTER (WHERE t.status = 'completed' AND t.completed_at::date = CURRENT_DATE), 0) as completed_today,
		COALESCE(COUNT(*) FILTER (WHERE t.status = 'pending'), 0) as pending_tasks,
		(SELECT COUNT(*) FROM user_achievements ua WHERE ua.user_id = $1) as achievements_count
	FROM tasks t
	WHERE t.user_id = $1
	`

	userStats := &stats.UserStats{
		Level:            u.Level,
		Experience:       u.Experience,
		ExperienceToNext: game.ExperienceToNextLevel(u.Experience),
		Progress:         game.ProgressWithinLevel(u.Experience),
		TreeStage:        u.TreeStage,
		TreeStageInfo:    game.TreeStageInfo(u.TreeStage),
		HitPoints:        u.HitPoints,
		Streak:           u.Streak,
	}

	err = s.db.QueryRow(ctx, query, id).Scan(
		&userStats.CompletedTasks,
		&userStats.CompletedToday,
		&userStats.PendingTasks,
		&userStats.AchievementsCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return userStats, nil
}

func (s *UserService) GetLeaderboard(ctx context.Context, currentUserID uuid.UUID) (*leaderboard.Leaderboard, error) {
	query := `
	SELECT
		u.id as user_id,
		u.username,
		u.level,
		u.experience,
		u.tree_stage,
		u.streak,
		RANK() OVER (ORDER BY u.experience DESC) as rank
	FROM users u
	ORDER BY u.experience DESC, u.streak DESC
	LIMIT 50
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.LeaderboardEntry
	var userPosition *leaderboard.LeaderboardEntry

	for rows.Next() {
		entry := &leaderboard.LeaderboardEntry{}
		err := rows.Scan(
			&entry.UserID,
			&entry.Username,
			&entry.Level,
			&entry.Experience,
			&entry.TreeStage,
			&entry.Streak,
			&entry.Rank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		entries = append(entries, entry)

		if entry.UserID == currentUserID {
			userPosition = entry
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &leaderboard.Leaderboard{
		Entries:      entries,
		UserPosition: userPosition,
		TotalUsers:   len(entries),
	}, nil
}
