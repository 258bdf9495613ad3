package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskForestAPI/internal/achievement"
)

type AchievementService struct {
	db *pgxpool.Pool
}

func NewAchievementService(db *pgxpool.Pool) *AchievementService {
	return &AchievementService{db: db}
}

// defaultCatalog is the fixed six-entry achievement catalog.
var defaultCatalog = []achievement.Achievement{
	{
		Name:        "Task Master",
		Description: "Complete 10 tasks",
		Type:        achievement.TypeTaskMaster,
		Icon:        "fas fa-trophy",
		Color:       "from-yellow-400 to-yellow-500",
		Requirement: 10,
	},
	{
		Name:        "Green Thumb",
		Description: "Reach level 5",
		Type:        achievement.TypeGreenThumb,
		Icon:        "fas fa-seedling",
		Color:       "from-forest-400 to-forest-500",
		Requirement: 5,
	},
	{
		Name:        "Consistent",
		Description: "Maintain a 7-day streak",
		Type:        achievement.TypeConsistent,
		Icon:        "fas fa-calendar-check",
		Color:       "from-blue-400 to-blue-500",
		Requirement: 7,
	},
	{
		Name:        "Speed Demon",
		Description: "Complete 5 tasks in one day",
		Type:        achievement.TypeSpeedDemon,
		Icon:        "fas fa-bolt",
		Color:       "from-purple-400 to-purple-500",
		Requirement: 5,
	},
	{
		Name:        "Precious",
		Description: "Complete 50 tasks total",
		Type:        achievement.TypePrecious,
		Icon:        "fas fa-gem",
		Color:       "from-red-400 to-red-500",
		Requirement: 50,
	},
	{
		Name:        "Streak Keeper",
		Description: "Maintain a 30-day streak",
		Type:        achievement.TypeStreakKeeper,
		Icon:        "fas fa-fire",
		Color:       "from-orange-400 to-orange-500",
		Requirement: 30,
	},
}

// SeedCatalog inserts the default catalog once. A non-empty catalog is
// left untouched, so calling this on every startup is safe.
func (s *AchievementService) SeedCatalog(ctx context.Context) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM achievements`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count achievements: %w", err)
	}
	if count > 0 {
		return nil
	}

	query := `
	INSERT INTO achievements (id, name, description, type, icon, color, requirement)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, a := range defaultCatalog {
		_, err := s.db.Exec(ctx, query, uuid.New(), a.Name, a.Description, a.Type, a.Icon, a.Color, a.Requirement)
		if err != nil {
			return fmt.Errorf("failed to seed achievement %s: %w", a.Type, err)
		}
	}

	log.Printf("SeedCatalog: seeded %d achievements", len(defaultCatalog))
	return nil
}

func (s *AchievementService) ListCatalog(ctx context.Context) ([]*achievement.Achievement, error) {
	query := `
	SELECT id, name, description, type, icon, color, requirement
	FROM achievements
	ORDER BY requirement ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*achievement.Achievement
	for rows.Next() {
		a := &achievement.Achievement{}
		err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Type, &a.Icon, &a.Color, &a.Requirement)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	if achievements == nil {
		achievements = []*achievement.Achievement{}
	}

	return achievements, nil
}

func (s *AchievementService) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]*achievement.UserAchievement, error) {
	query := `
	SELECT id, user_id, achievement_id, unlocked_at
	FROM user_achievements
	WHERE user_id = $1
	ORDER BY unlocked_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user achievements: %w", err)
	}
	defer rows.Close()

	var links []*achievement.UserAchievement
	for rows.Next() {
		ua := &achievement.UserAchievement{}
		err := rows.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.UnlockedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user achievement: %w", err)
		}
		links = append(links, ua)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user achievements: %w", err)
	}

	if links == nil {
		links = []*achievement.UserAchievement{}
	}

	return links, nil
}

// ListWithStatus returns the full catalog annotated with the user's
// unlock state, unlocked entries first.
func (s *AchievementService) ListWithStatus(ctx context.Context, userID uuid.UUID) ([]*achievement.AchievementWithStatus, error) {
	query := `
	SELECT
		a.id,
		a.name,
		a.description,
		a.type,
		a.icon,
		a.color,
		a.requirement,
		CASE WHEN ua.id IS NOT NULL THEN true ELSE false END as unlocked,
		ua.unlocked_at
	FROM achievements a
	LEFT JOIN user_achievements ua ON a.id = ua.achievement_id AND ua.user_id = $1
	ORDER BY unlocked DESC, a.requirement ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*achievement.AchievementWithStatus
	for rows.Next() {
		ach := &achievement.AchievementWithStatus{}
		err := rows.Scan(
			&ach.ID,
			&ach.Name,
			&ach.Description,
			&ach.Type,
			&ach.Icon,
			&ach.Color,
			&ach.Requirement,
			&ach.Unlocked,
			&ach.UnlockedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, ach)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	return achievements, nil
}

// UnlockAchievement records a single unlock link. The unique constraint
// keeps a (user, achievement) pair from ever being recorded twice.
func (s *AchievementService) UnlockAchievement(ctx context.Context, userID uuid.UUID, achievementID uuid.UUID) (*achievement.UserAchievement, error) {
	query := `
	INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, achievement_id) DO NOTHING
	RETURNING id, user_id, achievement_id, unlocked_at
	`

	ua := &achievement.UserAchievement{}
	err := s.db.QueryRow(ctx, query, uuid.New(), userID, achievementID).Scan(
		&ua.ID,
		&ua.UserID,
		&ua.AchievementID,
		&ua.UnlockedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("achievement already unlocked")
		}
		return nil, fmt.Errorf("failed to unlock achievement: %w", err)
	}

	return ua, nil
}
