package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskForestAPI/internal/notification"
)

// NotificationService reads and manages the in-app notification feed.
// Rows are produced by the completion transaction (achievement unlocks
// and level-ups); there is no push delivery.
type NotificationService struct {
	db *pgxpool.Pool
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) (*notification.NotificationListResponse, error) {
	query := `
	SELECT id, user_id, type, title, message, is_read, created_at
	FROM notifications
	WHERE user_id = $1 AND ($2 = false OR is_read = false)
	ORDER BY created_at DESC
	LIMIT 50
	`

	rows, err := s.db.Query(ctx, query, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n := &notification.Notification{}
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	if notifications == nil {
		notifications = []*notification.Notification{}
	}

	unread, err := s.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `
	UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
	UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}
