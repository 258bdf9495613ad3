package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB creates a test database connection
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Fatal("TEST_DATABASE_URL or DATABASE_URL must be set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

// CleanupTestDB removes test users; tasks, unlock links and
// notifications go with them through the cascade.
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	_, err := pool.Exec(ctx, "DELETE FROM users WHERE username LIKE 'test-%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
	pool.Close()
}

// TestUsername returns a unique username inside the cleanup prefix.
func TestUsername(prefix string) string {
	return fmt.Sprintf("test-%s-%s", prefix, time.Now().Format("20060102150405.000"))
}

// InsertTestUser creates a user row directly with the given stats.
func InsertTestUser(t *testing.T, pool *pgxpool.Pool, username string, experience, level, streak int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
	INSERT INTO users (id, username, level, experience, streak, tree_stage, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, LEAST($3, 10), NOW(), NOW())`,
		id, username, level, experience, streak)
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}

	return id
}

// InsertCompletedTask creates an already-completed task row so the
// evaluator has history to look at.
func InsertCompletedTask(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, completedAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
	INSERT INTO tasks (id, user_id, title, status, experience_reward, completed_at, created_at, updated_at)
	VALUES ($1, $2, 'done before', 'completed', 25, $3, NOW(), NOW())`,
		id, userID, completedAt)
	if err != nil {
		t.Fatalf("Failed to insert completed task: %v", err)
	}

	return id
}
