package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskForestAPI/services"
	"taskForestAPI/tests/helpers"
)

func TestLeaderboardUserPosition(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	userService := services.NewUserService(pool)

	leaderID := helpers.InsertTestUser(t, pool, helpers.TestUsername("board-top"), 500, 6, 3)
	trailerID := helpers.InsertTestUser(t, pool, helpers.TestUsername("board-low"), 50, 1, 1)

	board, err := userService.GetLeaderboard(ctx, trailerID)
	require.NoError(t, err)
	require.NotEmpty(t, board.Entries)

	// A known actor gets their own entry called out.
	require.NotNil(t, board.UserPosition)
	assert.Equal(t, trailerID, board.UserPosition.UserID)

	var leaderRank, trailerRank int
	for _, e := range board.Entries {
		switch e.UserID {
		case leaderID:
			leaderRank = e.Rank
		case trailerID:
			trailerRank = e.Rank
		}
	}
	require.NotZero(t, leaderRank)
	require.NotZero(t, trailerRank)
	assert.Less(t, leaderRank, trailerRank, "more experience ranks higher")

	// Anonymous callers get the board without a position.
	board, err = userService.GetLeaderboard(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, board.UserPosition)
}
