package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskForestAPI/internal/achievement"
	"taskForestAPI/services"
	"taskForestAPI/tests/helpers"
)

// Seeding runs at every startup, so running it twice has to leave the
// catalog exactly as one run left it.
func TestSeedCatalogIdempotent(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	achievementService := services.NewAchievementService(pool)

	require.NoError(t, achievementService.SeedCatalog(ctx))
	require.NoError(t, achievementService.SeedCatalog(ctx))

	catalog, err := achievementService.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, 6)

	seen := map[achievement.Type]bool{}
	for _, a := range catalog {
		assert.False(t, seen[a.Type], "duplicate achievement type %s", a.Type)
		seen[a.Type] = true
		assert.NotEmpty(t, a.Name)
		assert.Greater(t, a.Requirement, 0)
	}

	for _, tp := range []achievement.Type{
		achievement.TypeTaskMaster,
		achievement.TypeGreenThumb,
		achievement.TypeConsistent,
		achievement.TypeSpeedDemon,
		achievement.TypePrecious,
		achievement.TypeStreakKeeper,
	} {
		assert.True(t, seen[tp], "catalog is missing %s", tp)
	}
}

func TestAchievementStatusListing(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	ctx := context.Background()
	achievementService := services.NewAchievementService(pool)

	require.NoError(t, achievementService.SeedCatalog(ctx))

	userID := helpers.InsertTestUser(t, pool, helpers.TestUsername("status"), 0, 1, 0)

	list, err := achievementService.ListWithStatus(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 6)
	for _, a := range list {
		assert.False(t, a.Unlocked)
		assert.Nil(t, a.UnlockedAt)
	}

	catalog, err := achievementService.ListCatalog(ctx)
	require.NoError(t, err)
	_, err = achievementService.UnlockAchievement(ctx, userID, catalog[0].ID)
	require.NoError(t, err)

	// Second unlock of the same achievement is refused.
	_, err = achievementService.UnlockAchievement(ctx, userID, catalog[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already unlocked")

	list, err = achievementService.ListWithStatus(ctx, userID)
	require.NoError(t, err)

	var unlocked int
	for _, a := range list {
		if a.Unlocked {
			unlocked++
			assert.NotNil(t, a.UnlockedAt)
		}
	}
	assert.Equal(t, 1, unlocked)
}
