package repository

import (
	"learnhub_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAchievementRepository_GetOrCreate(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, 1)
	repo := NewAchievementRepository(db)

	rec, err := repo.GetOrCreate(user.ID, "early_bird")
	require.NoError(t, err)
	assert.Zero(t, rec.CurrentProgress)
	assert.False(t, rec.IsCompleted)

	again, err := repo.GetOrCreate(user.ID, "early_bird")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)

	records, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAchievementRepository_Unviewed(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, 1)
	repo := NewAchievementRepository(db)
	now := time.Now().UTC()

	for _, id := range []string{"early_bird", "first_perfect", "fast_learner"} {
		rec, err := repo.GetOrCreate(user.ID, id)
		require.NoError(t, err)
		if id != "fast_learner" {
			rec.IsCompleted = true
			rec.CompletedAt = &now
			require.NoError(t, repo.Save(rec))
		}
	}

	unviewed, err := repo.FindUnviewed(user.ID)
	require.NoError(t, err)
	require.Len(t, unviewed, 2)

	found, err := repo.MarkViewed(user.ID, "early_bird")
	require.NoError(t, err)
	assert.True(t, found)

	// 重复标记仍视为找到
	found, err = repo.MarkViewed(user.ID, "early_bird")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.MarkViewed(user.ID, "daily_streak_30")
	require.NoError(t, err)
	assert.False(t, found)

	unviewed, err = repo.FindUnviewed(user.ID)
	require.NoError(t, err)
	require.Len(t, unviewed, 1)
	assert.Equal(t, "first_perfect", unviewed[0].AchievementID)

	n, err := repo.MarkAllViewed(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.MarkAllViewed(user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAchievementRepository_EnsureAll(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, 1)
	repo := NewAchievementRepository(db)

	rec, err := repo.GetOrCreate(user.ID, "helpful_student")
	require.NoError(t, err)
	rec.CurrentProgress = 4
	require.NoError(t, repo.Save(rec))

	ids := []string{"helpful_student", "early_bird", "first_perfect"}
	require.NoError(t, repo.EnsureAll(user.ID, ids))
	require.NoError(t, repo.EnsureAll(user.ID, ids))

	records, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	kept, err := repo.Find(user.ID, "helpful_student")
	require.NoError(t, err)
	assert.Equal(t, 4, kept.CurrentProgress)
}

func TestAchievementRepository_CascadeOnUserDelete(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, 1)
	repo := NewAchievementRepository(db)

	_, err := repo.GetOrCreate(user.ID, "early_bird")
	require.NoError(t, err)

	require.NoError(t, db.Unscoped().Delete(&model.User{}, user.ID).Error)

	records, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}
