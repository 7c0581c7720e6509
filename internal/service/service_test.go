package service

import (
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/database"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AddDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, true)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, n int, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Email:     fmt.Sprintf("user%d@example.com", n),
		FirstName: "User",
		LastName:  fmt.Sprint(n),
		Role:      role,
	}
	require.NoError(t, repository.NewUserRepository(db).Create(user))
	return user
}

func newTestAchievementService(db *gorm.DB, clock *fakeClock, opts ...AchievementOption) *AchievementService {
	opts = append([]AchievementOption{WithClock(clock.Now)}, opts...)
	return NewAchievementService(
		db,
		repository.NewUserStatsRepository(db),
		repository.NewAchievementRepository(db),
		repository.NewAssignmentRepository(db),
		opts...,
	)
}
