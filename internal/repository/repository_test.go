package repository

import (
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/database"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

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

func createUser(t *testing.T, db *gorm.DB, n int) *model.User {
	t.Helper()
	user := &model.User{
		Email:     fmt.Sprintf("student%d@example.com", n),
		FirstName: "Student",
		LastName:  fmt.Sprint(n),
		Role:      model.Student,
	}
	require.NoError(t, NewUserRepository(db).Create(user))
	return user
}
