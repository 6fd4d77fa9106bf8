package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cppla/blog/config"
	"github.com/cppla/blog/models"
)

const testHashCost = bcrypt.MinCost

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase(config.AppConfig{
		DatabaseURI: "sqlite://" + filepath.Join(t.TempDir(), "blog.db"),
		LogLevel:    "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.PageView{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustRegister(t *testing.T, users *UserService, email, name string) *models.User {
	t.Helper()
	u, err := users.Register(context.Background(), email, "secret123", name)
	require.NoError(t, err)
	return u
}
