// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/anoixa/photo-share/database"
	"github.com/anoixa/photo-share/database/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with the full schema and seeded roles.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedRoles(context.Background(), db))
	return db
}

// CreateUser inserts a user with the USER role.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()

	var role models.Role
	require.NoError(t, db.Where("name = ?", models.RoleUser).First(&role).Error)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Roles:    []models.Role{role},
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateAlbum inserts an album owned by userID.
func CreateAlbum(t testing.TB, db *gorm.DB, userID uint, name string) *models.Album {
	t.Helper()

	album := &models.Album{UserID: userID, Name: name, ShareToken: fmt.Sprintf("tok-%s-%d", name, userID)}
	require.NoError(t, db.Create(album).Error)
	return album
}

// CreatePhoto inserts a photo into albumID with the given keys.
func CreatePhoto(t testing.TB, db *gorm.DB, albumID uint, storageKey, analysisKey string) *models.Photo {
	t.Helper()

	photo := &models.Photo{
		AlbumID:          albumID,
		StorageKey:       storageKey,
		AnalysisImageKey: analysisKey,
		OriginalFileName: storageKey + ".jpg",
	}
	require.NoError(t, db.Create(photo).Error)
	return photo
}

// CreateComment inserts a comment on photoID.
func CreateComment(t testing.TB, db *gorm.DB, photoID uint, name, content string) *models.Comment {
	t.Helper()

	c := &models.Comment{PhotoID: photoID, CommenterName: name, Content: content}
	require.NoError(t, db.Create(c).Error)
	return c
}
