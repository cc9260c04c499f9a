package repository

import (
	"fmt"
	"testing"
	"time"

	"reelhub/internal/database"
	"reelhub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB returns a postgres-dialect GORM handle over sqlmock for
// asserting SQL shape.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a migrated in-memory database private to the test.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func mkUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "hash",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

type videoOpt func(*models.Video)

func withType(vt models.VideoType) videoOpt { return func(v *models.Video) { v.VideoType = vt } }

func withCategory(c models.Category) videoOpt { return func(v *models.Video) { v.Category = c } }

func withViews(n int64) videoOpt { return func(v *models.Video) { v.Views = n } }

func private() videoOpt { return func(v *models.Video) { v.IsPublic = false } }

func withText(title, description string) videoOpt {
	return func(v *models.Video) {
		v.Title = title
		v.Description = description
	}
}

var videoClock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func mkVideo(t *testing.T, db *gorm.DB, creator *models.User, opts ...videoOpt) *models.Video {
	t.Helper()
	videoClock = videoClock.Add(time.Minute)
	v := &models.Video{
		Title:     fmt.Sprintf("video %d", videoClock.Unix()),
		VideoURL:  "https://cdn.example.com/v.mp4",
		Category:  models.CategoryOther,
		Tags:      []string{},
		IsPublic:  true,
		CreatorID: creator.ID,
		VideoType: models.VideoTypeShort,
		Language:  models.DefaultLanguage,
		CreatedAt: videoClock,
	}
	for _, opt := range opts {
		opt(v)
	}
	require.NoError(t, db.Create(v).Error)
	return v
}

func mkComment(t *testing.T, db *gorm.DB, author *models.User, video *models.Video, parent *models.Comment, content string) *models.Comment {
	t.Helper()
	videoClock = videoClock.Add(time.Minute)
	c := &models.Comment{Content: content, AuthorID: author.ID, VideoID: video.ID, CreatedAt: videoClock}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
