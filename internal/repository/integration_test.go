//go:build integration

package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"reelhub/internal/database"
	"reelhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgresDB connects to DATABASE_URL and migrates the schema.
// Rows are written under unique names so runs do not collide.
func setupPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping postgres integration test")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestIntegration_ConcurrentLikesAndFollows(t *testing.T) {
	db := setupPostgresDB(t)
	suffix := time.Now().UnixNano()
	creator := mkUser(t, db, fmt.Sprintf("it_creator_%d", suffix))
	video := mkVideo(t, db, creator)

	const fans = 8
	users := make([]*models.User, fans)
	for i := range users {
		users[i] = mkUser(t, db, fmt.Sprintf("it_fan_%d_%d", i, suffix))
	}

	reactions := NewReactionRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 2*fans)
	for _, u := range users {
		wg.Add(1)
		go func(u *models.User) {
			defer wg.Done()
			if res, err := reactions.ToggleVideo(ctx, u.ID, video.ID, models.ReactionLike); err != nil {
				errs <- err
			} else if !res.Active {
				errs <- fmt.Errorf("user %d: like not active", u.ID)
			}
			if _, err := follows.Follow(ctx, u.ID, creator.ID); err != nil {
				errs <- err
			}
		}(u)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	var likes, followers int64
	require.NoError(t, db.Model(&models.VideoReaction{}).Where("video_id = ? AND kind = ?", video.ID, models.ReactionLike).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Follow{}).Where("following_id = ?", creator.ID).Count(&followers).Error)
	assert.Equal(t, int64(fans), likes)
	assert.Equal(t, int64(fans), followers)
}
