package repository

import (
	"context"
	"sync"
	"testing"

	"reelhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionRepository_ToggleVideoLike(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReactionRepository(db)
	videos := NewVideoRepository(db)
	ctx := context.Background()

	creator := mkUser(t, db, "creator")
	fan := mkUser(t, db, "fan")
	video := mkVideo(t, db, creator)

	res, err := repo.ToggleVideo(ctx, fan.ID, video.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(1), res.Count)

	view, err := videos.GetView(ctx, video.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{fan.ID}, view.Likes)

	res, err = repo.ToggleVideo(ctx, fan.ID, video.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Zero(t, res.Count)

	view, err = videos.GetView(ctx, video.ID, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Likes)
	assert.Zero(t, view.LikeCount)
}

func TestReactionRepository_LikeReplacesDislike(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	creator := mkUser(t, db, "creator")
	fan := mkUser(t, db, "fan")
	video := mkVideo(t, db, creator)

	res, err := repo.ToggleVideo(ctx, fan.ID, video.ID, models.ReactionDislike)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(1), res.Count)

	res, err = repo.ToggleVideo(ctx, fan.ID, video.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(1), res.Count)

	var rows []models.VideoReaction
	require.NoError(t, db.Where("video_id = ?", video.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ReactionLike, rows[0].Kind)
}

func TestReactionRepository_CountsAcrossUsers(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	creator := mkUser(t, db, "creator")
	video := mkVideo(t, db, creator)

	var last models.ToggleResult
	for _, name := range []string{"a", "b", "c"} {
		u := mkUser(t, db, name)
		var err error
		last, err = repo.ToggleVideo(ctx, u.ID, video.ID, models.ReactionLike)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), last.Count)
}

func TestReactionRepository_ConcurrentTogglesStayConsistent(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReactionRepository(db)
	videos := NewVideoRepository(db)
	ctx := context.Background()

	creator := mkUser(t, db, "creator")
	video := mkVideo(t, db, creator)
	users := make([]*models.User, 8)
	for i := range users {
		users[i] = mkUser(t, db, "u"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := repo.ToggleVideo(ctx, id, video.ID, models.ReactionLike)
			assert.NoError(t, err)
		}(u.ID)
	}
	wg.Wait()

	view, err := videos.GetView(ctx, video.ID, 0)
	require.NoError(t, err)
	assert.Len(t, view.Likes, len(users))
	assert.Equal(t, int64(len(view.Likes)), view.LikeCount)
}

func TestReactionRepository_ToggleComment(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReactionRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	creator := mkUser(t, db, "creator")
	fan := mkUser(t, db, "fan")
	video := mkVideo(t, db, creator)
	c := mkComment(t, db, creator, video, nil, "first")

	res, err := repo.ToggleComment(ctx, fan.ID, c.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(1), res.Count)

	view, err := comments.GetView(ctx, c.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{fan.ID}, view.Likes)
	require.NotNil(t, view.IsLiked)
	assert.True(t, *view.IsLiked)

	res, err = repo.ToggleComment(ctx, fan.ID, c.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Zero(t, res.Count)
}
