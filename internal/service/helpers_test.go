package service

import (
	"context"
	"testing"
	"time"

	"reelhub/internal/database"
	"reelhub/internal/featureflags"
	"reelhub/internal/middleware"
	"reelhub/internal/models"
	"reelhub/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires every service over one in-memory database.
type testEnv struct {
	db         *gorm.DB
	tokens     *middleware.TokenManager
	users      *UserService
	videos     *VideoService
	feeds      *FeedService
	engagement *EngagementService
	comments   *CommentService
	videoRepo  repository.VideoRepository
}

type envOptions struct {
	rdb   *redis.Client
	flags string
}

func newTestEnv(t *testing.T, opts ...func(*envOptions)) *testEnv {
	t.Helper()
	var o envOptions
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	userRepo := repository.NewUserRepository(db, nil)
	followRepo := repository.NewFollowRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	tokens := middleware.NewTokenManager("test-secret-test-secret-test-secret", time.Hour)

	users := NewUserService(userRepo, followRepo, tokens)
	users.bcryptCost = bcrypt.MinCost

	views := NewViewCounter(videoRepo, o.rdb, featureflags.NewManager(o.flags), time.Minute)

	return &testEnv{
		db:         db,
		tokens:     tokens,
		users:      users,
		videos:     NewVideoService(videoRepo, followRepo, commentRepo, views),
		feeds:      NewFeedService(videoRepo, userRepo),
		engagement: NewEngagementService(videoRepo, commentRepo, reactionRepo),
		comments:   NewCommentService(commentRepo, videoRepo),
		videoRepo:  videoRepo,
	}
}

func withRedis(rdb *redis.Client, flags string) func(*envOptions) {
	return func(o *envOptions) {
		o.rdb = rdb
		o.flags = flags
	}
}

func (e *testEnv) register(t *testing.T, name string) uint {
	t.Helper()
	res, err := e.users.Register(context.Background(), RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "passw0rd",
	})
	require.NoError(t, err)
	return res.ID
}

func (e *testEnv) upload(t *testing.T, creatorID uint, in CreateVideoInput) *models.VideoView {
	t.Helper()
	if in.Title == "" {
		in.Title = "clip"
	}
	if in.VideoURL == "" {
		in.VideoURL = "https://cdn.example.com/clip.mp4"
	}
	v, err := e.videos.Create(context.Background(), creatorID, in)
	require.NoError(t, err)
	return v
}

func boolp(v bool) *bool { return &v }

func strp(s string) *string { return &s }

func assertCode(t *testing.T, want string, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, models.ErrorCode(err), "unexpected error: %v", err)
}
