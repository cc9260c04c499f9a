// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"reelhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	rng   *rand.Rand
	now   func() time.Time
	// synthetic ID counter when running in DryRun mode
	nextID uint
	hash   string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
// A zero Options.Seed picks a time-based seed.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		now:    time.Now,
		nextID: 1000,
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", fmt.Errorf("hash seed password: %w", err)
	}
	f.hash = string(hashed)
	return f.hash, nil
}

// BuildUser constructs a sample user without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	username := clip(sanitizeUsername(f.faker.Username()), 24) + fmt.Sprintf("%d", f.faker.Number(100, 99999))
	user := &models.User{
		Username:   username,
		Email:      strings.ToLower(username) + "@example.com",
		Password:   hash,
		Bio:        clip(f.faker.Sentence(10), 200),
		Avatar:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		IsVerified: f.rng.Intn(10) == 0,
		Role:       models.RoleUser,
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildVideo constructs a video for creator without persisting it.
// CreatedAt is spread over the last MaxDays days.
func (f *Factory) BuildVideo(creator *models.User, videoType models.VideoType, overrides ...func(*models.Video)) *models.Video {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	age := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute

	duration := f.faker.Number(5, 60)
	if videoType == models.VideoTypeLong {
		duration = f.faker.Number(120, 3600)
	}

	id := f.faker.UUID()
	tags := make(models.TagList, 0, 3)
	for i := f.rng.Intn(4); i > 0; i-- {
		tags = append(tags, strings.ToLower(f.faker.Word()))
	}

	video := &models.Video{
		Title:        clip(strings.TrimSuffix(f.faker.Sentence(5), "."), 100),
		Description:  clip(f.faker.Paragraph(1, 2, 8, " "), 500),
		VideoURL:     fmt.Sprintf("https://cdn.example.com/videos/%s.mp4", id),
		ThumbnailURL: fmt.Sprintf("https://picsum.photos/seed/%s/720/1280", id),
		Duration:     duration,
		Views:        int64(f.rng.Intn(50000)),
		Category:     models.Categories[f.rng.Intn(len(models.Categories))],
		Tags:         tags,
		IsPublic:     f.rng.Intn(10) != 0,
		CreatorID:    creator.ID,
		VideoType:    videoType,
		Location:     f.faker.City(),
		Language:     models.DefaultLanguage,
		CreatedAt:    f.now().Add(-age),
	}
	for _, override := range overrides {
		override(video)
	}
	return video
}

// CreateVideosBatch persists multiple videos in batches of Options.BatchSize.
func (f *Factory) CreateVideosBatch(videos []*models.Video) error {
	if len(videos) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, v := range videos {
			f.nextID++
			v.ID = f.nextID
		}
		log.Printf("[dry-run] CreateVideosBatch: %d videos (no DB write)", len(videos))
		return nil
	}
	return f.db.CreateInBatches(videos, f.batchSize()).Error
}

// CreateComment constructs and persists a sample comment on video by author.
func (f *Factory) CreateComment(author *models.User, video *models.Video, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   clip(f.faker.Sentence(8), 1000),
		AuthorID:  author.ID,
		VideoID:   video.ID,
		CreatedAt: video.CreatedAt.Add(time.Duration(f.rng.Intn(72)+1) * time.Hour),
	}
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReaction persists a like or dislike from user on video.
func (f *Factory) CreateReaction(user *models.User, video *models.Video, kind models.ReactionKind) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.VideoReaction{UserID: user.ID, VideoID: video.ID, Kind: kind}).Error
}

// CreateFollow persists that follower follows following.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error
}

func (f *Factory) batchSize() int {
	if f.opts.BatchSize <= 0 {
		return 100
	}
	return f.opts.BatchSize
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '.' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n])
}
