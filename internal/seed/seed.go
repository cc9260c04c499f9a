package seed

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"reelhub/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	SkipBcrypt bool
	BatchSize  int
	MaxDays    int
	DryRun     bool
	// Seed fixes the random source; zero means time-based.
	Seed int64
}

// Preset is a named dataset size.
type Preset struct {
	Users      int
	Videos     int
	ShortShare float64
}

// Presets are the datasets ApplyPreset accepts.
var Presets = map[string]Preset{
	"minimal":   {Users: 5, Videos: 20, ShortShare: 0.7},
	"demo":      {Users: 50, Videos: 300, ShortShare: 0.7},
	"populated": {Users: 200, Videos: 2000, ShortShare: 0.6},
	"mega":      {Users: 1000, Videos: 20000, ShortShare: 0.6},
}

// Stats counts what a seeding run wrote.
type Stats struct {
	Reactions int
	Comments  int
}

// Seeder writes coherent demo datasets on top of a Factory.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// PresetNames returns the accepted preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset seeds users, videos and engagement sized by the named
// preset. Existing rows are kept.
func (s *Seeder) ApplyPreset(name string) error {
	p, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return s.Run(p)
}

// Run seeds one dataset of the given size.
func (s *Seeder) Run(p Preset) error {
	log.Printf("🌱 Seeding %d users and %d videos...", p.Users, p.Videos)

	users, err := s.SeedSocialMesh(p.Users)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	videos, err := s.SeedCatalog(users, p.Videos, p.ShortShare)
	if err != nil {
		return fmt.Errorf("failed to create videos: %w", err)
	}
	log.Printf("✓ %d videos created", len(videos))

	stats, err := s.SeedEngagement(users, videos)
	if err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}
	log.Printf("✓ %d reactions, %d comments", stats.Reactions, stats.Comments)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

// ClearAll removes every row from the application tables.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE comment_reactions, comments, video_reactions, videos, follows, users RESTART IDENTITY CASCADE;`).Error
	}
	for _, table := range []string{"comment_reactions", "comments", "video_reactions", "videos", "follows", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedSocialMesh creates n users and a follow graph between them. The
// first three users are fixed accounts, the first of which is an admin.
func (s *Seeder) SeedSocialMesh(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	fixed := []struct {
		name string
		role models.Role
	}{
		{"admin", models.RoleAdmin},
		{"creator", models.RoleCreator},
		{"viewer", models.RoleUser},
	}
	for i := 0; i < n && i < len(fixed); i++ {
		name, role := fixed[i].name, fixed[i].role
		user, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = name
			u.Email = name + "@example.com"
			u.Role = role
			u.IsVerified = role != models.RoleUser
		})
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	for i := len(users); i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)
		if i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	follows := 0
	for _, follower := range users {
		for _, j := range s.factory.rng.Perm(len(users))[:followFanout(len(users))] {
			target := users[j]
			if target.ID == follower.ID {
				continue
			}
			if err := s.factory.CreateFollow(follower, target); err != nil {
				return nil, fmt.Errorf("follow %d -> %d: %w", follower.ID, target.ID, err)
			}
			follows++
		}
	}
	log.Printf("✓ %d follows created", follows)
	return users, nil
}

// SeedCatalog creates total videos spread across creators, with
// shortShare of them short-form.
func (s *Seeder) SeedCatalog(creators []*models.User, total int, shortShare float64) ([]*models.Video, error) {
	if len(creators) == 0 || total <= 0 {
		return nil, nil
	}
	short, long := splitByType(total, shortShare)
	videos := make([]*models.Video, 0, total)
	for i := 0; i < short+long; i++ {
		videoType := models.VideoTypeShort
		if i >= short {
			videoType = models.VideoTypeLong
		}
		creator := creators[s.factory.rng.Intn(len(creators))]
		videos = append(videos, s.factory.BuildVideo(creator, videoType))
	}
	if err := s.factory.CreateVideosBatch(videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// SeedEngagement adds reactions and comments from users on public videos.
// Each user reacts to a video at most once.
func (s *Seeder) SeedEngagement(users []*models.User, videos []*models.Video) (Stats, error) {
	var stats Stats
	if len(users) == 0 {
		return stats, nil
	}
	rng := s.factory.rng
	for _, video := range videos {
		if !video.IsPublic {
			continue
		}
		reactors := rng.Perm(len(users))[:rng.Intn(len(users)+1)]
		for _, idx := range reactors {
			kind := models.ReactionLike
			if rng.Intn(8) == 0 {
				kind = models.ReactionDislike
			}
			if err := s.factory.CreateReaction(users[idx], video, kind); err != nil {
				return stats, fmt.Errorf("react on video %d: %w", video.ID, err)
			}
			stats.Reactions++
		}

		var thread []*models.Comment
		for i := rng.Intn(4); i > 0; i-- {
			author := users[rng.Intn(len(users))]
			comment, err := s.factory.CreateComment(author, video, func(c *models.Comment) {
				if len(thread) > 0 && rng.Intn(3) == 0 {
					parentID := thread[rng.Intn(len(thread))].ID
					c.ParentID = &parentID
				}
			})
			if err != nil {
				return stats, fmt.Errorf("comment on video %d: %w", video.ID, err)
			}
			if comment.ParentID == nil {
				thread = append(thread, comment)
			}
			stats.Comments++
		}
	}
	return stats, nil
}

// splitByType divides total into short and long counts, rounding the long
// share to the nearest video.
func splitByType(total int, shortShare float64) (short, long int) {
	if shortShare < 0 {
		shortShare = 0
	}
	if shortShare > 1 {
		shortShare = 1
	}
	long = int(math.Round(float64(total) * (1 - shortShare)))
	return total - long, long
}

// followFanout is how many candidates each user considers following.
func followFanout(n int) int {
	switch {
	case n <= 1:
		return n
	case n <= 10:
		return n / 2
	default:
		return 10
	}
}
