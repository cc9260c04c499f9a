// Package bootstrap opens the runtime dependencies shared by the server and
// the command-line tools.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reelhub/internal/cache"
	"reelhub/internal/config"
	"reelhub/internal/database"
	"reelhub/internal/middleware"
	"reelhub/internal/models"
	"reelhub/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipRedis leaves the Redis client nil.
	SkipRedis bool
}

// InitRuntime connects to the database and Redis, then applies the
// development-only root account and seed settings.
// The Redis client is nil when Redis is unreachable or skipped.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	var rdb *redis.Client
	if !opts.SkipRedis {
		rdb = cache.Connect(cfg.RedisURL)
	}

	if err := EnsureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if err := seedOnStart(cfg, db); err != nil {
		return nil, nil, err
	}

	return db, rdb, nil
}

// EnsureDevRootAdmin creates or promotes the configured root admin when
// DEV_BOOTSTRAP_ROOT is set in development. It is a no-op otherwise.
func EnsureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !cfg.IsDevelopment() || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "reelhub_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@reelhub.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username:   username,
				Email:      email,
				Password:   string(hashedPassword),
				Role:       models.RoleAdmin,
				IsVerified: true,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		}

		updates := map[string]any{"role": models.RoleAdmin}
		if cfg.DevRootForceCredentials {
			updates["username"] = username
			updates["password"] = string(hashedPassword)
		}
		return tx.Model(&models.User{}).Where("id = ?", root.ID).Updates(updates).Error
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("development root admin ensured", slog.String("email", email))
	return nil
}

// seedOnStart applies SEED_ON_START to an empty development database.
func seedOnStart(cfg *config.Config, db *gorm.DB) error {
	preset := strings.TrimSpace(cfg.SeedOnStart)
	if preset == "" || !cfg.IsDevelopment() {
		return nil
	}

	var videos int64
	if err := db.Model(&models.Video{}).Count(&videos).Error; err != nil {
		return fmt.Errorf("count videos: %w", err)
	}
	if videos > 0 {
		middleware.Logger.Info("database already has videos, skipping seed", slog.String("preset", preset))
		return nil
	}

	if err := seed.NewSeeder(db, seed.Options{SkipBcrypt: true}).ApplyPreset(preset); err != nil {
		return fmt.Errorf("seed preset %q: %w", preset, err)
	}
	return nil
}
