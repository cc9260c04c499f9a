// Package main provides role management utilities for ReelHub accounts.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"reelhub/internal/cache"
	"reelhub/internal/config"
	"reelhub/internal/database"
	"reelhub/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <user_id>            - Grant the admin role")
		fmt.Println("  go run ./cmd/admin demote <user_id>             - Revoke the admin role")
		fmt.Println("  go run ./cmd/admin set-role <user_id> <role>    - Set user, creator or admin")
		fmt.Println("  go run ./cmd/admin verify <user_id>             - Mark a creator as verified")
		fmt.Println("  go run ./cmd/admin list-admins                  - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	// Cached identities carry the role, so changes must evict them.
	rdb := cache.Connect(cfg.RedisURL)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	c := cache.New(rdb)

	requireArgs := func(n int, usage string) {
		if len(os.Args) < n {
			fmt.Println("Usage: go run ./cmd/admin " + usage)
			os.Exit(1)
		}
	}

	switch command := os.Args[1]; command {
	case "promote":
		requireArgs(3, "promote <user_id>")
		setRole(db, c, os.Args[2], models.RoleAdmin)
	case "demote":
		requireArgs(3, "demote <user_id>")
		setRole(db, c, os.Args[2], models.RoleUser)
	case "set-role":
		requireArgs(4, "set-role <user_id> <user|creator|admin>")
		role := models.Role(os.Args[3])
		switch role {
		case models.RoleUser, models.RoleCreator, models.RoleAdmin:
		default:
			fmt.Printf("Unknown role: %s\n", role)
			os.Exit(1)
		}
		setRole(db, c, os.Args[2], role)
	case "verify":
		requireArgs(3, "verify <user_id>")
		user := loadUser(db, os.Args[2])
		if err := updateUser(context.Background(), db, c, user, "is_verified", true); err != nil {
			log.Fatalf("Failed to verify user: %v", err)
		}
		fmt.Printf("✅ %s (ID: %d) is now verified\n", user.Username, user.ID)
	case "list-admins":
		listAdmins(db)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func loadUser(db *gorm.DB, userID string) *models.User {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}
	return &user
}

// updateUser writes one column and evicts the user's cached record and
// identity.
func updateUser(ctx context.Context, db *gorm.DB, c *cache.Cache, user *models.User, column string, value any) error {
	if err := db.WithContext(ctx).Model(user).Update(column, value).Error; err != nil {
		return err
	}
	c.InvalidateUser(ctx, user.ID)
	return nil
}

func setRole(db *gorm.DB, c *cache.Cache, userID string, role models.Role) {
	user := loadUser(db, userID)
	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, role)
		return
	}

	if err := updateUser(context.Background(), db, c, user, "role", role); err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("✅ %s (ID: %d) role changed to %s\n", user.Username, user.ID, role)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
	fmt.Println("─────────────────────────────────────")
}
