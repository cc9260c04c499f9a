// Command seed populates the database with demo users, videos and engagement.
package main

import (
	"flag"
	"log"
	"strings"

	"reelhub/internal/config"
	"reelhub/internal/database"
	"reelhub/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numVideos := flag.Int("videos", 300, "Number of videos to create")
	shortShare := flag.Float64("short-share", 0.7, "Fraction of videos that are short-form")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a named preset ("+strings.Join(seed.PresetNames(), ", ")+")")
	fast := flag.Bool("fast", true, "Hash seed passwords with the minimum bcrypt cost")
	randSeed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("❌ Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s := seed.NewSeeder(db, seed.Options{SkipBcrypt: *fast, BatchSize: 200, Seed: *randSeed})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if *preset != "" {
		log.Printf("Applying preset: %s (ignoring size flags)", *preset)
		err = s.ApplyPreset(*preset)
	} else {
		log.Printf("Target: %d users, %d videos, clean=%v", *numUsers, *numVideos, *shouldClean)
		err = s.Run(seed.Preset{Users: *numUsers, Videos: *numVideos, ShortShare: *shortShare})
	}
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
