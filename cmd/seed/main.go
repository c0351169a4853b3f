package main

import (
	"fmt"
	"os"

	"github.com/curiohub/curiohub/internal/config"
	"github.com/curiohub/curiohub/internal/database"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/seed"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var run func(*seed.Seeder) error
	switch command {
	case "dev":
		run = (*seed.Seeder).SeedDev
	case "test":
		run = (*seed.Seeder).SeedTest
	case "clean":
		run = (*seed.Seeder).Clean
	default:
		fmt.Println("Usage: seed [dev|test|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  test  - Seed fixed test users (password " + seed.DefaultPassword + ")")
		fmt.Println("  clean - Remove all users, submissions, votes and bookmarks")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.FatalWithFields("Invalid configuration", err)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		logger.FatalWithFields("Failed to initialize logger", err)
	}
	if cfg.IsProduction() {
		logger.FatalWithFields("Refusing to seed a production database", nil)
	}

	if err := database.Initialize(cfg.DSN(), false); err != nil {
		logger.FatalWithFields("Failed to connect to database", err)
	}
	defer database.Close()

	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Migration failed", err)
	}

	if err := run(seed.NewSeeder(database.DB)); err != nil {
		logger.FatalWithFields("Seeding failed", err)
	}
	logger.Log.Info("Seed command finished")
}
