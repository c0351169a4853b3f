package main

import (
	"context"
	"fmt"
	"os"

	"github.com/curiohub/curiohub/internal/config"
	"github.com/curiohub/curiohub/internal/database"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/models"
	"github.com/curiohub/curiohub/internal/repository"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		connect()
		defer database.Close()
		runMigrationsUp()
	case "recount":
		if len(os.Args) < 3 {
			usage()
		}
		connect()
		defer database.Close()
		recount(os.Args[2])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: migrate [up|recount <submission-id|all>]")
	fmt.Println("  up       - Create or update the schema and default tags")
	fmt.Println("  recount  - Reset upvote totals from the votes table")
	os.Exit(1)
}

func connect() {
	cfg, err := config.Load()
	if err != nil {
		logger.FatalWithFields("Invalid configuration", err)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		logger.FatalWithFields("Failed to initialize logger", err)
	}
	if err := database.Initialize(cfg.DSN(), false); err != nil {
		logger.FatalWithFields("Failed to connect to database", err)
	}
}

func runMigrationsUp() {
	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Migration failed", err)
	}
	fmt.Println("All migrations completed")
}

// recount rewrites stored upvote totals. Concurrent votes overwrite the
// stored count without a lock, so totals can drift below the vote rows.
func recount(target string) {
	ctx := context.Background()
	repo := repository.NewSubmissionRepository(database.DB)

	ids := []string{target}
	if target == "all" {
		ids = nil
		if err := database.DB.Model(&models.Submission{}).Pluck("id", &ids).Error; err != nil {
			logger.FatalWithFields("Failed to list submissions", err)
		}
	}

	fixed := 0
	for _, id := range ids {
		n, err := repo.RecountUpvotes(ctx, id)
		if err != nil {
			logger.Log.Error("Recount failed", zap.String("submission_id", id), zap.Error(err))
			continue
		}
		fixed++
		logger.Log.Debug("Recounted", zap.String("submission_id", id), zap.Int("upvotes", n))
	}
	fmt.Printf("Recounted %d of %d submissions\n", fixed, len(ids))
}
