package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/curiohub/curiohub/internal/config"
	"github.com/curiohub/curiohub/internal/database"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/repository"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	username := flag.String("username", "", "Username of the user to promote to admin")
	revoke := flag.Bool("revoke", false, "Revoke admin privileges instead of granting")
	flag.Parse()

	if *username == "" {
		fmt.Println("Usage: promote-admin -username=alice [-revoke]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.FatalWithFields("Invalid configuration", err)
	}
	if err := database.Initialize(cfg.DSN(), false); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := repository.NewUserRepository(database.DB)

	user, err := users.GetUserByUsername(ctx, *username)
	if errors.Is(err, repository.ErrUserNotFound) {
		fmt.Printf("User not found: %s\n", *username)
		os.Exit(1)
	}
	if err != nil {
		logger.FatalWithFields("Failed to look up user", err)
	}

	grant := !*revoke
	if user.IsAdmin == grant {
		fmt.Printf("%s already has is_admin=%t\n", user.Username, grant)
		return
	}
	if err := users.SetAdmin(ctx, user.ID, grant); err != nil {
		logger.FatalWithFields("Failed to update admin flag", err)
	}

	if grant {
		fmt.Printf("Admin privileges granted to %s (%s)\n", user.Username, user.ID)
	} else {
		fmt.Printf("Admin privileges revoked for %s\n", user.Username)
	}
}
