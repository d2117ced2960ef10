package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"asha_gallery/internal/config"
	"asha_gallery/internal/repository"
	usersvc "asha_gallery/internal/services/user_service"
	"asha_gallery/internal/storage"

	"github.com/fatih/color"
)

// Creates the initial admin account. Credentials come from the admin
// section of the config or from ADMIN_USERNAME / ADMIN_PASSWORD.
func main() {
	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	username := cfg.Admin.Username
	if username == "" {
		username = "admin"
		color.Yellow("No admin username configured, using %q", username)
	}

	password := cfg.Admin.Password
	if password == "" {
		color.Red("Error: admin password is required (set ADMIN_PASSWORD)")
		os.Exit(1)
	}
	if len(password) < 6 {
		color.Red("Error: admin password must be at least 6 characters")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.NewRepository(ctx, cfg.DSN)
	if err != nil {
		color.Red("Error: cannot connect to database: %v", err)
		os.Exit(1)
	}
	defer repo.Close()

	users := usersvc.NewUserService(log, repo.User)

	id, err := users.CreateAdmin(ctx, username, password)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			color.Yellow("Admin %q already exists, nothing to do", username)
			return
		}

		color.Red("Error: failed to create admin: %v", err)
		os.Exit(1)
	}

	color.Green("Admin account created")
	color.Cyan("  id:       %s", id)
	color.Cyan("  username: %s", username)
	color.Yellow("Change the password after the first login.")
}
