package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/store"
	"github.com/vovakirdan/wirechat-relay/internal/store/sqlite"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

// DemoUsers are created by Seed.
var DemoUsers = []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry"}

// Seed opens the configured database and creates the demo accounts.
func Seed(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (int, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return 0, fmt.Errorf("init store: %w", err)
	}
	defer st.Close()

	return SeedUsers(ctx, auth.NewService(st, jwtConfig(cfg)), st, logger)
}

// SeedUsers registers DemoUsers, skipping names that already exist.
// It returns the number of accounts created.
func SeedUsers(ctx context.Context, authService *auth.Service, users store.UserStore, logger *zerolog.Logger) (int, error) {
	created := 0
	for _, name := range DemoUsers {
		_, err := authService.Register(ctx, name, DemoPassword)
		switch {
		case errors.Is(err, auth.ErrUserExists):
			logger.Info().Str("username", name).Msg("user already exists, skipping")
		case err != nil:
			return created, fmt.Errorf("seed %s: %w", name, err)
		default:
			created++
			logger.Info().Str("username", name).Msg("user created")
		}
	}

	names, err := users.ListUsernames(ctx, len(DemoUsers))
	if err != nil {
		return created, fmt.Errorf("list users: %w", err)
	}
	logger.Info().Int("created", created).Strs("directory", names).Msg("seeding complete")
	return created, nil
}
