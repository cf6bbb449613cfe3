package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/repository"
)

// EnsureSeedAdmin creates the bootstrap admin account when configured and
// not already present. Intended for first deployment of a fresh database.
func EnsureSeedAdmin(ctx context.Context, cfg config.Config, users repository.UserRepository, logger *zap.Logger) error {
	seed := cfg.Seed
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, seed.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(seed.AdminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Email:        seed.AdminEmail,
		FullName:     seed.AdminName,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("seed admin created", zap.String("email", seed.AdminEmail))
	return nil
}
