package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kursplatform/kurs-api/internal/models"
	"github.com/kursplatform/kurs-api/internal/repository"
	"github.com/kursplatform/kurs-api/pkg/config"
)

// SeedAdmin creates the initial admin account at startup when seeding
// is enabled. Idempotent: an existing account with the configured email
// is left untouched.
func SeedAdmin(ctx context.Context, users *repository.UserRepository, cfg config.SeedConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	existing, err := users.FindByEmail(ctx, cfg.AdminEmail)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check admin account: %w", err)
	}
	if existing != nil {
		logger.Debug("admin account already present", zap.String("email", cfg.AdminEmail))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Name:         cfg.AdminName,
		Role:         models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}

	logger.Info("admin account seeded", zap.String("email", cfg.AdminEmail))
	return nil
}
